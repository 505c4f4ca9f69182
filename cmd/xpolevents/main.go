// Command xpolevents extracts the event list from a frame stack stored in a
// run archive and writes the EVENTS and HOTPIX tables back out.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/xpolbeamline/internal/beamline"
	"github.com/banshee-data/xpolbeamline/internal/beamline/l4events"
	"github.com/banshee-data/xpolbeamline/internal/beamline/monitor"
	"github.com/banshee-data/xpolbeamline/internal/beamline/pipeline"
	"github.com/banshee-data/xpolbeamline/internal/beamline/storage/sqlite"
	"github.com/banshee-data/xpolbeamline/internal/config"
	"github.com/banshee-data/xpolbeamline/internal/fsutil"
	"github.com/banshee-data/xpolbeamline/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("xpolevents", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Extraction config JSON (defaults apply when empty)")
	outPath := fs.String("out", "", "Output archive (defaults to the input archive)")
	plotDir := fs.String("plots", "", "Directory for diagnostic plots (overrides plot_dir)")
	diag := fs.Bool("diag", false, "Log per-stage diagnostics")
	trace := fs.Bool("trace", false, "Log per-event detail")
	showVersion := fs.Bool("version", false, "Print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: xpolevents [flags] <archive>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintf(stdout, "xpolevents %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return 0
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	beamline.SetLogWriters(beamline.Verbosity(stderr, *diag, *trace))

	in := fs.Arg(0)
	out := *outPath
	if out == "" {
		out = in
	}
	if err := extract(in, out, *configPath, *plotDir, stdout); err != nil {
		fmt.Fprintf(stderr, "xpolevents: %v\n", err)
		return 1
	}
	return 0
}

func extract(in, out, configPath, plotDir string, stdout io.Writer) error {
	fsys := fsutil.OSFileSystem{}

	cfg := config.DefaultExtractionConfig()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadExtractionConfigFS(fsys, configPath); err != nil {
			return err
		}
	}
	if plotDir == "" {
		plotDir = cfg.GetPlotDir()
	}

	ch, err := pipeline.NewChainFromConfig(cfg, sqlite.Source{}, fsys)
	if err != nil {
		return err
	}
	cat, err := ch.Process(in)
	if err != nil {
		return err
	}

	n, ok := cfg.GetHotPixThreshold()
	if !ok {
		if n, err = l4events.DefaultOccurrenceThreshold(cat.Meta); err != nil {
			return err
		}
	}
	hot := l4events.MakeHotPixelList(cat, n)

	a, err := sqlite.Open(out)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.WriteEvents(cat); err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	if err := a.WriteHotPixels(hot); err != nil {
		return fmt.Errorf("write hot pixels: %w", err)
	}
	beamline.Opsf("wrote %d events and %d hot pixels to %s", cat.Len(), hot.Len(), out)

	if plotDir != "" {
		if _, err := monitor.WritePlots(fsys, plotDir, cat, hot); err != nil {
			return fmt.Errorf("plots: %w", err)
		}
	}

	s := monitor.Summarize(cat)
	fmt.Fprintf(stdout, "events=%d edge=%d hot_events=%d hot_pixels=%d\n", s.Events, s.OnEdge, s.HotPixels, hot.Len())
	return nil
}
