package monitor

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/xpolbeamline/internal/beamline/l4events"
	"github.com/banshee-data/xpolbeamline/internal/fsutil"
)

// GradeChart returns a bar chart of event counts per ASCA category.
func GradeChart(s Summary) *charts.Bar {
	x := make([]string, NumASCA)
	y := make([]opts.BarData, NumASCA)
	for g := 0; g < NumASCA; g++ {
		x[g] = fmt.Sprintf("%d %s", g, l4events.ASCACategory(g))
		y[g] = opts.BarData{Value: s.ASCA[g]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Event grades", Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "ASCA grades", Subtitle: fmt.Sprintf("events=%d edge=%d hot=%d", s.Events, s.OnEdge, s.HotPixels)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("events", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

// HotPixelChart returns a scatter of hot pixel positions in detector
// coordinates.
func HotPixelChart(t *l4events.HotPixelTable) *charts.Scatter {
	data := make([]opts.ScatterData, 0, t.Len())
	for i := range t.X {
		data = append(data, opts.ScatterData{Value: []interface{}{t.X[i], t.Y[i]}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "720px", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: "Hot pixels", Subtitle: fmt.Sprintf("count=%d", t.Len())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X (pix)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y (pix)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("hot", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	return scatter
}

// RenderReport renders the grade chart and, when hot is non-nil, the hot
// pixel map as a single HTML page.
func RenderReport(s Summary, hot *l4events.HotPixelTable) ([]byte, error) {
	page := components.NewPage()
	page.AddCharts(GradeChart(s))
	if hot != nil {
		page.AddCharts(HotPixelChart(hot))
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render error: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteReportHTML renders the report to path through fsys.
func WriteReportHTML(fsys fsutil.FileSystem, path string, s Summary, hot *l4events.HotPixelTable) error {
	html, err := RenderReport(s, hot)
	if err != nil {
		return err
	}
	return fsys.WriteFile(path, html, 0644)
}
