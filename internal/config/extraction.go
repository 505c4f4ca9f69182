package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/banshee-data/xpolbeamline/internal/fsutil"
)

// DefaultConfigPath is the path to the canonical extraction defaults file.
const DefaultConfigPath = "config/extraction.defaults.json"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// ExtractionConfig holds the tunable parameters of one extraction run.
// Omitted fields fall back to the defaults returned by the Get* methods.
type ExtractionConfig struct {
	// Peak detection
	SigmaClipLevel *float64 `json:"sigma_clip_level,omitempty"`
	PeakSize       *int     `json:"peak_size,omitempty"`

	// Hot pixels. HotPixThreshold unset means max(FRAMES/3, 3) from the
	// frame header. HotPixList, when set, names a text file of "x y" pairs
	// used instead of the occurrence count.
	HotPixThreshold *float64 `json:"hotpix_threshold,omitempty"`
	HotPixList      *string  `json:"hotpix_list,omitempty"`

	// Seed for the energy de-quantization draw; unset seeds from the clock.
	Seed *int64 `json:"seed,omitempty"`

	// PlotDir receives diagnostic plots when non-empty.
	PlotDir *string `json:"plot_dir,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
func ptrInt64(v int64) *int64       { return &v }

// EmptyExtractionConfig returns an ExtractionConfig with all fields set to nil.
func EmptyExtractionConfig() *ExtractionConfig {
	return &ExtractionConfig{}
}

// DefaultExtractionConfig returns a config with the standard peak detection
// parameters filled in.
func DefaultExtractionConfig() *ExtractionConfig {
	return &ExtractionConfig{
		SigmaClipLevel: ptrFloat64(5),
		PeakSize:       ptrInt(3),
		PlotDir:        ptrString(""),
	}
}

// LoadExtractionConfig loads an ExtractionConfig from a JSON file on disk.
func LoadExtractionConfig(path string) (*ExtractionConfig, error) {
	return LoadExtractionConfigFS(fsutil.OSFileSystem{}, path)
}

// LoadExtractionConfigFS loads an ExtractionConfig through fsys.
// The file must have a .json extension and be at most 1MB.
func LoadExtractionConfigFS(fsys fsutil.FileSystem, path string) (*ExtractionConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyExtractionConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents. Panics if the file cannot
// be loaded, intended for test setup.
func MustLoadDefaultConfig() *ExtractionConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/beamline/pipeline/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadExtractionConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *ExtractionConfig) Validate() error {
	if c.SigmaClipLevel != nil {
		if v := *c.SigmaClipLevel; !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: sigma_clip_level must be positive, got %v", ErrInvalid, v)
		}
	}
	if c.PeakSize != nil {
		if v := *c.PeakSize; v < 1 || v%2 == 0 {
			return fmt.Errorf("%w: peak_size must be an odd integer >= 1, got %d", ErrInvalid, v)
		}
	}
	if c.HotPixThreshold != nil {
		if v := *c.HotPixThreshold; v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: hotpix_threshold must be non-negative, got %v", ErrInvalid, v)
		}
	}
	if c.HotPixList != nil && c.HotPixThreshold != nil && *c.HotPixList != "" {
		return fmt.Errorf("%w: hotpix_list and hotpix_threshold are mutually exclusive", ErrInvalid)
	}
	return nil
}

// GetSigmaClipLevel returns the sigma_clip_level value or the default.
func (c *ExtractionConfig) GetSigmaClipLevel() float64 {
	if c.SigmaClipLevel == nil {
		return 5.0
	}
	return *c.SigmaClipLevel
}

// GetPeakSize returns the peak_size value or the default.
func (c *ExtractionConfig) GetPeakSize() int {
	if c.PeakSize == nil {
		return 3
	}
	return *c.PeakSize
}

// GetHotPixThreshold returns the hotpix_threshold value and whether it was set.
func (c *ExtractionConfig) GetHotPixThreshold() (float64, bool) {
	if c.HotPixThreshold == nil {
		return 0, false
	}
	return *c.HotPixThreshold, true
}

// GetHotPixList returns the hotpix_list path or "".
func (c *ExtractionConfig) GetHotPixList() string {
	if c.HotPixList == nil {
		return ""
	}
	return *c.HotPixList
}

// GetSeed returns the seed and whether one was configured.
func (c *ExtractionConfig) GetSeed() (int64, bool) {
	if c.Seed == nil {
		return 0, false
	}
	return *c.Seed, true
}

// GetPlotDir returns the plot_dir value or "" (plots disabled).
func (c *ExtractionConfig) GetPlotDir() string {
	if c.PlotDir == nil {
		return ""
	}
	return *c.PlotDir
}
