package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/xpolbeamline/internal/fsutil"
)

func TestDefaultExtractionConfig(t *testing.T) {
	cfg := DefaultExtractionConfig()

	if cfg.SigmaClipLevel == nil || *cfg.SigmaClipLevel != 5 {
		t.Errorf("Expected SigmaClipLevel 5, got %v", cfg.SigmaClipLevel)
	}
	if cfg.GetPeakSize() != 3 {
		t.Errorf("GetPeakSize() = %d, want 3", cfg.GetPeakSize())
	}
	if _, ok := cfg.GetHotPixThreshold(); ok {
		t.Error("GetHotPixThreshold() should be unset by default")
	}
	if _, ok := cfg.GetSeed(); ok {
		t.Error("GetSeed() should be unset by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestEmptyConfigGetters(t *testing.T) {
	cfg := EmptyExtractionConfig()
	if cfg.GetSigmaClipLevel() != 5.0 {
		t.Errorf("GetSigmaClipLevel() = %v, want 5", cfg.GetSigmaClipLevel())
	}
	if cfg.GetPeakSize() != 3 {
		t.Errorf("GetPeakSize() = %v, want 3", cfg.GetPeakSize())
	}
	if cfg.GetHotPixList() != "" || cfg.GetPlotDir() != "" {
		t.Error("expected empty hotpix_list and plot_dir")
	}
}

func TestLoadExtractionConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "run.json")

	testJSON := `{
  "sigma_clip_level": 4.5,
  "peak_size": 5,
  "hotpix_threshold": 7,
  "seed": 1234,
  "plot_dir": "plots"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadExtractionConfig(configPath)
	if err != nil {
		t.Fatalf("LoadExtractionConfig failed: %v", err)
	}
	if cfg.GetSigmaClipLevel() != 4.5 {
		t.Errorf("GetSigmaClipLevel() = %v, want 4.5", cfg.GetSigmaClipLevel())
	}
	if cfg.GetPeakSize() != 5 {
		t.Errorf("GetPeakSize() = %d, want 5", cfg.GetPeakSize())
	}
	if n, ok := cfg.GetHotPixThreshold(); !ok || n != 7 {
		t.Errorf("GetHotPixThreshold() = %v, %v; want 7, true", n, ok)
	}
	if s, ok := cfg.GetSeed(); !ok || s != 1234 {
		t.Errorf("GetSeed() = %v, %v; want 1234, true", s, ok)
	}
	if cfg.GetPlotDir() != "plots" {
		t.Errorf("GetPlotDir() = %q, want plots", cfg.GetPlotDir())
	}
}

func TestLoadExtractionConfigFS_Errors(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	_ = fsys.WriteFile("bad.json", []byte("{not json"), 0644)
	_ = fsys.WriteFile("even.json", []byte(`{"peak_size": 4}`), 0644)
	_ = fsys.WriteFile("config.yaml", []byte(`peak_size: 3`), 0644)
	_ = fsys.WriteFile("huge.json", []byte(strings.Repeat(" ", 1024*1024+1)), 0644)

	if _, err := LoadExtractionConfigFS(fsys, "config.yaml"); err == nil {
		t.Error("expected error for non-json extension")
	}
	if _, err := LoadExtractionConfigFS(fsys, "missing.json"); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadExtractionConfigFS(fsys, "bad.json"); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if _, err := LoadExtractionConfigFS(fsys, "huge.json"); err == nil {
		t.Error("expected error for oversized file")
	}
	_, err := LoadExtractionConfigFS(fsys, "even.json")
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for even peak_size, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ExtractionConfig
		wantErr bool
	}{
		{"empty", ExtractionConfig{}, false},
		{"zero sigma", ExtractionConfig{SigmaClipLevel: ptrFloat64(0)}, true},
		{"negative sigma", ExtractionConfig{SigmaClipLevel: ptrFloat64(-1)}, true},
		{"peak size one", ExtractionConfig{PeakSize: ptrInt(1)}, false},
		{"peak size even", ExtractionConfig{PeakSize: ptrInt(2)}, true},
		{"negative threshold", ExtractionConfig{HotPixThreshold: ptrFloat64(-1)}, true},
		{"list and threshold", ExtractionConfig{HotPixThreshold: ptrFloat64(3), HotPixList: ptrString("hot.txt")}, true},
		{"seeded", ExtractionConfig{Seed: ptrInt64(9)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if cfg.GetSigmaClipLevel() != 5 || cfg.GetPeakSize() != 3 {
		t.Errorf("defaults file disagrees with built-in defaults: %+v", cfg)
	}
}
