package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmptyExtractConfig_Defaults(t *testing.T) {
	cfg := EmptyExtractConfig()

	if got := cfg.GetHogBins(); got != 8 {
		t.Errorf("GetHogBins() = %d, want 8", got)
	}
	if got := cfg.GetHofBins(); got != 9 {
		t.Errorf("GetHofBins() = %d, want 9", got)
	}
	if got := cfg.GetNtCells(); got != 3 {
		t.Errorf("GetNtCells() = %d, want 3", got)
	}
	if got := cfg.GetTStride(); got != 5 {
		t.Errorf("GetTStride() = %d, want 5", got)
	}
	if got := cfg.GetFlowScale(); got != 0.125 {
		t.Errorf("GetFlowScale() = %f, want 0.125", got)
	}
	if got := cfg.GetScanStrideMode(); got != ScanHalfBlock {
		t.Errorf("GetScanStrideMode() = %q, want %q", got, ScanHalfBlock)
	}
	if got := cfg.GetPatchSizes(); len(got) != 2 || got[0] != [2]int{32, 32} || got[1] != [2]int{48, 48} {
		t.Errorf("GetPatchSizes() = %v, want [[32 32] [48 48]]", got)
	}
	if !cfg.GetEnableHOG() || !cfg.GetEnableHOF() || !cfg.GetEnableMBH() {
		t.Error("hog, hof and mbh should be enabled by default")
	}
	if cfg.GetEnableDC() || cfg.GetEnableSpatialVariance() {
		t.Error("auxiliary channels should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("empty config must validate: %v", err)
	}
}

func TestLoadDefaultConfig(t *testing.T) {
	cfg, err := LoadDefaultConfig()
	if err != nil {
		t.Fatalf("LoadDefaultConfig() error: %v", err)
	}
	empty := EmptyExtractConfig()

	// The defaults file must agree with the built-in fallbacks.
	if cfg.GetHogBins() != empty.GetHogBins() || cfg.GetHofBins() != empty.GetHofBins() {
		t.Errorf("bin defaults disagree: file hog=%d hof=%d", cfg.GetHogBins(), cfg.GetHofBins())
	}
	if cfg.GetNtCells() != empty.GetNtCells() || cfg.GetTStride() != empty.GetTStride() {
		t.Errorf("temporal defaults disagree: file nt=%d stride=%d", cfg.GetNtCells(), cfg.GetTStride())
	}
	if cfg.GetScanStrideMode() != empty.GetScanStrideMode() {
		t.Errorf("scan mode defaults disagree: %q", cfg.GetScanStrideMode())
	}
}

func TestLoadExtractConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "extract.json")

	testJSON := `{
  "nt_cells": 2,
  "t_stride": 4,
  "scan_stride_mode": "dense",
  "patch_sizes": [[16, 24]],
  "enable_dc": true,
  "good_pts": [3, 7]
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadExtractConfig(configPath)
	if err != nil {
		t.Fatalf("LoadExtractConfig() error: %v", err)
	}

	if cfg.GetNtCells() != 2 || cfg.GetTStride() != 4 {
		t.Errorf("temporal fields = %d/%d, want 2/4", cfg.GetNtCells(), cfg.GetTStride())
	}
	if cfg.GetScanStrideMode() != ScanDense {
		t.Errorf("scan mode = %q, want dense", cfg.GetScanStrideMode())
	}
	if sizes := cfg.GetPatchSizes(); len(sizes) != 1 || sizes[0] != [2]int{16, 24} {
		t.Errorf("patch sizes = %v", sizes)
	}
	if !cfg.GetEnableDC() {
		t.Error("enable_dc should be true")
	}
	if len(cfg.GoodPTS) != 2 || cfg.GoodPTS[1] != 7 {
		t.Errorf("good_pts = %v", cfg.GoodPTS)
	}
	// Unset fields fall back to defaults.
	if cfg.GetHogBins() != 8 {
		t.Errorf("hog bins = %d, want default 8", cfg.GetHogBins())
	}
}

func TestLoadExtractConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(tmpDir, name)
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"wrong extension", write("cfg.yaml", "{}"), ".json extension"},
		{"missing file", filepath.Join(tmpDir, "missing.json"), "stat"},
		{"bad json", write("bad.json", "{"), "parse"},
		{"zero stride", write("stride.json", `{"t_stride": 0}`), "t_stride"},
		{"bad scan mode", write("mode.json", `{"scan_stride_mode": "sparse"}`), "scan_stride_mode"},
		{"hof too small", write("hof.json", `{"hof_bins": 1}`), "hof_bins"},
		{"bad patch", write("patch.json", `{"patch_sizes": [[0, 4]]}`), "patch_sizes"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadExtractConfig(tc.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestSetBool(t *testing.T) {
	cfg := EmptyExtractConfig()
	SetBool(&cfg.EnableHOG, false)
	if cfg.GetEnableHOG() {
		t.Error("SetBool did not override enable_hog")
	}
}
