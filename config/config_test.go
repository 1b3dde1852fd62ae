package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-wavegrad/diffusion/schedule"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.TotalFactor() != 300 {
		t.Fatalf("TotalFactor() = %d, want 300", cfg.TotalFactor())
	}
	if cfg.MelSegmentLength() != 24 {
		t.Fatalf("MelSegmentLength() = %d, want 24", cfg.MelSegmentLength())
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{
			name:   "factor hop mismatch",
			mutate: func(c *Config) { c.Model.Factors = []int{4, 4, 4, 2, 2} }, // 256 vs 300
			want:   ErrFactorHopMismatch,
		},
		{
			name:   "empty factors",
			mutate: func(c *Config) { c.Model.Factors = nil },
			want:   ErrInvalidFactors,
		},
		{
			name:   "zero factor",
			mutate: func(c *Config) { c.Model.Factors = []int{300, 0} },
			want:   ErrInvalidFactors,
		},
		{
			name:   "zero hop",
			mutate: func(c *Config) { c.Data.HopLength = 0 },
			want:   ErrInvalidHopLength,
		},
		{
			name:   "short segment",
			mutate: func(c *Config) { c.Training.SegmentLength = 100 },
			want:   ErrInvalidSegmentLength,
		},
		{
			name:   "zero steps",
			mutate: func(c *Config) { c.Model.NoiseSchedule.NIter = 0 },
			want:   schedule.ErrInvalidSteps,
		},
		{
			name:   "descending betas",
			mutate: func(c *Config) { c.Model.NoiseSchedule.BetasRange = [2]float64{0.1, 0.01} },
			want:   schedule.ErrInvalidBetaRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseKeepsDefaultsAndIgnoresUnknownKeys(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"model_config": {
			"factors": [4, 4, 4, 2, 2],
			"noise_schedule": {"n_iter": 50, "betas_range": [1e-4, 0.05]},
			"upsampling_dilations": [[1, 2, 1, 2]]
		},
		"data_config": {"hop_length": 256},
		"training_config": {"segment_length": 7680, "lr": 0.001}
	}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Model.NoiseSchedule.NIter != 50 {
		t.Fatalf("n_iter = %d, want 50", cfg.Model.NoiseSchedule.NIter)
	}
	if cfg.Data.SampleRate != 22050 {
		t.Fatalf("sample_rate = %d, want default 22050", cfg.Data.SampleRate)
	}
	if cfg.MelSegmentLength() != 30 {
		t.Fatalf("MelSegmentLength() = %d, want 30", cfg.MelSegmentLength())
	}
}

func TestParseRejectsMismatch(t *testing.T) {
	_, err := Parse([]byte(`{"model_config": {"factors": [4, 4, 4, 2, 2]}, "data_config": {"hop_length": 300}}`))
	if !errors.Is(err, ErrFactorHopMismatch) {
		t.Fatalf("Parse() error = %v, want ErrFactorHopMismatch", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	if err := os.WriteFile(path, []byte(`{"model_config": {"noise_schedule": {"n_iter": 6, "betas_range": [1e-6, 0.01]}}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	s, err := cfg.Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if s.Steps() != 6 {
		t.Fatalf("Steps() = %d, want 6", s.Steps())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
