// Package config holds the hyperparameters the diffusion process is
// constructed from and validates them.
//
// The JSON layout follows the training configuration files of the model:
//
//	{
//	  "model_config": {
//	    "factors": [5, 5, 3, 2, 2],
//	    "noise_schedule": {"n_iter": 1000, "betas_range": [1e-6, 0.01]}
//	  },
//	  "data_config": {"sample_rate": 22050, "hop_length": 300, "n_mels": 80},
//	  "training_config": {"segment_length": 7200}
//	}
//
// Unknown keys are ignored so full training configs can be loaded as is.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cwbudde/algo-wavegrad/diffusion/schedule"
)

var (
	// ErrInvalidFactors indicates an empty factor list or a non-positive factor.
	ErrInvalidFactors = errors.New("config: upsampling factors must be non-empty and > 0")
	// ErrInvalidHopLength indicates a non-positive hop length.
	ErrInvalidHopLength = errors.New("config: hop length must be > 0")
	// ErrFactorHopMismatch indicates the product of the upsampling factors
	// differs from the hop length.
	ErrFactorHopMismatch = errors.New("config: total upsampling factor must equal hop length")
	// ErrInvalidSegmentLength indicates a training segment shorter than one hop.
	ErrInvalidSegmentLength = errors.New("config: segment length must span at least one hop")
)

// NoiseSchedule configures the linear beta schedule.
type NoiseSchedule struct {
	NIter      int        `json:"n_iter"`
	BetasRange [2]float64 `json:"betas_range"`
}

// ModelConfig holds the model-side settings the diffusion process needs.
type ModelConfig struct {
	Factors       []int         `json:"factors"`
	NoiseSchedule NoiseSchedule `json:"noise_schedule"`
}

// DataConfig describes the acoustic features.
type DataConfig struct {
	SampleRate int `json:"sample_rate"`
	HopLength  int `json:"hop_length"`
	NMels      int `json:"n_mels"`
}

// TrainingConfig holds the training window size in samples.
type TrainingConfig struct {
	SegmentLength int `json:"segment_length"`
}

// Config is the complete set of construction inputs.
type Config struct {
	Model    ModelConfig    `json:"model_config"`
	Data     DataConfig     `json:"data_config"`
	Training TrainingConfig `json:"training_config"`
}

// Default returns the 22.05 kHz, hop-300 configuration with a
// 1000-step training schedule.
func Default() Config {
	return Config{
		Model: ModelConfig{
			Factors: []int{5, 5, 3, 2, 2},
			NoiseSchedule: NoiseSchedule{
				NIter:      1000,
				BetasRange: [2]float64{1e-6, 0.01},
			},
		},
		Data: DataConfig{
			SampleRate: 22050,
			HopLength:  300,
			NMels:      80,
		},
		Training: TrainingConfig{
			SegmentLength: 7200,
		},
	}
}

// Load reads a JSON config file on top of Default and validates it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes JSON on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// TotalFactor returns the product of the upsampling factors: the number of
// waveform samples generated per feature frame.
func (c Config) TotalFactor() int {
	total := 1
	for _, f := range c.Model.Factors {
		total *= f
	}
	return total
}

// MelSegmentLength returns the training window size in feature frames.
func (c Config) MelSegmentLength() int {
	if c.Data.HopLength <= 0 {
		return 0
	}
	return c.Training.SegmentLength / c.Data.HopLength
}

// Schedule builds the noise schedule described by c.
func (c Config) Schedule() (*schedule.Schedule, error) {
	ns := c.Model.NoiseSchedule
	return schedule.Linear(ns.NIter, ns.BetasRange[0], ns.BetasRange[1])
}

// Validate reports the first configuration error in c.
func (c Config) Validate() error {
	if _, err := c.Schedule(); err != nil {
		return fmt.Errorf("config: noise schedule: %w", err)
	}

	if len(c.Model.Factors) == 0 {
		return ErrInvalidFactors
	}
	for i, f := range c.Model.Factors {
		if f <= 0 {
			return fmt.Errorf("%w: factors[%d] = %d", ErrInvalidFactors, i, f)
		}
	}

	if c.Data.HopLength <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidHopLength, c.Data.HopLength)
	}

	if total := c.TotalFactor(); total != c.Data.HopLength {
		return fmt.Errorf("%w: factors give %d, hop length is %d", ErrFactorHopMismatch, total, c.Data.HopLength)
	}

	if c.MelSegmentLength() <= 0 {
		return fmt.Errorf("%w: %d samples with hop %d", ErrInvalidSegmentLength, c.Training.SegmentLength, c.Data.HopLength)
	}

	return nil
}
