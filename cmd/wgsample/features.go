package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-wavegrad/diffusion"
	"github.com/cwbudde/algo-wavegrad/diffusion/rng"
)

// featureStream is the generator stream for random features. Segment i of
// the sampler uses stream i, so random features draw from the far end.
const featureStream = math.MaxUint64

func loadFeatures(o runOptions, mels int) (diffusion.Features, error) {
	switch {
	case o.frames > 0:
		return diffusion.Features{rng.Normal(rng.New(o.seed, featureStream), mels, o.frames)}, nil
	case o.featuresPath != "":
		return readFeatures(o.featuresPath, mels)
	default:
		return nil, errors.New("either -features or -frames is required")
	}
}

// readFeatures reads a JSON array of mel bands, each an array of frames.
func readFeatures(path string, mels int) (diffusion.Features, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read features: %w", err)
	}

	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse features %s: %w", path, err)
	}
	if len(rows) != mels {
		return nil, fmt.Errorf("features %s: %d mel bands, config expects %d", path, len(rows), mels)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("features %s: %w", path, diffusion.ErrEmptyFeatures)
	}

	frames := len(rows[0])
	m := mat.NewDense(mels, frames, nil)
	for i, r := range rows {
		if len(r) != frames {
			return nil, fmt.Errorf("features %s: band %d has %d frames, want %d", path, i, len(r), frames)
		}
		m.SetRow(i, r)
	}
	return diffusion.Features{m}, nil
}
