package diffusion

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// Predictor estimates the noise contained in a noisy signal.
//
// features holds one mels×frames matrix per batch entry, noisy is
// batch×samples and noiseLevel has one entry per batch row. The result must
// have the shape of noisy. Implementations must be deterministic for
// identical inputs and safe for concurrent use, since segmented sampling
// calls them from several goroutines.
type Predictor interface {
	PredictNoise(ctx context.Context, features Features, noisy *mat.Dense, noiseLevel []float64) (*mat.Dense, error)
}

// PredictorFunc adapts a function to the Predictor interface.
type PredictorFunc func(ctx context.Context, features Features, noisy *mat.Dense, noiseLevel []float64) (*mat.Dense, error)

// PredictNoise calls f.
func (f PredictorFunc) PredictNoise(ctx context.Context, features Features, noisy *mat.Dense, noiseLevel []float64) (*mat.Dense, error) {
	return f(ctx, features, noisy, noiseLevel)
}
