package diffusion

import (
	"context"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-wavegrad/diffusion/rng"
)

// LossTerms holds the loss and every intermediate of one training step, for
// harnesses that run their own backward pass through the predictor.
type LossTerms struct {
	// Loss is the mean absolute error between Prediction and Noise.
	Loss float64
	// NoiseLevels holds the sampled continuous noise level of each row.
	NoiseLevels []float64
	// Noise is the injected Gaussian noise.
	Noise *mat.Dense
	// Noisy is the diffused signal given to the predictor.
	Noisy *mat.Dense
	// Prediction is the predictor's noise estimate.
	Prediction *mat.Dense
}

// Loss returns the training objective for the clean batch y0 conditioned on
// features. See [Process.LossTerms].
func (p *Process) Loss(ctx context.Context, features Features, y0 *mat.Dense, src rng.Source) (float64, error) {
	terms, err := p.LossTerms(ctx, features, y0, src)
	if err != nil {
		return 0, err
	}
	return terms.Loss, nil
}

// LossTerms samples one continuous noise level per row, diffuses y0 with
// fresh Gaussian noise, asks the predictor for the noise and scores the
// estimate by mean absolute error.
func (p *Process) LossTerms(ctx context.Context, features Features, y0 *mat.Dense, src rng.Source) (LossTerms, error) {
	if err := p.checkSignal(features, y0); err != nil {
		return LossTerms{}, err
	}

	noisy, levels, eps, err := p.DiffuseWith(y0, SampledLevels(), SampledNoise(), src)
	if err != nil {
		return LossTerms{}, err
	}

	epsHat, err := p.predictor.PredictNoise(ctx, features, noisy, levels)
	if err != nil {
		return LossTerms{}, err
	}
	if epsHat == nil || !sameShape(epsHat, eps) {
		return LossTerms{}, predictorShapeError(epsHat, eps)
	}

	return LossTerms{
		Loss:        meanAbsError(epsHat, eps),
		NoiseLevels: levels,
		Noise:       eps,
		Noisy:       noisy,
		Prediction:  epsHat,
	}, nil
}

func meanAbsError(a, b *mat.Dense) float64 {
	rows, cols := a.Dims()
	var sum float64
	for i := 0; i < rows; i++ {
		sum += floats.Distance(a.RawRowView(i), b.RawRowView(i), 1)
	}
	return sum / float64(rows*cols)
}
