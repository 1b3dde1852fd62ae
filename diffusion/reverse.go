package diffusion

import (
	"context"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-wavegrad/diffusion/rng"
	"github.com/cwbudde/algo-wavegrad/diffusion/schedule"
	"github.com/cwbudde/algo-wavegrad/internal/core"
)

// PredictStartFromNoise estimates the clean signal from y_t and a noise
// estimate:
//
//	y0 = sqrt(1/alphaCumprod[t])*y_t - sqrt(1/alphaCumprod[t] - 1)*eps
//
// It panics if t is outside the schedule or the shapes differ.
func PredictStartFromNoise(s *schedule.Schedule, yt *mat.Dense, t int, eps *mat.Dense) *mat.Dense {
	c := s.Coefficients(t)
	mustSameShape("noise", eps, yt)

	rows, cols := yt.Dims()
	out := mat.NewDense(rows, cols, nil)
	combineRows(out, yt, eps, constant(c.SqrtRecipAlphaCumprod), constant(-c.SqrtRecipm1AlphaCumprod), nil)
	return out
}

// Posterior returns the mean and log-variance of q(y_{t-1} | y_t, y_start).
// It panics if t is outside the schedule or the shapes differ.
func Posterior(s *schedule.Schedule, yStart, yt *mat.Dense, t int) (mean *mat.Dense, logVariance float64) {
	c := s.Coefficients(t)
	mustSameShape("y_start", yStart, yt)

	rows, cols := yt.Dims()
	mean = mat.NewDense(rows, cols, nil)
	combineRows(mean, yStart, yt, constant(c.PosteriorMeanCoef1), constant(c.PosteriorMeanCoef2), nil)
	return mean, c.PosteriorLogVarianceClipped
}

// MeanVariance queries the predictor at the noise level of step t and
// returns the posterior mean and log-variance of y_{t-1}. With clip the
// estimated clean signal is clamped to [-1, 1]; yt is never modified.
//
// It panics if t is outside the schedule. Predictor errors are returned
// unchanged.
func (p *Process) MeanVariance(ctx context.Context, features Features, yt *mat.Dense, t int, clip bool) (*mat.Dense, float64, error) {
	c := p.sched.Coefficients(t)
	if err := p.checkSignal(features, yt); err != nil {
		return nil, 0, err
	}

	rows, _ := yt.Dims()
	levels := make([]float64, rows)
	for i := range levels {
		levels[i] = c.NoiseLevel
	}

	epsHat, err := p.predictor.PredictNoise(ctx, features, yt, levels)
	if err != nil {
		return nil, 0, err
	}
	if epsHat == nil || !sameShape(epsHat, yt) {
		return nil, 0, predictorShapeError(epsHat, yt)
	}

	yStart := PredictStartFromNoise(p.sched, yt, t, epsHat)
	if clip {
		for i := 0; i < rows; i++ {
			row := yStart.RawRowView(i)
			core.ClampBlock(row, row, -1, 1)
		}
	}

	mean, logVar := Posterior(p.sched, yStart, yt, t)
	return mean, logVar, nil
}

// ReverseStep draws y_{t-1} from the model posterior:
//
//	y_{t-1} = mean + z*exp(0.5*logVariance)
//
// z is standard normal noise from src for t > 0 and exactly zero at t = 0,
// where no randomness is consumed and the result is deterministic.
func (p *Process) ReverseStep(ctx context.Context, features Features, yt *mat.Dense, t int, clip bool, src rng.Source) (*mat.Dense, error) {
	mean, logVar, err := p.MeanVariance(ctx, features, yt, t, clip)
	if err != nil {
		return nil, err
	}
	if t == 0 {
		return mean, nil
	}

	sigma := math.Exp(0.5 * logVar)
	rows, cols := mean.Dims()
	z := make([]float64, cols)
	for i := 0; i < rows; i++ {
		rng.FillNormal(src, z)
		vecmath.ScaleBlock(z, z, sigma)
		vecmath.AddBlockInPlace(mean.RawRowView(i), z)
	}
	return mean, nil
}

func (p *Process) checkSignal(features Features, y *mat.Dense) error {
	if err := features.Validate(); err != nil {
		return err
	}
	rows, cols := y.Dims()
	if rows != features.Batch() {
		return fmt.Errorf("%w: signal has %d rows for a batch of %d", ErrShapeMismatch, rows, features.Batch())
	}
	if want := features.Frames() * p.totalFactor; cols != want {
		return fmt.Errorf("%w: signal has %d samples, %d frames need %d", ErrShapeMismatch, cols, features.Frames(), want)
	}
	return nil
}

func predictorShapeError(got, want *mat.Dense) error {
	wr, wc := want.Dims()
	if got == nil {
		return fmt.Errorf("%w: nil result for %dx%d input", ErrPredictorOutput, wr, wc)
	}
	gr, gc := got.Dims()
	return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrPredictorOutput, gr, gc, wr, wc)
}
