package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-wavegrad/diffusion"
)

// ScalePredictor returns a deterministic predictor that depends on all of
// its inputs: sample j of row i is estimated as
//
//	scale*level[i]*noisy[i][j] + 0.01*mean(features[i][:, j/totalFactor])
func ScalePredictor(scale float64, totalFactor int) diffusion.Predictor {
	return diffusion.PredictorFunc(func(_ context.Context, features diffusion.Features, noisy *mat.Dense, level []float64) (*mat.Dense, error) {
		rows, cols := noisy.Dims()
		out := mat.NewDense(rows, cols, nil)
		for i := 0; i < rows; i++ {
			f := features[i]
			mels, _ := f.Dims()
			for j := 0; j < cols; j++ {
				frame := j / totalFactor
				var m float64
				for k := 0; k < mels; k++ {
					m += f.At(k, frame)
				}
				out.Set(i, j, scale*level[i]*noisy.At(i, j)+0.01*m/float64(mels))
			}
		}
		return out, nil
	})
}

// ZeroPredictor always estimates zero noise.
func ZeroPredictor() diffusion.Predictor {
	return diffusion.PredictorFunc(func(_ context.Context, _ diffusion.Features, noisy *mat.Dense, _ []float64) (*mat.Dense, error) {
		r, c := noisy.Dims()
		return mat.NewDense(r, c, nil), nil
	})
}

// ConstantPredictor always returns a copy of eps.
func ConstantPredictor(eps *mat.Dense) diffusion.Predictor {
	return diffusion.PredictorFunc(func(context.Context, diffusion.Features, *mat.Dense, []float64) (*mat.Dense, error) {
		return mat.DenseCopyOf(eps), nil
	})
}

// FailingPredictor returns zero noise for the first succeeding calls and err afterwards.
func FailingPredictor(err error, succeeding int64) diffusion.Predictor {
	var calls atomic.Int64
	return diffusion.PredictorFunc(func(_ context.Context, _ diffusion.Features, noisy *mat.Dense, _ []float64) (*mat.Dense, error) {
		if calls.Add(1) > succeeding {
			return nil, err
		}
		r, c := noisy.Dims()
		return mat.NewDense(r, c, nil), nil
	})
}

// Recorder wraps a predictor and records the noise levels it was called
// with, in call order.
type Recorder struct {
	Next diffusion.Predictor

	mu     sync.Mutex
	levels [][]float64
	inputs []*mat.Dense
}

// PredictNoise records its inputs and forwards to r.Next.
func (r *Recorder) PredictNoise(ctx context.Context, features diffusion.Features, noisy *mat.Dense, level []float64) (*mat.Dense, error) {
	r.mu.Lock()
	r.levels = append(r.levels, append([]float64(nil), level...))
	r.inputs = append(r.inputs, mat.DenseCopyOf(noisy))
	r.mu.Unlock()
	return r.Next.PredictNoise(ctx, features, noisy, level)
}

// Levels returns the recorded noise levels.
func (r *Recorder) Levels() [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]float64(nil), r.levels...)
}

// Inputs returns copies of the recorded noisy signals.
func (r *Recorder) Inputs() []*mat.Dense {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*mat.Dense(nil), r.inputs...)
}
