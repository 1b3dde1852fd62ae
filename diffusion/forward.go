package diffusion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-wavegrad/diffusion/rng"
)

// Diffuse corrupts the clean batch y0 in closed form:
//
//	out[i] = levels[i]*y0[i] + sqrt(1 - levels[i]^2)*eps[i]
//
// levels holds one noise level in [0, 1] per row. eps must have the shape
// of y0. Neither input is modified.
func Diffuse(y0 *mat.Dense, levels []float64, eps *mat.Dense) (*mat.Dense, error) {
	rows, cols := y0.Dims()
	if len(levels) != rows {
		return nil, fmt.Errorf("%w: %d noise levels for %d rows", ErrShapeMismatch, len(levels), rows)
	}
	if !sameShape(eps, y0) {
		return nil, shapeError("noise", eps, y0)
	}
	for i, l := range levels {
		if !(l >= 0 && l <= 1) {
			return nil, fmt.Errorf("%w: levels[%d] = %g", ErrInvalidNoiseLevel, i, l)
		}
	}

	out := mat.NewDense(rows, cols, nil)
	combineRows(out, y0, eps,
		func(i int) float64 { return levels[i] },
		func(i int) float64 { return math.Sqrt(1 - levels[i]*levels[i]) },
		nil)
	return out, nil
}

// Levels selects where DiffuseWith takes its noise levels from.
type Levels struct {
	given []float64
	set   bool
}

// SampledLevels draws one continuous noise level per row from the schedule.
func SampledLevels() Levels { return Levels{} }

// GivenLevels uses the supplied per-row noise levels.
func GivenLevels(levels []float64) Levels { return Levels{given: levels, set: true} }

// Noise selects where DiffuseWith takes its Gaussian noise from.
type Noise struct {
	given *mat.Dense
}

// SampledNoise draws fresh standard normal noise shaped like the signal.
func SampledNoise() Noise { return Noise{} }

// GivenNoise uses the supplied noise matrix.
func GivenNoise(eps *mat.Dense) Noise { return Noise{given: eps} }

// DiffuseWith resolves levels and noise, drawing from src whatever is
// tagged as sampled (levels first, then noise), and applies [Diffuse].
// It returns the noisy signal together with the levels and noise used.
func (p *Process) DiffuseWith(y0 *mat.Dense, levels Levels, noise Noise, src rng.Source) (noisy *mat.Dense, usedLevels []float64, eps *mat.Dense, err error) {
	rows, _ := y0.Dims()

	usedLevels = levels.given
	if !levels.set {
		usedLevels = p.sched.SampleNoiseLevels(src, rows)
	}

	eps = noise.given
	if eps == nil {
		eps = rng.NormalLike(src, y0)
	}

	noisy, err = Diffuse(y0, usedLevels, eps)
	if err != nil {
		return nil, nil, nil, err
	}
	return noisy, usedLevels, eps, nil
}
