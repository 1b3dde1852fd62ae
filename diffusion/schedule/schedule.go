package schedule

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrInvalidSteps indicates a non-positive step count.
	ErrInvalidSteps = errors.New("schedule: step count must be > 0")
	// ErrInvalidBetaRange indicates betas outside (0, 1) or a non-ascending range.
	ErrInvalidBetaRange = errors.New("schedule: invalid beta range")
)

// posteriorVarianceFloor keeps log() finite at t=0, where the posterior
// variance is exactly zero.
const posteriorVarianceFloor = 1e-20

// Schedule holds the immutable coefficient tables of a noise schedule.
type Schedule struct {
	betas                       []float64
	alphas                      []float64
	alphaCumprod                []float64
	alphaCumprodPrev            []float64
	sqrtAlphaCumprodPrevBounded []float64
	sqrtRecipAlphaCumprod       []float64
	sqrtRecipm1AlphaCumprod     []float64
	posteriorLogVarianceClipped []float64
	posteriorMeanCoef1          []float64
	posteriorMeanCoef2          []float64
}

// StepCoefficients bundles the per-step scalars used by one reverse step.
type StepCoefficients struct {
	NoiseLevel                  float64
	SqrtRecipAlphaCumprod       float64
	SqrtRecipm1AlphaCumprod     float64
	PosteriorMeanCoef1          float64
	PosteriorMeanCoef2          float64
	PosteriorLogVarianceClipped float64
}

// Linear builds a schedule whose nIter betas are linearly spaced between
// betaMin and betaMax inclusive. It requires nIter > 0 and
// 0 < betaMin < betaMax < 1.
func Linear(nIter int, betaMin, betaMax float64) (*Schedule, error) {
	if nIter <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSteps, nIter)
	}
	if !(betaMin > 0 && betaMin < 1) || !(betaMax > 0 && betaMax < 1) || betaMin >= betaMax {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrInvalidBetaRange, betaMin, betaMax)
	}

	betas := make([]float64, nIter)
	if nIter == 1 {
		betas[0] = betaMin
	} else {
		floats.Span(betas, betaMin, betaMax)
	}

	return build(betas), nil
}

// FromBetas builds a schedule from an explicit beta sequence. Every beta
// must lie in (0, 1). The slice is copied.
func FromBetas(betas []float64) (*Schedule, error) {
	if len(betas) == 0 {
		return nil, fmt.Errorf("%w: 0", ErrInvalidSteps)
	}
	for i, b := range betas {
		if !(b > 0 && b < 1) {
			return nil, fmt.Errorf("%w: beta[%d] = %g", ErrInvalidBetaRange, i, b)
		}
	}

	return build(append([]float64(nil), betas...)), nil
}

func build(betas []float64) *Schedule {
	n := len(betas)
	s := &Schedule{
		betas:                       betas,
		alphas:                      make([]float64, n),
		alphaCumprod:                make([]float64, n),
		alphaCumprodPrev:            make([]float64, n),
		sqrtAlphaCumprodPrevBounded: make([]float64, n+1),
		sqrtRecipAlphaCumprod:       make([]float64, n),
		sqrtRecipm1AlphaCumprod:     make([]float64, n),
		posteriorLogVarianceClipped: make([]float64, n),
		posteriorMeanCoef1:          make([]float64, n),
		posteriorMeanCoef2:          make([]float64, n),
	}

	for i, b := range betas {
		s.alphas[i] = 1 - b
	}
	floats.CumProd(s.alphaCumprod, s.alphas)

	s.alphaCumprodPrev[0] = 1
	copy(s.alphaCumprodPrev[1:], s.alphaCumprod[:n-1])

	s.sqrtAlphaCumprodPrevBounded[0] = 1
	for i, acp := range s.alphaCumprod {
		s.sqrtAlphaCumprodPrevBounded[i+1] = math.Sqrt(acp)
		s.sqrtRecipAlphaCumprod[i] = math.Sqrt(1 / acp)
		s.sqrtRecipm1AlphaCumprod[i] = math.Sqrt(1/acp - 1)
	}

	for i, b := range betas {
		acp := s.alphaCumprod[i]
		prev := s.alphaCumprodPrev[i]

		variance := b * (1 - prev) / (1 - acp)
		s.posteriorLogVarianceClipped[i] = math.Log(math.Max(variance, posteriorVarianceFloor))
		s.posteriorMeanCoef1[i] = b * math.Sqrt(prev) / (1 - acp)
		s.posteriorMeanCoef2[i] = (1 - prev) * math.Sqrt(s.alphas[i]) / (1 - acp)
	}

	return s
}

// Steps returns the number of diffusion steps.
func (s *Schedule) Steps() int { return len(s.betas) }

// NoiseLevel returns the continuous noise level the predictor is conditioned
// on during reverse step t: the boundary table entry at index t.
// It panics if t is outside [0, Steps()).
func (s *Schedule) NoiseLevel(t int) float64 {
	s.checkStep(t)
	return s.sqrtAlphaCumprodPrevBounded[t]
}

// Coefficients returns the scalars needed by reverse step t.
// It panics if t is outside [0, Steps()).
func (s *Schedule) Coefficients(t int) StepCoefficients {
	s.checkStep(t)
	return StepCoefficients{
		NoiseLevel:                  s.sqrtAlphaCumprodPrevBounded[t],
		SqrtRecipAlphaCumprod:       s.sqrtRecipAlphaCumprod[t],
		SqrtRecipm1AlphaCumprod:     s.sqrtRecipm1AlphaCumprod[t],
		PosteriorMeanCoef1:          s.posteriorMeanCoef1[t],
		PosteriorMeanCoef2:          s.posteriorMeanCoef2[t],
		PosteriorLogVarianceClipped: s.posteriorLogVarianceClipped[t],
	}
}

func (s *Schedule) checkStep(t int) {
	if t < 0 || t >= len(s.betas) {
		panic(fmt.Sprintf("schedule: step %d out of range [0, %d)", t, len(s.betas)))
	}
}

// Betas returns a copy of the beta table.
func (s *Schedule) Betas() []float64 { return clone(s.betas) }

// Alphas returns a copy of 1 - beta.
func (s *Schedule) Alphas() []float64 { return clone(s.alphas) }

// AlphaCumprod returns a copy of the cumulative alpha product.
func (s *Schedule) AlphaCumprod() []float64 { return clone(s.alphaCumprod) }

// AlphaCumprodPrev returns a copy of the cumulative product shifted right by one, led by 1.
func (s *Schedule) AlphaCumprodPrev() []float64 { return clone(s.alphaCumprodPrev) }

// SqrtAlphaCumprodPrevWithBoundary returns a copy of the length Steps()+1
// noise-level lookup table.
func (s *Schedule) SqrtAlphaCumprodPrevWithBoundary() []float64 {
	return clone(s.sqrtAlphaCumprodPrevBounded)
}

// SqrtRecipAlphaCumprod returns a copy of sqrt(1/alphaCumprod).
func (s *Schedule) SqrtRecipAlphaCumprod() []float64 { return clone(s.sqrtRecipAlphaCumprod) }

// SqrtRecipm1AlphaCumprod returns a copy of sqrt(1/alphaCumprod - 1).
func (s *Schedule) SqrtRecipm1AlphaCumprod() []float64 { return clone(s.sqrtRecipm1AlphaCumprod) }

// PosteriorLogVarianceClipped returns a copy of the floored posterior log-variance.
func (s *Schedule) PosteriorLogVarianceClipped() []float64 {
	return clone(s.posteriorLogVarianceClipped)
}

// PosteriorMeanCoef1 returns a copy of the y_start weight of the posterior mean.
func (s *Schedule) PosteriorMeanCoef1() []float64 { return clone(s.posteriorMeanCoef1) }

// PosteriorMeanCoef2 returns a copy of the y_t weight of the posterior mean.
func (s *Schedule) PosteriorMeanCoef2() []float64 { return clone(s.posteriorMeanCoef2) }

func clone(s []float64) []float64 {
	return append([]float64(nil), s...)
}
