// Package rng provides the random source used by the diffusion process.
//
// Every stochastic operation (noise-level sampling, forward diffusion noise,
// reverse-step noise and the initial sampler state) draws from a [Source].
// A Source is not safe for concurrent use; concurrent sampling gives each
// worker its own isolated stream created with [New].
//
// Seeding policy: a top-level call takes one seed, and independent chains
// inside that call use consecutive stream numbers under that seed. Two
// generators created with the same seed and stream produce identical draws.
package rng

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Source draws the random numbers needed by the diffusion process.
//
// *rand.Rand from math/rand/v2 satisfies Source.
type Source interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// IntN returns a uniform integer in [0, n). It panics if n <= 0.
	IntN(n int) int
	// NormFloat64 returns a standard normal value.
	NormFloat64() float64
}

// New returns a deterministic generator for the given seed and stream.
func New(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

// FillNormal overwrites dst with standard normal draws.
func FillNormal(src Source, dst []float64) {
	for i := range dst {
		dst[i] = src.NormFloat64()
	}
}

// Normal returns a rows×cols matrix of standard normal draws.
// Values are drawn row by row.
func Normal(src Source, rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	FillNormal(src, data)
	return mat.NewDense(rows, cols, data)
}

// NormalLike returns a matrix of standard normal draws with the shape of m.
func NormalLike(src Source, m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	return Normal(src, r, c)
}
