// Package core holds small numeric helpers shared by the diffusion packages.
package core

import "math"

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	if value < lo {
		return lo
	}

	if value > hi {
		return hi
	}

	return value
}

// ClampBlock writes src clamped to [lo, hi] into dst.
// Slices must have equal length. Panics if lengths differ.
func ClampBlock(dst, src []float64, lo, hi float64) {
	if len(dst) != len(src) {
		panic("core: ClampBlock length mismatch")
	}
	for i, v := range src {
		dst[i] = Clamp(v, lo, hi)
	}
}

// NearlyEqual reports whether a and b are equal within eps, using an
// absolute comparison first and a relative one for large magnitudes.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// IsFinite reports whether every element of x is neither NaN nor Inf.
func IsFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
