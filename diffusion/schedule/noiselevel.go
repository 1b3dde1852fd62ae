package schedule

import "github.com/cwbudde/algo-wavegrad/diffusion/rng"

// SampleNoiseLevels draws batch continuous noise levels.
//
// Each draw picks a step s uniformly from [1, Steps()] and then a level
// uniformly from the half-open interval [b[s], b[s-1]) between neighbouring
// boundary-table entries. The upper entry is excluded because Float64 never
// returns 1, which only removes a single point of zero probability. The result
// lies in [b[Steps()], 1]. It panics if batch <= 0.
func (s *Schedule) SampleNoiseLevels(src rng.Source, batch int) []float64 {
	if batch <= 0 {
		panic("schedule: batch size must be > 0")
	}

	b := s.sqrtAlphaCumprodPrevBounded
	n := len(s.betas)
	out := make([]float64, batch)
	for i := range out {
		step := 1 + src.IntN(n)
		lo, hi := b[step], b[step-1]
		out[i] = lo + (hi-lo)*src.Float64()
	}
	return out
}
