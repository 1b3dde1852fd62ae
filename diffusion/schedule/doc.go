// Package schedule derives the fixed coefficient tables of a diffusion
// noise schedule.
//
// A [Schedule] is built once from its betas and never mutated afterwards,
// so a single *Schedule can be shared by any number of samplers running
// concurrently.
//
// Tables (n = number of steps):
//
//	betas                           n    linearly spaced in [betaMin, betaMax]
//	alphas                          n    1 - beta
//	alphaCumprod                    n    running product of alphas
//	alphaCumprodPrev                n    1 followed by alphaCumprod[:n-1]
//	sqrtAlphaCumprodPrevWithBoundary n+1 1 followed by sqrt(alphaCumprod)
//	sqrtRecipAlphaCumprod           n    sqrt(1/alphaCumprod)
//	sqrtRecipm1AlphaCumprod         n    sqrt(1/alphaCumprod - 1)
//	posteriorLogVarianceClipped     n    log(max(posterior variance, 1e-20))
//	posteriorMeanCoef1/2            n    posterior mean weights
//
// The boundary-prefixed table doubles as the continuous noise-level lookup:
// [Schedule.NoiseLevel] and [Schedule.SampleNoiseLevels] read from it.
package schedule
