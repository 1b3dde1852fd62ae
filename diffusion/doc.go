// Package diffusion implements the WaveGrad denoising-diffusion process that
// turns mel-spectrogram features into a waveform.
//
// A [Process] combines an immutable noise schedule with an external noise
// [Predictor] and exposes:
//
//   - forward diffusion ([Diffuse], [Process.DiffuseWith])
//   - the posterior and the reverse step ([PredictStartFromNoise], [Posterior],
//     [Process.MeanVariance], [Process.ReverseStep])
//   - sequential sampling ([Process.Sample])
//   - segmented parallel sampling ([Process.SampleSegments])
//   - the training objective ([Process.Loss], [Process.LossTerms])
//
// Signals are gonum matrices of shape batch×samples. Features are one
// mels×frames matrix per batch entry. Every frame corresponds to
// [Process.TotalFactor] waveform samples.
//
// # Segmented sampling
//
// The predictor is trained on short fixed-length windows and degrades on
// longer inputs, so long feature sequences are split into windows of
// SegmentLength frames that are sampled as independent chains and joined
// in order. Chunks are not cross-faded, so audible clicks may appear at the
// seams. [Process.SegmentBoundaries] returns the seam positions and the
// measure/seam package quantifies them.
//
// # Randomness
//
// All draws come from an [rng.Source] passed by the caller. SampleSegments
// takes a single seed and gives chunk i its own generator rng.New(seed, i),
// so chunk i of a segmented run equals Sample on that chunk alone with the
// same generator.
//
// # Errors
//
// Configuration problems are reported by [New]. Shape problems return
// [ErrShapeMismatch] or [ErrEmptyFeatures]. A step index outside the
// schedule is a programming error and panics. Errors returned by the
// predictor are passed through unchanged.
package diffusion
