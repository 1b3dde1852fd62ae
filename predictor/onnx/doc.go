// Package onnx runs a WaveGrad noise-estimation network exported to ONNX
// through ONNX Runtime and exposes it as a [diffusion.Predictor].
//
// The exported graph is expected to take three float32 inputs and produce
// one float32 output:
//
//	mels        [B, F, T']  conditioning features
//	noisy       [B, L]      current signal
//	noise_level [B, 1]      continuous noise level per row
//	eps         [B, L]      estimated noise (output)
//
// Names can be changed with [WithInputNames] and [WithOutputName]. Values
// are converted between float64 and float32 at the boundary.
//
// The ONNX Runtime shared library is loaded once per process and released
// when the last Predictor is closed.
package onnx
