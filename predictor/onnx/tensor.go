package onnx

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-wavegrad/diffusion"
)

// packFeatures flattens features into a row-major [B, F, T'] float32 buffer.
func packFeatures(features diffusion.Features) ([]float32, ort.Shape) {
	batch, mels, frames := features.Batch(), features.Mels(), features.Frames()
	out := make([]float32, 0, batch*mels*frames)
	for _, m := range features {
		for i := 0; i < mels; i++ {
			for j := 0; j < frames; j++ {
				out = append(out, float32(m.At(i, j)))
			}
		}
	}
	return out, ort.NewShape(int64(batch), int64(mels), int64(frames))
}

// packSignal flattens a B×L signal into a [B, L] float32 buffer.
func packSignal(m mat.Matrix) ([]float32, ort.Shape) {
	rows, cols := m.Dims()
	out := make([]float32, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out = append(out, float32(m.At(i, j)))
		}
	}
	return out, ort.NewShape(int64(rows), int64(cols))
}

// packLevels converts per-row noise levels into a [B, 1] float32 buffer.
func packLevels(levels []float64) ([]float32, ort.Shape) {
	out := make([]float32, len(levels))
	for i, v := range levels {
		out[i] = float32(v)
	}
	return out, ort.NewShape(int64(len(levels)), 1)
}

// unpackSignal copies a float32 network output into a rows×cols matrix.
func unpackSignal(data []float32, rows, cols int) (*mat.Dense, error) {
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d values, want %dx%d", diffusion.ErrPredictorOutput, len(data), rows, cols)
	}
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return mat.NewDense(rows, cols, out), nil
}
