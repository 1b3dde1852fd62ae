package onnx

import (
	"context"
	"errors"
	"os"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-wavegrad/diffusion"
	"github.com/cwbudde/algo-wavegrad/internal/testutil"
)

func TestPackFeaturesLayout(t *testing.T) {
	features := diffusion.Features{
		mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
		mat.NewDense(2, 3, []float64{7, 8, 9, 10, 11, 12}),
	}

	data, shape := packFeatures(features)
	if len(shape) != 3 || shape[0] != 2 || shape[1] != 2 || shape[2] != 3 {
		t.Fatalf("shape = %v, want [2 2 3]", shape)
	}
	for i, v := range data {
		if v != float32(i+1) {
			t.Fatalf("data[%d] = %v, want %v", i, v, i+1)
		}
	}
}

func TestPackFeaturesViews(t *testing.T) {
	full := diffusion.Features{mat.NewDense(2, 4, []float64{1, 2, 3, 4, 5, 6, 7, 8})}
	chunk := full.Split(3)[1]

	data, shape := packFeatures(chunk)
	if shape[2] != 1 {
		t.Fatalf("frames = %d, want 1", shape[2])
	}
	if len(data) != 2 || data[0] != 4 || data[1] != 8 {
		t.Fatalf("data = %v, want [4 8]", data)
	}
}

func TestPackSignalAndLevels(t *testing.T) {
	signal := mat.NewDense(2, 2, []float64{0.5, -0.25, 1, -1})
	data, shape := packSignal(signal)
	if shape[0] != 2 || shape[1] != 2 {
		t.Fatalf("shape = %v, want [2 2]", shape)
	}
	want := []float32{0.5, -0.25, 1, -1}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("data[%d] = %v, want %v", i, data[i], want[i])
		}
	}

	levels, lshape := packLevels([]float64{0.9, 0.1})
	if lshape[0] != 2 || lshape[1] != 1 {
		t.Fatalf("level shape = %v, want [2 1]", lshape)
	}
	if levels[0] != float32(0.9) || levels[1] != float32(0.1) {
		t.Fatalf("levels = %v", levels)
	}
}

func TestUnpackSignal(t *testing.T) {
	got, err := unpackSignal([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	if err != nil {
		t.Fatalf("unpackSignal() error = %v", err)
	}
	testutil.RequireMatrixIdentical(t, got, mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}))

	if _, err := unpackSignal([]float32{1, 2, 3}, 2, 3); !errors.Is(err, diffusion.ErrPredictorOutput) {
		t.Fatalf("unpackSignal() error = %v, want ErrPredictorOutput", err)
	}
}

func TestOptions(t *testing.T) {
	c := applyOptions(
		WithInputNames("features", "", "level"),
		WithOutputName("noise"),
		WithIntraOpThreads(-1),
		WithLibraryPath(""),
		nil,
	)
	if c.featuresName != "features" || c.noisyName != DefaultNoisyName || c.levelName != "level" {
		t.Fatalf("input names = %q %q %q", c.featuresName, c.noisyName, c.levelName)
	}
	if c.outputName != "noise" {
		t.Fatalf("output name = %q, want noise", c.outputName)
	}
	if c.intraOpThread != 0 || c.libraryPath != "" {
		t.Fatalf("invalid values were applied: %+v", c)
	}
}

func TestClosedPredictor(t *testing.T) {
	p := &Predictor{}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	features := testutil.Features(1, 1, 2, 2)
	_, err := p.PredictNoise(context.Background(), features, mat.NewDense(1, 4, nil), []float64{0.5})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("PredictNoise() error = %v, want ErrClosed", err)
	}
}

func TestPredictNoiseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Predictor{}).PredictNoise(ctx, testutil.Features(1, 1, 2, 2), mat.NewDense(1, 4, nil), []float64{0.5})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("PredictNoise() error = %v, want context.Canceled", err)
	}
}

// TestModel runs a real exported network. It needs the ONNX Runtime library
// and a model, given by WAVEGRAD_ORT_LIB and WAVEGRAD_ONNX_MODEL.
func TestModel(t *testing.T) {
	lib, model := os.Getenv("WAVEGRAD_ORT_LIB"), os.Getenv("WAVEGRAD_ONNX_MODEL")
	if lib == "" || model == "" {
		t.Skip("WAVEGRAD_ORT_LIB and WAVEGRAD_ONNX_MODEL not set")
	}

	p, err := New(model, WithLibraryPath(lib))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer p.Close()

	const frames, hop = 4, 300
	features := testutil.Features(1, 1, 80, frames)
	noisy := testutil.DeterministicNoise(2, 1, 1, frames*hop)

	eps, err := p.PredictNoise(context.Background(), features, noisy, []float64{0.5})
	if err != nil {
		t.Fatalf("PredictNoise() error = %v", err)
	}
	if r, c := eps.Dims(); r != 1 || c != frames*hop {
		t.Fatalf("dims = %dx%d, want 1x%d", r, c, frames*hop)
	}
	testutil.RequireFinite(t, eps)
}
