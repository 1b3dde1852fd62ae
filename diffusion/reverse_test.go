package diffusion_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-wavegrad/diffusion"
	"github.com/cwbudde/algo-wavegrad/diffusion/rng"
	"github.com/cwbudde/algo-wavegrad/internal/testutil"
)

func TestPredictStartRoundTrip(t *testing.T) {
	p := newProcess(t, 50, testutil.ZeroPredictor())
	s := p.Schedule()
	bounds := s.SqrtAlphaCumprodPrevWithBoundary()

	y0 := testutil.DeterministicSine(2, 40, 0.9)
	eps := testutil.DeterministicNoise(3, 2, 2, 40)

	for _, step := range []int{0, 1, 24, 49} {
		// bounds[step+1] = sqrt(alphaCumprod[step]) is the level step's
		// coefficients invert.
		level := bounds[step+1]
		noisy, err := diffusion.Diffuse(y0, []float64{level, level}, eps)
		if err != nil {
			t.Fatalf("Diffuse() error = %v", err)
		}

		got := diffusion.PredictStartFromNoise(s, noisy, step, eps)
		testutil.RequireMatrixNearlyEqual(t, got, y0, 1e-12)
	}
}

func TestPosterior(t *testing.T) {
	p := newProcess(t, 10, testutil.ZeroPredictor())
	s := p.Schedule()
	yStart := testutil.DeterministicSine(2, 8, 0.5)
	yt := testutil.DeterministicNoise(1, 1, 2, 8)

	mean, logVar := diffusion.Posterior(s, yStart, yt, 4)

	c1, c2 := s.PosteriorMeanCoef1()[4], s.PosteriorMeanCoef2()[4]
	want := mat.NewDense(2, 8, nil)
	want.Apply(func(i, j int, _ float64) float64 {
		return c1*yStart.At(i, j) + c2*yt.At(i, j)
	}, want)
	testutil.RequireMatrixNearlyEqual(t, mean, want, 1e-15)

	if logVar != s.PosteriorLogVarianceClipped()[4] {
		t.Fatalf("logVar = %v, want %v", logVar, s.PosteriorLogVarianceClipped()[4])
	}
}

func TestMeanVarianceQueriesStepNoiseLevel(t *testing.T) {
	rec := &testutil.Recorder{Next: testutil.ZeroPredictor()}
	p := newProcess(t, 10, rec)
	f := testutil.Features(1, 3, 4, 2)
	yt := testutil.DeterministicNoise(2, 1, 3, 2*testFactor)

	if _, _, err := p.MeanVariance(context.Background(), f, yt, 7, true); err != nil {
		t.Fatalf("MeanVariance() error = %v", err)
	}

	levels := rec.Levels()
	want := p.Schedule().NoiseLevel(7)
	if len(levels) != 1 || len(levels[0]) != 3 {
		t.Fatalf("levels = %v, want one call with 3 entries", levels)
	}
	for i, l := range levels[0] {
		if l != want {
			t.Fatalf("levels[%d] = %v, want %v", i, l, want)
		}
	}
}

func TestMeanVarianceClipsEstimate(t *testing.T) {
	f := testutil.Features(1, 1, 2, 2)
	yt := testutil.DeterministicNoise(2, 1, 1, 2*testFactor)
	eps := testutil.DeterministicNoise(3, 50, 1, 2*testFactor) // pushes the estimate far outside [-1, 1]
	ytCopy := mat.DenseCopyOf(yt)

	p := newProcess(t, 10, testutil.ConstantPredictor(eps))
	s := p.Schedule()
	const step = 5

	mean, logVar, err := p.MeanVariance(context.Background(), f, yt, step, true)
	if err != nil {
		t.Fatalf("MeanVariance() error = %v", err)
	}

	start := diffusion.PredictStartFromNoise(s, yt, step, eps)
	clipped := mat.DenseCopyOf(start)
	clipped.Apply(func(_, _ int, v float64) float64 { return math.Max(-1, math.Min(1, v)) }, clipped)
	wantMean, wantLogVar := diffusion.Posterior(s, clipped, yt, step)

	testutil.RequireMatrixIdentical(t, mean, wantMean)
	if logVar != wantLogVar {
		t.Fatalf("logVar = %v, want %v", logVar, wantLogVar)
	}
	testutil.RequireMatrixIdentical(t, yt, ytCopy)

	unclipped, _, err := p.MeanVariance(context.Background(), f, yt, step, false)
	if err != nil {
		t.Fatalf("MeanVariance() error = %v", err)
	}
	rawMean, _ := diffusion.Posterior(s, start, yt, step)
	testutil.RequireMatrixIdentical(t, unclipped, rawMean)
}

func TestReverseStepFinalIsDeterministic(t *testing.T) {
	p := newProcess(t, 10, testutil.ScalePredictor(0.5, testFactor))
	f := testutil.Features(3, 2, 4, 3)
	yt := testutil.DeterministicNoise(4, 1, 2, 3*testFactor)

	src := rng.New(1, 0)
	a, err := p.ReverseStep(context.Background(), f, yt, 0, true, src)
	if err != nil {
		t.Fatalf("ReverseStep() error = %v", err)
	}
	b, err := p.ReverseStep(context.Background(), f, yt, 0, true, rng.New(2, 0))
	if err != nil {
		t.Fatalf("ReverseStep() error = %v", err)
	}
	testutil.RequireMatrixIdentical(t, a, b)

	// No randomness consumed at t=0.
	if got, want := src.NormFloat64(), rng.New(1, 0).NormFloat64(); got != want {
		t.Fatalf("source advanced at t=0: next draw %v, want %v", got, want)
	}

	mean, _, _ := p.MeanVariance(context.Background(), f, yt, 0, true)
	testutil.RequireMatrixIdentical(t, a, mean)
}

func TestReverseStepInjectsScaledNoise(t *testing.T) {
	p := newProcess(t, 10, testutil.ScalePredictor(0.5, testFactor))
	f := testutil.Features(3, 2, 4, 3)
	yt := testutil.DeterministicNoise(4, 1, 2, 3*testFactor)
	const step = 6

	got, err := p.ReverseStep(context.Background(), f, yt, step, true, rng.New(8, 0))
	if err != nil {
		t.Fatalf("ReverseStep() error = %v", err)
	}

	mean, logVar, _ := p.MeanVariance(context.Background(), f, yt, step, true)
	z := rng.Normal(rng.New(8, 0), 2, 3*testFactor)
	sigma := math.Exp(0.5 * logVar)

	want := mat.NewDense(2, 3*testFactor, nil)
	want.Apply(func(i, j int, _ float64) float64 { return mean.At(i, j) + z.At(i, j)*sigma }, want)
	testutil.RequireMatrixNearlyEqual(t, got, want, 1e-14)

	other, _ := p.ReverseStep(context.Background(), f, yt, step, true, rng.New(9, 0))
	if mat.Equal(got, other) {
		t.Fatal("different seeds produced identical steps")
	}
}

func TestReverseStepOutOfRangePanics(t *testing.T) {
	p := newProcess(t, 4, testutil.ZeroPredictor())
	f := testutil.Features(1, 1, 2, 1)
	yt := mat.NewDense(1, testFactor, nil)

	for _, step := range []int{-1, 4} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("ReverseStep(t=%d) did not panic", step)
				}
			}()
			_, _ = p.ReverseStep(context.Background(), f, yt, step, true, rng.New(1, 0))
		}()
	}
}

func TestReverseStepPropagatesPredictorError(t *testing.T) {
	boom := errors.New("predictor exploded")
	p := newProcess(t, 4, testutil.FailingPredictor(boom, 0))
	f := testutil.Features(1, 1, 2, 1)
	yt := mat.NewDense(1, testFactor, nil)

	_, err := p.ReverseStep(context.Background(), f, yt, 2, true, rng.New(1, 0))
	if err != boom {
		t.Fatalf("ReverseStep() error = %v, want the predictor's error unchanged", err)
	}
}

func TestReverseStepRejectsBadShapes(t *testing.T) {
	p := newProcess(t, 4, testutil.ZeroPredictor())
	f := testutil.Features(1, 2, 2, 3)

	tests := []struct {
		name string
		yt   *mat.Dense
	}{
		{name: "batch", yt: mat.NewDense(1, 3*testFactor, nil)},
		{name: "length", yt: mat.NewDense(2, 3*testFactor+1, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ReverseStep(context.Background(), f, tt.yt, 1, true, rng.New(1, 0))
			if !errors.Is(err, diffusion.ErrShapeMismatch) {
				t.Fatalf("ReverseStep() error = %v, want ErrShapeMismatch", err)
			}
		})
	}
}

func TestReverseStepRejectsBadPredictorOutput(t *testing.T) {
	p := newProcess(t, 4, testutil.ConstantPredictor(mat.NewDense(1, 3, nil)))
	f := testutil.Features(1, 1, 2, 1)
	yt := mat.NewDense(1, testFactor, nil)

	_, err := p.ReverseStep(context.Background(), f, yt, 1, true, rng.New(1, 0))
	if !errors.Is(err, diffusion.ErrPredictorOutput) {
		t.Fatalf("ReverseStep() error = %v, want ErrPredictorOutput", err)
	}
}
