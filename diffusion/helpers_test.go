package diffusion_test

import (
	"testing"

	"github.com/cwbudde/algo-wavegrad/config"
	"github.com/cwbudde/algo-wavegrad/diffusion"
)

const (
	testFactor  = 4
	testSegment = 3 // frames
)

// testConfig returns a small configuration: 4 samples per frame, 3-frame
// training windows.
func testConfig(nIter int, betaMin, betaMax float64) config.Config {
	cfg := config.Default()
	cfg.Model.Factors = []int{2, 2}
	cfg.Data.HopLength = testFactor
	cfg.Training.SegmentLength = testSegment * testFactor
	cfg.Model.NoiseSchedule = config.NoiseSchedule{NIter: nIter, BetasRange: [2]float64{betaMin, betaMax}}
	return cfg
}

func newProcess(t testing.TB, nIter int, pred diffusion.Predictor, opts ...diffusion.Option) *diffusion.Process {
	t.Helper()
	p, err := diffusion.New(testConfig(nIter, 1e-4, 0.05), pred, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}
