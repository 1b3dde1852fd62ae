package diffusion_test

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-wavegrad/diffusion"
	"github.com/cwbudde/algo-wavegrad/internal/testutil"
)

func TestFeaturesValidate(t *testing.T) {
	if err := (diffusion.Features{}).Validate(); !errors.Is(err, diffusion.ErrEmptyFeatures) {
		t.Fatalf("Validate() error = %v, want ErrEmptyFeatures", err)
	}

	mixed := diffusion.Features{mat.NewDense(2, 3, nil), mat.NewDense(2, 4, nil)}
	if err := mixed.Validate(); !errors.Is(err, diffusion.ErrShapeMismatch) {
		t.Fatalf("Validate() error = %v, want ErrShapeMismatch", err)
	}
}

func TestFeaturesSplit(t *testing.T) {
	f := testutil.Features(1, 2, 5, 8)
	chunks := f.Split(3)

	wantFrames := []int{3, 3, 2}
	if len(chunks) != len(wantFrames) {
		t.Fatalf("len(chunks) = %d, want %d", len(chunks), len(wantFrames))
	}

	start := 0
	for i, chunk := range chunks {
		if chunk.Frames() != wantFrames[i] {
			t.Fatalf("chunk %d frames = %d, want %d", i, chunk.Frames(), wantFrames[i])
		}
		for b := range chunk {
			for j := 0; j < chunk.Frames(); j++ {
				if chunk[b].At(4, j) != f[b].At(4, start+j) {
					t.Fatalf("chunk %d entry %d frame %d does not view the source", i, b, j)
				}
			}
		}
		start += wantFrames[i]
	}
}

func TestFeaturesSplitPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for split length 0")
		}
	}()
	testutil.Features(1, 1, 2, 2).Split(0)
}
