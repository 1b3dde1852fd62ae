package diffusion

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-wavegrad/internal/core"
)

// combineRows writes alpha[i]*a[i] + beta[i]*b[i] into dst row by row.
// dst may alias a or b. scratch is reused across rows and returned.
func combineRows(dst, a, b *mat.Dense, alpha, beta func(row int) float64, scratch []float64) []float64 {
	rows, cols := a.Dims()
	scratch = core.EnsureLen(scratch, cols)
	for i := 0; i < rows; i++ {
		vecmath.ScaleBlock(scratch, b.RawRowView(i), beta(i))
		d := dst.RawRowView(i)
		vecmath.ScaleBlock(d, a.RawRowView(i), alpha(i))
		vecmath.AddBlockInPlace(d, scratch)
	}
	return scratch
}

func constant(v float64) func(int) float64 {
	return func(int) float64 { return v }
}

func sameShape(a, b mat.Matrix) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return ar == br && ac == bc
}

func shapeError(what string, got, want mat.Matrix) error {
	gr, gc := got.Dims()
	wr, wc := want.Dims()
	return fmt.Errorf("%w: %s is %dx%d, want %dx%d", ErrShapeMismatch, what, gr, gc, wr, wc)
}

func mustSameShape(what string, got, want mat.Matrix) {
	if !sameShape(got, want) {
		panic(shapeError(what, got, want).Error())
	}
}
