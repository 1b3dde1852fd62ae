package diffusion

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Features is a batch of acoustic feature matrices, one mels×frames matrix
// per batch entry. The diffusion process never modifies them.
type Features []*mat.Dense

// Batch returns the number of batch entries.
func (f Features) Batch() int { return len(f) }

// Frames returns the number of time frames, or 0 for an empty batch.
func (f Features) Frames() int {
	if len(f) == 0 {
		return 0
	}
	_, c := f[0].Dims()
	return c
}

// Mels returns the number of feature channels, or 0 for an empty batch.
func (f Features) Mels() int {
	if len(f) == 0 {
		return 0
	}
	r, _ := f[0].Dims()
	return r
}

// Validate reports ErrEmptyFeatures for an empty batch and ErrShapeMismatch
// when the entries do not share one shape.
func (f Features) Validate() error {
	if len(f) == 0 || f[0] == nil {
		return ErrEmptyFeatures
	}
	r, c := f[0].Dims()
	if r == 0 || c == 0 {
		return ErrEmptyFeatures
	}
	for i, m := range f[1:] {
		if m == nil {
			return fmt.Errorf("%w: features[%d] is nil", ErrShapeMismatch, i+1)
		}
		if mr, mc := m.Dims(); mr != r || mc != c {
			return fmt.Errorf("%w: features[%d] is %dx%d, want %dx%d", ErrShapeMismatch, i+1, mr, mc, r, c)
		}
	}
	return nil
}

// Split cuts the batch along time into consecutive windows of n frames.
// The last window holds the remainder and may be shorter. Windows are views
// of the original matrices. Split panics if n <= 0.
func (f Features) Split(n int) []Features {
	if n <= 0 {
		panic("diffusion: split length must be > 0")
	}

	rows, frames := f.Mels(), f.Frames()
	var out []Features
	for start := 0; start < frames; start += n {
		end := min(start+n, frames)
		chunk := make(Features, len(f))
		for i, m := range f {
			chunk[i] = m.Slice(0, rows, start, end).(*mat.Dense)
		}
		out = append(out, chunk)
	}
	return out
}
