package diffusion

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-wavegrad/diffusion/rng"
)

// SampleSegments splits features along time into windows of segmentLength
// frames (the last may be shorter), samples every window as an independent
// chain and concatenates the results in window order.
//
// Window i draws from rng.New(seed, i), so it equals Sample on that window
// with the same generator. Up to Workers() windows run concurrently. With
// storeIntermediate, state k of the result is the concatenation of state k
// of every window.
//
// Windows are joined without overlap or cross-fading, which can leave
// audible discontinuities at [Process.SegmentBoundaries].
func (p *Process) SampleSegments(ctx context.Context, features Features, segmentLength int, seed uint64, storeIntermediate bool) (Trajectory, error) {
	if segmentLength <= 0 {
		return Trajectory{}, ErrInvalidSegmentLength
	}
	if err := features.Validate(); err != nil {
		return Trajectory{}, err
	}

	chunks := features.Split(segmentLength)
	results := make([]Trajectory, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.workers)
	for i, chunk := range chunks {
		g.Go(func() error {
			tr, err := p.sample(gctx, chunk, rng.New(seed, uint64(i)), storeIntermediate, i)
			if err != nil {
				return err
			}
			results[i] = tr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Trajectory{}, err
	}

	return concatTrajectories(results, features.Batch(), features.Frames()*p.totalFactor), nil
}

// SegmentBoundaries returns the sample offsets at which SampleSegments joins
// consecutive windows for a sequence of frames frames.
func (p *Process) SegmentBoundaries(frames, segmentLength int) []int {
	if segmentLength <= 0 || frames <= segmentLength {
		return nil
	}
	var out []int
	for f := segmentLength; f < frames; f += segmentLength {
		out = append(out, f*p.totalFactor)
	}
	return out
}

func concatTrajectories(parts []Trajectory, rows, cols int) Trajectory {
	if len(parts) == 1 {
		return parts[0]
	}

	states := make([]*mat.Dense, parts[0].Len())
	for k := range states {
		out := mat.NewDense(rows, cols, nil)
		offset := 0
		for _, part := range parts {
			s := part.States[k]
			_, n := s.Dims()
			out.Slice(0, rows, offset, offset+n).(*mat.Dense).Copy(s)
			offset += n
		}
		states[k] = out
	}
	return Trajectory{States: states}
}
