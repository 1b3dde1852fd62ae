package diffusion

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-wavegrad/diffusion/rng"
)

// Trajectory is the output of a sampling run: the chronological sequence of
// signal states. It holds only the final waveform unless intermediate
// states were requested, in which case it starts with the initial noise and
// holds Steps()+1 states.
type Trajectory struct {
	States []*mat.Dense
}

// Final returns the terminal state, the generated waveform.
func (tr Trajectory) Final() *mat.Dense {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1]
}

// Len returns the number of stored states.
func (tr Trajectory) Len() int { return len(tr.States) }

// Sample generates a waveform batch from features by running every reverse
// step from Steps()-1 down to 0.
//
// The initial state is batch×(frames*TotalFactor()) standard normal noise
// drawn from src. ctx is checked between steps.
func (p *Process) Sample(ctx context.Context, features Features, src rng.Source, storeIntermediate bool) (Trajectory, error) {
	return p.sample(ctx, features, src, storeIntermediate, 0)
}

func (p *Process) sample(ctx context.Context, features Features, src rng.Source, storeIntermediate bool, chunk int) (Trajectory, error) {
	if err := features.Validate(); err != nil {
		return Trajectory{}, err
	}

	y := rng.Normal(src, features.Batch(), features.Frames()*p.totalFactor)

	var states []*mat.Dense
	if storeIntermediate {
		states = make([]*mat.Dense, 0, p.sched.Steps()+1)
		states = append(states, y)
	}

	for t := p.sched.Steps() - 1; t >= 0; t-- {
		if err := ctx.Err(); err != nil {
			return Trajectory{}, err
		}

		next, err := p.ReverseStep(ctx, features, y, t, p.opts.clipDenoised, src)
		if err != nil {
			return Trajectory{}, err
		}
		y = next

		if storeIntermediate {
			states = append(states, y)
		}
		if p.opts.stepHook != nil {
			p.opts.stepHook(chunk, t)
		}
	}

	if !storeIntermediate {
		states = []*mat.Dense{y}
	}
	return Trajectory{States: states}, nil
}
