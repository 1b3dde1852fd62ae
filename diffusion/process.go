package diffusion

import (
	"github.com/cwbudde/algo-wavegrad/config"
	"github.com/cwbudde/algo-wavegrad/diffusion/schedule"
)

// Process is a configured diffusion process. It is safe for concurrent use
// as long as its Predictor is.
type Process struct {
	sched         *schedule.Schedule
	predictor     Predictor
	totalFactor   int
	segmentLength int
	opts          options
}

// New validates cfg, builds its noise schedule and returns a Process that
// queries predictor for noise estimates.
func New(cfg config.Config, predictor Predictor, opts ...Option) (*Process, error) {
	if predictor == nil {
		return nil, ErrNilPredictor
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sched, err := cfg.Schedule()
	if err != nil {
		return nil, err
	}

	return &Process{
		sched:         sched,
		predictor:     predictor,
		totalFactor:   cfg.TotalFactor(),
		segmentLength: cfg.MelSegmentLength(),
		opts:          applyOptions(opts...),
	}, nil
}

// WithSchedule returns a copy of p that samples with s instead of the
// training schedule. Inference commonly uses far fewer steps than training.
func (p *Process) WithSchedule(s *schedule.Schedule) *Process {
	cp := *p
	cp.sched = s
	return &cp
}

// Schedule returns the shared, read-only noise schedule.
func (p *Process) Schedule() *schedule.Schedule { return p.sched }

// Steps returns the number of reverse steps of a full sampling run.
func (p *Process) Steps() int { return p.sched.Steps() }

// TotalFactor returns the number of waveform samples per feature frame.
func (p *Process) TotalFactor() int { return p.totalFactor }

// SegmentLength returns the training window size in frames, the natural
// segment length for [Process.SampleSegments].
func (p *Process) SegmentLength() int { return p.segmentLength }

// Workers returns the segment concurrency limit.
func (p *Process) Workers() int { return p.opts.workers }
