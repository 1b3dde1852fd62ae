package diffusion

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// StepHook is called after every completed reverse step. chunk is the
// segment index for segmented sampling and 0 otherwise. Hooks of different
// chunks may run concurrently.
type StepHook func(chunk, step int)

type options struct {
	workers      int
	clipDenoised bool
	stepHook     StepHook
}

// Option configures a Process.
type Option func(*options)

// WithWorkers limits how many segments are sampled concurrently.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithClipDenoised selects whether the sampler clamps the estimated clean
// signal to [-1, 1] before computing the posterior. Enabled by default.
func WithClipDenoised(clip bool) Option {
	return func(o *options) {
		o.clipDenoised = clip
	}
}

// WithStepHook installs a progress callback.
func WithStepHook(hook StepHook) Option {
	return func(o *options) {
		o.stepHook = hook
	}
}

func defaultOptions() options {
	return options{
		workers:      defaultWorkers(),
		clipDenoised: true,
	}
}

func applyOptions(opts ...Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// defaultWorkers returns the physical core count, falling back to logical CPUs.
func defaultWorkers() int {
	if n := cpuid.CPU.PhysicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}
