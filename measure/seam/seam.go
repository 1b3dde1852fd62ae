package seam

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-wavegrad/dsp/window"
)

const (
	defaultFrameSize = 256
	// default high band starts at a quarter of the sample rate
	defaultHighBandFraction = 0.25
)

var (
	// ErrInvalidBoundary reports a join offset that is out of range, not
	// increasing, or too close to the signal edges for a full frame.
	ErrInvalidBoundary = errors.New("seam: invalid boundary")
	// ErrInvalidFrameSize reports a frame size that is not a power of two >= 8.
	ErrInvalidFrameSize = errors.New("seam: invalid frame size")
)

// Config holds seam analysis parameters.
type Config struct {
	// SampleRate in Hz. Zero makes HighBandHz an FFT bin index.
	SampleRate float64
	// FrameSize is the analysis frame length in samples, a power of two.
	// Zero selects 256.
	FrameSize int
	// HighBandHz is the lower edge of the band counted as high-frequency
	// energy. Zero selects SampleRate/4.
	HighBandHz float64
	// WindowType is the analysis window, applied in periodic form. Zero
	// selects Hann.
	WindowType window.Type
}

// Seam describes one join.
type Seam struct {
	// Offset is the index of the first sample after the join.
	Offset int
	// Jump is |x[Offset] - x[Offset-1]|.
	Jump float64
	// JumpRatio is Jump divided by the mean absolute first difference of
	// the rest of the frame. It is +Inf when the rest of the frame is flat
	// and the jump is not.
	JumpRatio float64
	// HighBandRatio is the high-band share of the frame energy.
	HighBandRatio float64
}

// Report summarizes every join of a waveform.
type Report struct {
	Seams []Seam

	MeanJump      float64
	StdJump       float64
	MaxJump       float64
	MeanJumpRatio float64

	MeanHighBandRatio float64
	// BaselineHighBandRatio is the mean high-band share of the
	// non-overlapping frames that contain no join, NaN if there are none.
	BaselineHighBandRatio float64
}

// Analyzer holds a prepared FFT plan and window for one configuration.
// It is not safe for concurrent use.
type Analyzer struct {
	cfg     Config
	highBin int
	plan    *algofft.Plan[complex128]
	coeffs  []float64

	frame []float64
	in    []complex128
	out   []complex128
	re    []float64
	im    []float64
	power []float64
}

// NewAnalyzer validates cfg and prepares the FFT plan.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	cfg = normalizeConfig(cfg)
	n := cfg.FrameSize
	if n < 8 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrameSize, n)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("seam: fft plan: %w", err)
	}

	bins := n/2 + 1
	binHz := cfg.SampleRate / float64(n)
	highBin := int(math.Ceil(cfg.HighBandHz / binHz))
	highBin = min(max(highBin, 1), bins-1)

	return &Analyzer{
		cfg:     cfg,
		highBin: highBin,
		plan:    plan,
		coeffs:  window.Generate(cfg.WindowType, n, window.WithPeriodic()),
		frame:   make([]float64, n),
		in:      make([]complex128, n),
		out:     make([]complex128, n),
		re:      make([]float64, bins),
		im:      make([]float64, bins),
		power:   make([]float64, bins),
	}, nil
}

// Analyze is a one-shot analysis of signal with joins at boundaries.
func Analyze(signal []float64, boundaries []int, cfg Config) (Report, error) {
	a, err := NewAnalyzer(cfg)
	if err != nil {
		return Report{}, err
	}
	return a.Analyze(signal, boundaries)
}

// Analyze measures every join. Boundaries must be strictly increasing and
// leave half a frame of signal on both sides.
func (a *Analyzer) Analyze(signal []float64, boundaries []int) (Report, error) {
	half := a.cfg.FrameSize / 2
	prev := 0
	for i, b := range boundaries {
		if b <= prev && i > 0 {
			return Report{}, fmt.Errorf("%w: offset %d after %d", ErrInvalidBoundary, b, prev)
		}
		if b-half < 0 || b+half > len(signal) {
			return Report{}, fmt.Errorf("%w: offset %d needs %d samples on each side of a %d-sample signal", ErrInvalidBoundary, b, half, len(signal))
		}
		prev = b
	}

	rep := Report{Seams: make([]Seam, len(boundaries))}
	jumps := make([]float64, len(boundaries))
	ratios := make([]float64, len(boundaries))
	highs := make([]float64, len(boundaries))

	for i, b := range boundaries {
		frame := signal[b-half : b+half]
		s := Seam{
			Offset:        b,
			Jump:          math.Abs(signal[b] - signal[b-1]),
			HighBandRatio: a.highBandRatio(frame),
		}
		s.JumpRatio = jumpRatio(frame, half, s.Jump)

		rep.Seams[i] = s
		jumps[i] = s.Jump
		ratios[i] = s.JumpRatio
		highs[i] = s.HighBandRatio
		rep.MaxJump = math.Max(rep.MaxJump, s.Jump)
	}

	if len(boundaries) > 0 {
		rep.MeanJump, rep.StdJump = stat.MeanStdDev(jumps, nil)
		if len(boundaries) == 1 {
			rep.StdJump = 0
		}
		rep.MeanJumpRatio = stat.Mean(ratios, nil)
		rep.MeanHighBandRatio = stat.Mean(highs, nil)
	}
	rep.BaselineHighBandRatio = a.baseline(signal, boundaries)
	return rep, nil
}

// highBandRatio returns the share of windowed frame energy at or above the
// high band edge. Silent frames give 0.
func (a *Analyzer) highBandRatio(frame []float64) float64 {
	vecmath.MulBlock(a.frame, frame, a.coeffs)
	for i, v := range a.frame {
		a.in[i] = complex(v, 0)
	}
	if err := a.plan.Forward(a.out, a.in); err != nil {
		return math.NaN()
	}

	for k := range a.re {
		a.re[k] = real(a.out[k])
		a.im[k] = imag(a.out[k])
	}
	vecmath.Power(a.power, a.re, a.im)

	var total, high float64
	for k, p := range a.power[1:] {
		total += p
		if k+1 >= a.highBin {
			high += p
		}
	}
	if total == 0 {
		return 0
	}
	return high / total
}

// baseline averages the high-band ratio of join-free frames.
func (a *Analyzer) baseline(signal []float64, boundaries []int) float64 {
	n := a.cfg.FrameSize
	var ratios []float64
	next := 0
	for start := 0; start+n <= len(signal); start += n {
		for next < len(boundaries) && boundaries[next] <= start {
			next++
		}
		if next < len(boundaries) && boundaries[next] < start+n {
			continue
		}
		ratios = append(ratios, a.highBandRatio(signal[start:start+n]))
	}
	if len(ratios) == 0 {
		return math.NaN()
	}
	return stat.Mean(ratios, nil)
}

// jumpRatio compares the step at frame[at] with the other first
// differences in the frame.
func jumpRatio(frame []float64, at int, jump float64) float64 {
	var sum float64
	count := 0
	for i := 1; i < len(frame); i++ {
		if i == at {
			continue
		}
		sum += math.Abs(frame[i] - frame[i-1])
		count++
	}
	local := sum / float64(count)
	switch {
	case local > 0:
		return jump / local
	case jump == 0:
		return 0
	default:
		return math.Inf(1)
	}
}

func normalizeConfig(cfg Config) Config {
	if cfg.FrameSize == 0 {
		cfg.FrameSize = defaultFrameSize
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = float64(cfg.FrameSize)
	}
	if cfg.WindowType == 0 {
		cfg.WindowType = window.TypeHann
	}
	if cfg.HighBandHz <= 0 {
		cfg.HighBandHz = cfg.SampleRate * defaultHighBandFraction
	}
	return cfg
}
