package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-wavegrad/config"
	"github.com/cwbudde/algo-wavegrad/diffusion"
	"github.com/cwbudde/algo-wavegrad/diffusion/schedule"
	"github.com/cwbudde/algo-wavegrad/internal/core"
	"github.com/cwbudde/algo-wavegrad/measure/seam"
	"github.com/cwbudde/algo-wavegrad/predictor/onnx"
)

type runOptions struct {
	configPath   string
	modelPath    string
	ortLib       string
	zero         bool
	featuresPath string
	frames       int
	outPath      string
	bitDepth     int
	seed         uint64
	workers      int
	segment      int
	iter         int
	betaMin      float64
	betaMax      float64
}

func run(ctx context.Context, o runOptions, logger *slog.Logger) error {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return err
		}
	}

	predictor, closePredictor, err := openPredictor(o)
	if err != nil {
		return err
	}
	defer closePredictor()

	features, err := loadFeatures(o, cfg.Data.NMels)
	if err != nil {
		return err
	}

	opts := []diffusion.Option{diffusion.WithStepHook(func(chunk, step int) {
		logger.Debug("step done", "segment", chunk, "step", step)
	})}
	if o.workers > 0 {
		opts = append(opts, diffusion.WithWorkers(o.workers))
	}
	p, err := diffusion.New(cfg, predictor, opts...)
	if err != nil {
		return err
	}

	if o.iter > 0 {
		sched, err := inferenceSchedule(cfg, o)
		if err != nil {
			return err
		}
		p = p.WithSchedule(sched)
	}

	segment := p.SegmentLength()
	if o.segment > 0 {
		segment = o.segment
	}

	logger.Info("sampling",
		"frames", features.Frames(),
		"samples", features.Frames()*p.TotalFactor(),
		"steps", p.Steps(),
		"segment", segment,
		"workers", p.Workers(),
		"seed", o.seed)

	start := time.Now()
	tr, err := p.SampleSegments(ctx, features, segment, o.seed, false)
	if err != nil {
		return err
	}
	audio := mat.Row(nil, 0, tr.Final())
	if !core.IsFinite(audio) {
		return errors.New("sampler produced non-finite samples")
	}
	logger.Info("sampling complete", "elapsed", time.Since(start).Round(time.Millisecond))

	reportSeams(logger, audio, p.SegmentBoundaries(features.Frames(), segment), cfg.Data.SampleRate)

	if err := writeWAV(o.outPath, audio, cfg.Data.SampleRate, o.bitDepth); err != nil {
		return err
	}
	logger.Info("wrote output", "path", o.outPath, "sample_rate", cfg.Data.SampleRate, "bits", o.bitDepth)
	return nil
}

func openPredictor(o runOptions) (diffusion.Predictor, func(), error) {
	if o.zero {
		return diffusion.PredictorFunc(zeroNoise), func() {}, nil
	}
	if o.modelPath == "" {
		return nil, nil, errors.New("either -model or -zero is required")
	}
	pred, err := onnx.New(o.modelPath, onnx.WithLibraryPath(o.ortLib))
	if err != nil {
		return nil, nil, err
	}
	return pred, func() { _ = pred.Close() }, nil
}

func zeroNoise(_ context.Context, _ diffusion.Features, noisy *mat.Dense, _ []float64) (*mat.Dense, error) {
	r, c := noisy.Dims()
	return mat.NewDense(r, c, nil), nil
}

// inferenceSchedule builds the linear schedule requested on the command
// line. Unset beta bounds fall back to the configured training range.
func inferenceSchedule(cfg config.Config, o runOptions) (*schedule.Schedule, error) {
	lo, hi := cfg.Model.NoiseSchedule.BetasRange[0], cfg.Model.NoiseSchedule.BetasRange[1]
	if !math.IsNaN(o.betaMin) {
		lo = o.betaMin
	}
	if !math.IsNaN(o.betaMax) {
		hi = o.betaMax
	}
	sched, err := schedule.Linear(o.iter, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("inference schedule: %w", err)
	}
	return sched, nil
}

// reportSeams logs discontinuity measurements for every join that has a
// full analysis frame around it.
func reportSeams(logger *slog.Logger, audio []float64, boundaries []int, sampleRate int) {
	const frame = 256
	a, err := seam.NewAnalyzer(seam.Config{SampleRate: float64(sampleRate), FrameSize: frame})
	if err != nil {
		logger.Warn("seam analysis unavailable", "err", err)
		return
	}

	const half = frame / 2
	usable := boundaries[:0:0]
	for _, b := range boundaries {
		if b-half >= 0 && b+half <= len(audio) {
			usable = append(usable, b)
		}
	}
	if len(usable) == 0 {
		return
	}

	rep, err := a.Analyze(audio, usable)
	if err != nil {
		logger.Warn("seam analysis failed", "err", err)
		return
	}
	for _, s := range rep.Seams {
		logger.Debug("seam", "offset", s.Offset, "jump", s.Jump, "jump_ratio", s.JumpRatio, "high_band", s.HighBandRatio)
	}
	logger.Info("seams",
		"count", len(rep.Seams),
		"max_jump", rep.MaxJump,
		"mean_jump_ratio", rep.MeanJumpRatio,
		"high_band", rep.MeanHighBandRatio,
		"baseline_high_band", rep.BaselineHighBandRatio)
}
