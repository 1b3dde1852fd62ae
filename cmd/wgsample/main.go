// Command wgsample generates a waveform from mel features with the
// segmented WaveGrad sampler and writes it as a mono WAV file.
//
// Usage:
//
//	wgsample [flags]
//
// Features are read from a JSON file holding one mels×frames array, or
// drawn at random with -frames for smoke tests. The noise network is an
// ONNX export loaded with -model; -zero replaces it with a predictor that
// always estimates zero noise.
//
// Examples:
//
//	wgsample -model wavegrad.onnx -ort-lib /usr/lib/libonnxruntime.so -features mel.json -out speech.wav
//	wgsample -model wavegrad.onnx -features mel.json -iter 6 -beta-min 1e-6 -beta-max 0.01
//	wgsample -zero -frames 100 -out noise.wav -v
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
)

func main() {
	var o runOptions
	flag.StringVar(&o.configPath, "config", "", "JSON configuration file (defaults are used when empty)")
	flag.StringVar(&o.modelPath, "model", "", "ONNX noise network")
	flag.StringVar(&o.ortLib, "ort-lib", "", "path of the ONNX Runtime shared library")
	flag.BoolVar(&o.zero, "zero", false, "use a zero-noise predictor instead of a model")
	flag.StringVar(&o.featuresPath, "features", "", "JSON file with a mels×frames array")
	flag.IntVar(&o.frames, "frames", 0, "draw random features with this many frames instead of reading -features")
	flag.StringVar(&o.outPath, "out", "out.wav", "output WAV file")
	flag.IntVar(&o.bitDepth, "bits", 16, "output bit depth (16 or 24)")
	flag.Uint64Var(&o.seed, "seed", 1, "random seed")
	flag.IntVar(&o.workers, "workers", 0, "segments sampled concurrently (default: physical cores)")
	flag.IntVar(&o.segment, "segment", 0, "segment length in frames (default: from config)")
	flag.IntVar(&o.iter, "iter", 0, "inference steps; replaces the training schedule with a linear one")
	flag.Float64Var(&o.betaMin, "beta-min", math.NaN(), "first beta of the inference schedule")
	flag.Float64Var(&o.betaMax, "beta-max", math.NaN(), "last beta of the inference schedule")
	verbose := flag.Bool("v", false, "log every step")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wgsample [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Generates a waveform from mel features and writes a WAV file.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  wgsample -model wavegrad.onnx -features mel.json -out speech.wav\n")
		fmt.Fprintf(os.Stderr, "  wgsample -zero -frames 100 -out noise.wav -v\n")
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, o, logger); err != nil {
		logger.Error("sampling failed", "err", err)
		os.Exit(1)
	}
}
