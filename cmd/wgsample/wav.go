package main

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-wavegrad/internal/core"
)

// writeWAV clamps audio to [-1, 1] and writes it as mono PCM.
func writeWAV(path string, samples []float64, sampleRate, bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 {
		return fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	closed := false
	defer func() {
		if !closed {
			_ = f.Close()
		}
	}()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           pcmSamples(samples, bitDepth),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close encoder: %w", err)
	}

	closed = true
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

// pcmSamples clamps samples to [-1, 1] and rounds them to signed integers
// at the given bit depth.
func pcmSamples(samples []float64, bitDepth int) []int {
	clipped := make([]float64, len(samples))
	core.ClampBlock(clipped, samples, -1, 1)

	full := float64(int(1)<<(bitDepth-1) - 1)
	data := make([]int, len(clipped))
	for i, v := range clipped {
		data[i] = int(math.Round(v * full))
	}
	return data
}
