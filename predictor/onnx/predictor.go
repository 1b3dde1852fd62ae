package onnx

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-wavegrad/diffusion"
)

var (
	// ErrClosed is returned by a Predictor after Close.
	ErrClosed = errors.New("onnx: predictor closed")
	// ErrOutputType is returned when the network output is not a float32 tensor.
	ErrOutputType = errors.New("onnx: output is not a float32 tensor")
)

// Predictor evaluates an ONNX noise-estimation network. It is safe for
// concurrent use, so one Predictor can serve every segment of a
// segmented sampling run.
type Predictor struct {
	mu      sync.RWMutex
	session *ort.DynamicAdvancedSession
	closed  bool
}

var _ diffusion.Predictor = (*Predictor)(nil)

// New loads the model at modelPath.
func New(modelPath string, opts ...Option) (*Predictor, error) {
	cfg := applyOptions(opts...)

	if err := acquireEnvironment(cfg.libraryPath); err != nil {
		return nil, err
	}

	sessionOpts, err := ort.NewSessionOptions()
	if err != nil {
		releaseEnvironment()
		return nil, fmt.Errorf("onnx: session options: %w", err)
	}
	defer sessionOpts.Destroy()

	if err := sessionOpts.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		releaseEnvironment()
		return nil, fmt.Errorf("onnx: session options: %w", err)
	}
	if cfg.intraOpThread > 0 {
		if err := sessionOpts.SetIntraOpNumThreads(cfg.intraOpThread); err != nil {
			releaseEnvironment()
			return nil, fmt.Errorf("onnx: session options: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{cfg.featuresName, cfg.noisyName, cfg.levelName},
		[]string{cfg.outputName},
		sessionOpts,
	)
	if err != nil {
		releaseEnvironment()
		return nil, fmt.Errorf("onnx: load %s: %w", modelPath, err)
	}

	return &Predictor{session: session}, nil
}

// PredictNoise runs the network once. ctx is only checked before the run;
// ONNX Runtime calls cannot be interrupted.
func (p *Predictor) PredictNoise(ctx context.Context, features diffusion.Features, noisy *mat.Dense, noiseLevel []float64) (*mat.Dense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrClosed
	}

	rows, cols := noisy.Dims()
	if len(noiseLevel) != rows || features.Batch() != rows {
		return nil, fmt.Errorf("%w: %d rows, %d levels, batch of %d", diffusion.ErrShapeMismatch, rows, len(noiseLevel), features.Batch())
	}

	melData, melShape := packFeatures(features)
	melTensor, err := ort.NewTensor(melShape, melData)
	if err != nil {
		return nil, fmt.Errorf("onnx: features tensor: %w", err)
	}
	defer melTensor.Destroy()

	noisyData, noisyShape := packSignal(noisy)
	noisyTensor, err := ort.NewTensor(noisyShape, noisyData)
	if err != nil {
		return nil, fmt.Errorf("onnx: signal tensor: %w", err)
	}
	defer noisyTensor.Destroy()

	levelData, levelShape := packLevels(noiseLevel)
	levelTensor, err := ort.NewTensor(levelShape, levelData)
	if err != nil {
		return nil, fmt.Errorf("onnx: noise level tensor: %w", err)
	}
	defer levelTensor.Destroy()

	// Nil outputs are allocated by the runtime.
	outputs := make([]ort.Value, 1)
	if err := p.session.Run([]ort.Value{melTensor, noisyTensor, levelTensor}, outputs); err != nil {
		return nil, fmt.Errorf("onnx: run: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				o.Destroy()
			}
		}
	}()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrOutputType, outputs[0])
	}
	return unpackSignal(out.GetData(), rows, cols)
}

// Close releases the session. Further calls to PredictNoise return
// ErrClosed. Close is idempotent.
func (p *Predictor) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	var err error
	if p.session != nil {
		err = p.session.Destroy()
		p.session = nil
		releaseEnvironment()
	}
	return err
}
