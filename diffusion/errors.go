package diffusion

import "errors"

var (
	// ErrNilPredictor indicates a Process constructed without a noise predictor.
	ErrNilPredictor = errors.New("diffusion: nil predictor")
	// ErrEmptyFeatures indicates a feature batch with no entries or no frames.
	ErrEmptyFeatures = errors.New("diffusion: empty features")
	// ErrShapeMismatch indicates inconsistent feature, signal or noise shapes.
	ErrShapeMismatch = errors.New("diffusion: shape mismatch")
	// ErrInvalidSegmentLength indicates a non-positive segment length.
	ErrInvalidSegmentLength = errors.New("diffusion: segment length must be > 0")
	// ErrInvalidNoiseLevel indicates a noise level outside [0, 1].
	ErrInvalidNoiseLevel = errors.New("diffusion: noise level must be in [0, 1]")
	// ErrPredictorOutput indicates a predictor result whose shape differs
	// from the noisy signal it was given.
	ErrPredictorOutput = errors.New("diffusion: predictor output shape mismatch")
)
