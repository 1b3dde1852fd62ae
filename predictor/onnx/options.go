package onnx

// Default tensor names of an exported WaveGrad network.
const (
	DefaultFeaturesName   = "mels"
	DefaultNoisyName      = "noisy"
	DefaultNoiseLevelName = "noise_level"
	DefaultOutputName     = "eps"
)

type config struct {
	libraryPath   string
	featuresName  string
	noisyName     string
	levelName     string
	outputName    string
	intraOpThread int
}

// Option configures a Predictor.
type Option func(*config)

// WithLibraryPath sets the path of the ONNX Runtime shared library. It is
// only honored by the call that initializes the runtime.
func WithLibraryPath(path string) Option {
	return func(c *config) {
		if path != "" {
			c.libraryPath = path
		}
	}
}

// WithInputNames overrides the graph input names. Empty names keep the
// defaults.
func WithInputNames(features, noisy, noiseLevel string) Option {
	return func(c *config) {
		if features != "" {
			c.featuresName = features
		}
		if noisy != "" {
			c.noisyName = noisy
		}
		if noiseLevel != "" {
			c.levelName = noiseLevel
		}
	}
}

// WithOutputName overrides the graph output name.
func WithOutputName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.outputName = name
		}
	}
}

// WithIntraOpThreads sets the number of threads ONNX Runtime uses inside a
// single operator.
func WithIntraOpThreads(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.intraOpThread = n
		}
	}
}

func defaultConfig() config {
	return config{
		featuresName: DefaultFeaturesName,
		noisyName:    DefaultNoisyName,
		levelName:    DefaultNoiseLevelName,
		outputName:   DefaultOutputName,
	}
}

func applyOptions(opts ...Option) config {
	c := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}
