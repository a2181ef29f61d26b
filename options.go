package pkcc

import (
	"log/slog"
	"math/rand"
)

// Defaults applied by New.
const (
	DefaultBlockWidth    = 2
	DefaultBlockHeight   = 2
	DefaultCodebookSize  = 256
	DefaultSampleRate    = 0.25
	DefaultMaxIterations = 10
	DefaultSeed          = 1234
)

type options struct {
	blockWidth       int
	blockHeight      int
	codebookSize     int
	sampleRate       float64
	maxIterations    int
	seed             int64
	source           rand.Source
	parallelism      int
	maxPixels        int64
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Compressor.
type Option func(*options)

// WithBlockSize sets the block width and height in pixels. Both must fit a
// byte in the container.
func WithBlockSize(width, height int) Option {
	return func(o *options) {
		o.blockWidth = width
		o.blockHeight = height
	}
}

// WithCodebookSize sets the number of centroids to train, in [1, 256].
func WithCodebookSize(k int) Option {
	return func(o *options) {
		o.codebookSize = k
	}
}

// WithSampleRate sets the probability in (0, 1] with which each sliding
// window becomes a training vector.
func WithSampleRate(rate float64) Option {
	return func(o *options) {
		o.sampleRate = rate
	}
}

// WithMaxIterations caps the number of Lloyd passes.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithSeed sets the seed of the generator created for each Encode call.
// Equal seeds and inputs give identical containers.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithSource makes every Encode call draw from src instead of a freshly
// seeded generator. The source is advanced across calls and overrides
// WithSeed. A Compressor with a custom source must not be shared between
// goroutines unless src is safe for concurrent use.
func WithSource(src rand.Source) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithParallelism sets the number of goroutines used for training, block
// encode and block decode. Values <= 1 select the sequential paths.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithMaxPixels caps Width*Height of containers accepted by Decompress.
// Values <= 0 select format.DefaultMaxPixels.
func WithMaxPixels(n int64) Option {
	return func(o *options) {
		o.maxPixels = n
	}
}

// WithMetricsCollector sets a custom metrics collector for monitoring.
//
// If nil is passed, NoopMetricsCollector is used (no metrics collected).
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger sets a custom structured logger.
//
// If nil is passed, NoopLogger is used (no logging).
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithLogLevel installs a text logger on stderr at the given level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		blockWidth:       DefaultBlockWidth,
		blockHeight:      DefaultBlockHeight,
		codebookSize:     DefaultCodebookSize,
		sampleRate:       DefaultSampleRate,
		maxIterations:    DefaultMaxIterations,
		seed:             DefaultSeed,
		parallelism:      1,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
