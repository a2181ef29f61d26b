package format

import "log/slog"

// DefaultMaxPixels bounds width*height accepted by Read.
const DefaultMaxPixels int64 = 1 << 30

type options struct {
	logger    *slog.Logger
	maxPixels int64
}

// Option configures Read and Write.
type Option func(*options)

// WithLogger sets the logger used for soft warnings such as a version
// mismatch. Pass nil to discard them.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMaxPixels sets the largest width*height Read accepts. Decoding
// allocates the full image, so a header above the limit is rejected before
// anything else is read. Values <= 0 select DefaultMaxPixels.
func WithMaxPixels(n int64) Option {
	return func(o *options) {
		o.maxPixels = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.maxPixels <= 0 {
		o.maxPixels = DefaultMaxPixels
	}
	return o
}
