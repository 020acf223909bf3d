package lifelog

import "go.uber.org/zap"

// Option configures pipeline components at construction time.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// LoggerOption injects a zap logger. Components log validation fallbacks
// and skipped rows; without the option they stay silent (zap.NewNop).
func LoggerOption(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func applyOptions(opts []Option) *options {
	o := &options{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return o
}
