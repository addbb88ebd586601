package configtypes

import "time"

// ResolveLogEvent describes one descriptor resolution for logging.
type ResolveLogEvent struct {
	Key        string
	Kind       Kind
	SnapshotID string
	Duration   time.Duration
	Err        error
}

// ResolveLogger records resolution events.
type ResolveLogger interface {
	LogResolution(ResolveLogEvent)
}

// ResolveLoggerFunc adapts a function to ResolveLogger.
type ResolveLoggerFunc func(ResolveLogEvent)

// LogResolution implements ResolveLogger.
func (f ResolveLoggerFunc) LogResolution(event ResolveLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopResolveLogger struct{}

func (noopResolveLogger) LogResolution(ResolveLogEvent) {}

// WithResolveLogger attaches a resolution logger to the Resolver.
func WithResolveLogger(logger ResolveLogger) Option {
	return func(cfg *resolverConfig) {
		if logger == nil {
			cfg.logger = noopResolveLogger{}
			return
		}
		cfg.logger = logger
	}
}
