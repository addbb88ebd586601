package configtypes

import (
	"errors"

	"go.uber.org/zap"
)

// ZapResolveLogger writes resolution events to logger. Successful resolutions
// log at debug, unknown keys at warn and unreachable kinds at error.
func ZapResolveLogger(logger *zap.Logger) ResolveLogger {
	if logger == nil {
		return noopResolveLogger{}
	}
	return zapResolveLogger{logger: logger.Named("configtypes")}
}

type zapResolveLogger struct {
	logger *zap.Logger
}

func (l zapResolveLogger) LogResolution(event ResolveLogEvent) {
	fields := []zap.Field{
		zap.String("key", event.Key),
		zap.Duration("duration", event.Duration),
	}
	if event.Kind != "" {
		fields = append(fields, zap.String("kind", event.Kind.String()))
	}
	if event.SnapshotID != "" {
		fields = append(fields, zap.String("snapshot_id", event.SnapshotID))
	}

	switch {
	case event.Err == nil:
		l.logger.Debug("resolved config type", fields...)
	case errors.Is(event.Err, ErrUnreachableKind):
		l.logger.Error("unreachable config type kind", append(fields, zap.Error(event.Err))...)
	default:
		l.logger.Warn("config type resolution failed", append(fields, zap.Error(event.Err))...)
	}
}
