// Package log carries the leveled, field-map logging used across the module
// on top of zap.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel defines the severity level for log messages.
type LogLevel string

const (
	// LogInfo is used for general informational messages.
	LogInfo LogLevel = "info"

	// LogWarn is used for potentially harmful situations.
	LogWarn LogLevel = "warn"

	// LogError is used for error events that might still allow the application to continue running.
	LogError LogLevel = "error"

	// LogDebug is used for debugging messages with detailed internal information.
	LogDebug LogLevel = "debug"
)

// Emit writes msg at level with fields attached. A nil logger discards.
// Unknown levels are logged as info.
func Emit(logger *zap.Logger, level LogLevel, msg string, fields map[string]any) {
	if logger == nil {
		return
	}
	if ce := logger.Check(level.zap(), msg); ce != nil {
		ce.Write(Fields(fields)...)
	}
}

// Fields converts a field map into zap fields.
func Fields(fields map[string]any) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}

func (l LogLevel) zap() zapcore.Level {
	switch l {
	case LogWarn:
		return zap.WarnLevel
	case LogError:
		return zap.ErrorLevel
	case LogDebug:
		return zap.DebugLevel
	default:
		return zap.InfoLevel
	}
}
