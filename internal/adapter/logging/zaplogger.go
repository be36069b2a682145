package logging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"solar-relay/internal/domain/ports"
)

// ZapLogger implements ports.Logger on top of a zap.Logger.
type ZapLogger struct {
	logger *zap.Logger
}

var _ ports.Logger = (*ZapLogger)(nil)

// NewZap wraps logger. A nil logger discards everything.
func NewZap(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger}
}

// NewZapProduction builds a JSON production zap logger at the given level.
func NewZapProduction(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Debug logs a debug message.
func (l *ZapLogger) Debug(_ context.Context, msg string, args ...any) {
	l.logger.Debug(msg, toFields(args)...)
}

// Info logs an informational message.
func (l *ZapLogger) Info(_ context.Context, msg string, args ...any) {
	l.logger.Info(msg, toFields(args)...)
}

// Warn logs a warning.
func (l *ZapLogger) Warn(_ context.Context, msg string, args ...any) {
	l.logger.Warn(msg, toFields(args)...)
}

// Error logs an error message.
func (l *ZapLogger) Error(_ context.Context, msg string, args ...any) {
	l.logger.Error(msg, toFields(args)...)
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

// toFields converts slog-style key/value pairs into zap fields.
func toFields(args []any) []zap.Field {
	fields := make([]zap.Field, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("arg%d", i)
		}
		if i+1 >= len(args) {
			fields = append(fields, zap.String("!BADKEY", key))
			break
		}
		switch v := args[i+1].(type) {
		case error:
			fields = append(fields, zap.NamedError(key, v))
		default:
			fields = append(fields, zap.Any(key, v))
		}
	}
	return fields
}
