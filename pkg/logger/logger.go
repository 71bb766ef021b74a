package logger

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface used by the library.
type Logger interface {
	Info(msg string, obj any)
	Warn(msg string, obj any)
	Debug(msg string, obj any)
	Error(msg string, obj any)
}

// NopLogger discards all log messages.
type NopLogger struct{}

func (NopLogger) Info(string, any)  {}
func (NopLogger) Warn(string, any)  {}
func (NopLogger) Debug(string, any) {}
func (NopLogger) Error(string, any) {}

// ZapLogger adapts a zap logger to Logger. Structured payloads are attached
// under the "obj" field.
type ZapLogger struct {
	base *zap.Logger
}

// NewZapLogger builds a console logger that writes to w. Debug entries are
// only emitted when verbose is set.
func NewZapLogger(w io.Writer, verbose bool) *ZapLogger {
	if w == nil {
		w = io.Discard
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.CallerKey = ""
	encoderConfig.StacktraceKey = ""

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), level)
	return &ZapLogger{base: zap.New(core)}
}

func (l *ZapLogger) fields(obj any) []zap.Field {
	if obj == nil {
		return nil
	}
	return []zap.Field{zap.Any("obj", obj)}
}

func (l *ZapLogger) Info(msg string, obj any)  { l.base.Info(msg, l.fields(obj)...) }
func (l *ZapLogger) Warn(msg string, obj any)  { l.base.Warn(msg, l.fields(obj)...) }
func (l *ZapLogger) Debug(msg string, obj any) { l.base.Debug(msg, l.fields(obj)...) }
func (l *ZapLogger) Error(msg string, obj any) { l.base.Error(msg, l.fields(obj)...) }

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.base.Sync()
}

// Debug writes a debug log when enabled and logger is non-nil.
func Debug(enabled bool, logger Logger, msg string, obj any) {
	if !enabled || logger == nil {
		return
	}
	logger.Debug(msg, obj)
}

// Debugf is a compatibility helper for format-style debug logging.
func Debugf(enabled bool, logger Logger, format string, args ...any) {
	Debug(enabled, logger, fmt.Sprintf(format, args...), nil)
}

// Info writes an info log when logger is non-nil.
func Info(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Info(msg, obj)
}

// Warn writes a warning log when logger is non-nil.
func Warn(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Warn(msg, obj)
}

// Error writes an error log when logger is non-nil.
func Error(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Error(msg, obj)
}
