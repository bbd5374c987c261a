// Package logger it is a simple encapsulation of the go.uber.org/zap package
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger log writer
var Logger = zap.NewNop()

// SugarLogger simple logger
var SugarLogger = Logger.Sugar()

// InitLogger Initialize logger
func InitLogger(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := new(zapcore.Level)
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return fmt.Errorf("logger: invalid level %q: %w", cfg.Level, err)
	}

	core := zapcore.NewCore(getEncoder(), getLogWriter(cfg), level)
	Replace(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)))
	return nil
}

// Replace swaps the package logger, e.g. for zaptest observers.
func Replace(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	Logger = l
	SugarLogger = l.Sugar()
}

// Sync flushes buffered entries.
func Sync() error {
	return Logger.Sync()
}

func getEncoder() zapcore.Encoder {
	encodeConfig := zap.NewProductionEncoderConfig()
	encodeConfig.TimeKey = "time"
	encodeConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encodeConfig.EncodeDuration = zapcore.SecondsDurationEncoder
	encodeConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encodeConfig.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewJSONEncoder(encodeConfig)
}

func getLogWriter(cfg *Config) zapcore.WriteSyncer {
	writers := make([]zapcore.WriteSyncer, 0, 2)
	if cfg.FileName != "" {
		writers = append(writers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FileName,
			MaxAge:     cfg.MaxAge,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}))
	}
	if cfg.Stdout || len(writers) == 0 {
		writers = append(writers, zapcore.AddSync(os.Stdout))
	}
	return zapcore.NewMultiWriteSyncer(writers...)
}

// Debug logs a message at DebugLevel. The message includes any fields passed
// at the log site, as well as any fields accumulated on the logger.
func Debug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, fields...)
}

// Info logs a message at InfoLevel. The message includes any fields passed
// at the log site, as well as any fields accumulated on the logger.
func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

// Warn logs a message at WarnLevel. The message includes any fields passed
// at the log site, as well as any fields accumulated on the logger.
func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}

// Error logs a message at ErrorLevel. The message includes any fields passed
// at the log site, as well as any fields accumulated on the logger.
func Error(msg string, fields ...zap.Field) {
	Logger.Error(msg, fields...)
}

// With creates a child logger and adds structured context to it. Fields added
// to the child don't affect the parent, and vice versa.
func With(fields ...zap.Field) *zap.Logger {
	return Logger.With(fields...)
}

// Prefix shortens long values (salts, operands) before they are logged.
func Prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
