package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerAdapter hands out per-component loggers. Backed either by a
// MultiLogger (file per category) or a single console logger.
type LoggerAdapter struct {
	multiLogger  *MultiLogger
	singleLogger *zap.Logger
}

// NewLoggerAdapter creates an adapter backed by a multi-logger.
// Console output still goes to console, categories go to files.
func NewLoggerAdapter(multiLogger *MultiLogger, console *zap.Logger) *LoggerAdapter {
	return &LoggerAdapter{
		multiLogger:  multiLogger,
		singleLogger: OrNop(console),
	}
}

// NewSingleLoggerAdapter creates an adapter that sends every category to one logger
func NewSingleLoggerAdapter(l *zap.Logger) *LoggerAdapter {
	return &LoggerAdapter{singleLogger: OrNop(l)}
}

func (la *LoggerAdapter) category(c LogCategory) *zap.Logger {
	named := la.singleLogger.Named(string(c))
	if la.multiLogger == nil {
		return named
	}
	return zap.New(zapcore.NewTee(named.Core(), la.multiLogger.GetLogger(c).Core()))
}

// Service returns the companion service logger
func (la *LoggerAdapter) Service() *zap.Logger {
	return la.category(CategoryService)
}

// Relay returns the relay logger
func (la *LoggerAdapter) Relay() *zap.Logger {
	return la.category(CategoryRelay)
}

// Observer returns the page observer logger
func (la *LoggerAdapter) Observer() *zap.Logger {
	return la.category(CategoryObserver)
}

// LogError logs an error to the category log and the error log
func (la *LoggerAdapter) LogError(category LogCategory, msg string, fields ...zap.Field) {
	if la.multiLogger != nil {
		la.multiLogger.LogError(category, msg, fields...)
	}
	la.singleLogger.Error(msg, fields...)
}

// Console returns the plain console logger
func (la *LoggerAdapter) Console() *zap.Logger {
	return la.singleLogger
}

// Sync flushes all loggers
func (la *LoggerAdapter) Sync() error {
	_ = la.singleLogger.Sync()
	if la.multiLogger != nil {
		return la.multiLogger.Sync()
	}
	return nil
}
