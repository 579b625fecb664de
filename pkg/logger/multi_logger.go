package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogCategory represents different log categories
type LogCategory string

const (
	CategoryService  LogCategory = "service"  // Companion service requests and downloads (JSON)
	CategoryRelay    LogCategory = "relay"    // Relay exchanges with the service (JSON)
	CategoryObserver LogCategory = "observer" // Page observer navigation and UI transitions (JSON)
	CategoryError    LogCategory = "error"    // Application errors (JSON)
)

// Categories lists every category a MultiLogger writes
var Categories = []LogCategory{CategoryService, CategoryRelay, CategoryObserver, CategoryError}

// MultiLogger provides categorized logging with one JSON file per category and day.
// Raw yt-dlp output is not written here; it is kept on the download record.
type MultiLogger struct {
	loggers map[LogCategory]*zap.Logger
	files   []*os.File
	config  MultiLoggerConfig
	mu      sync.RWMutex
}

// MultiLoggerConfig contains configuration for multi-output logging
type MultiLoggerConfig struct {
	Level   string // debug, info, warn, error
	LogsDir string // Directory for log files
}

// NewMultiLogger creates a new multi-output logger
func NewMultiLogger(config MultiLoggerConfig) (*MultiLogger, error) {
	if config.LogsDir == "" {
		return nil, fmt.Errorf("logs_dir must be specified")
	}

	if err := os.MkdirAll(config.LogsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	ml := &MultiLogger{
		loggers: make(map[LogCategory]*zap.Logger),
		config:  config,
	}

	for _, category := range Categories {
		catLevel := level
		if category == CategoryError {
			catLevel = zapcore.ErrorLevel
		}
		l, err := ml.createStructuredLogger(category, catLevel)
		if err != nil {
			ml.Close()
			return nil, fmt.Errorf("failed to create %s logger: %w", category, err)
		}
		ml.loggers[category] = l
	}

	return ml, nil
}

func (ml *MultiLogger) createStructuredLogger(category LogCategory, level zapcore.Level) (*zap.Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.CallerKey = ""

	file, err := os.OpenFile(ml.LogPath(category, time.Now()), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	ml.files = append(ml.files, file)

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), level)
	return zap.New(core).With(zap.String("category", string(category))), nil
}

// LogPath returns the file a category writes to on the given day
func (ml *MultiLogger) LogPath(category LogCategory, day time.Time) string {
	filename := fmt.Sprintf("%s-%s.log", category, day.Format("20060102"))
	return filepath.Join(ml.config.LogsDir, filename)
}

// GetLogger returns the structured logger for a specific category
func (ml *MultiLogger) GetLogger(category LogCategory) *zap.Logger {
	ml.mu.RLock()
	defer ml.mu.RUnlock()

	if l, ok := ml.loggers[category]; ok {
		return l
	}
	return ml.loggers[CategoryError]
}

// LogError logs to the category log and mirrors the entry into the error log
func (ml *MultiLogger) LogError(category LogCategory, msg string, fields ...zap.Field) {
	if category != CategoryError {
		ml.GetLogger(category).Error(msg, fields...)
	}
	ml.GetLogger(CategoryError).Error(msg, append(fields, zap.String("source", string(category)))...)
}

// Sync flushes all loggers
func (ml *MultiLogger) Sync() error {
	ml.mu.RLock()
	defer ml.mu.RUnlock()

	var lastErr error
	for _, l := range ml.loggers {
		if err := l.Sync(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Close flushes all loggers and closes their files
func (ml *MultiLogger) Close() error {
	lastErr := ml.Sync()

	ml.mu.Lock()
	defer ml.mu.Unlock()
	for _, f := range ml.files {
		if err := f.Close(); err != nil {
			lastErr = err
		}
	}
	ml.files = nil
	return lastErr
}
