package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	current = zap.NewNop()
)

// New builds the process logger. Development gets a colored console encoder at
// debug level, everything else JSON at info level.
func New(environment string) (*zap.Logger, error) {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

// L returns the process logger (a no-op logger until Set is called)
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Set replaces the process logger
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	current = l
	mu.Unlock()
}
