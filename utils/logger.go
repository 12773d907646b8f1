package utils

import (
	"log"
	"sync"

	"winqroo/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// GetLogger returns the process-wide zap logger, building it on first use.
// Production gets JSON at info level; everything else gets colored console
// output at debug level.
func GetLogger() *zap.Logger {
	loggerOnce.Do(func() {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if config.IsProduction() {
			cfg = zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		}

		built, err := cfg.Build()
		if err != nil {
			log.Fatalf("failed to build logger: %v", err)
		}
		logger = built
	})
	return logger
}
