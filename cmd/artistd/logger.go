package main

import (
	"fmt"

	"github.com/jackielii/spaview/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(mode config.Mode, level string) (*zap.Logger, error) {
	var loggingConfig zap.Config
	switch mode {
	case config.ModeProduction:
		loggingConfig = zap.NewProductionConfig()
		loggingConfig.DisableCaller = true
	default:
		loggingConfig = zap.NewDevelopmentConfig()
		loggingConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		loggingConfig.Level.SetLevel(lvl.Level())
	}
	return loggingConfig.Build()
}
