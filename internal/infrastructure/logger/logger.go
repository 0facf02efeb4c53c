package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tradeflow/internal/config"
)

// New builds the service logger. Unknown levels fall back to info; the
// console format is meant for local runs and keeps caller and stack output.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.InitialFields = map[string]interface{}{"service": "tradeflow"}

	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Named("tradeflow"), nil
}
