package attestation

import (
	"go.uber.org/zap"

	"tradeflow/internal/config"
)

func NewModule(cfg *config.Config, logger *zap.Logger) (*Controller, error) {
	codec, err := NewCodec(cfg.Attestation.Secret)
	if err != nil {
		return nil, err
	}
	return NewController(codec, logger.Named("attestation")), nil
}
