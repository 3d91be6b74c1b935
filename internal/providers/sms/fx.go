package sms

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/halopax/unlockd/internal/config"
)

var Module = fx.Module("providers.sms",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) Provider {
	if cfg.SMSProviderURL == "" {
		return NoOpProvider{}
	}
	return NewWebex(WebexConfig{
		Endpoint: cfg.SMSProviderURL,
		Timeout:  cfg.SMSTimeout,
	}, log)
}
