package ratelimit

import (
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/halopax/unlockd/internal/config"
)

var Module = fx.Module("rate.limit",
	fx.Provide(New),
)

// New picks the limiter backend from configuration: disabled, redis
// token bucket when an address is configured, or the in-process fixed
// window otherwise.
func New(cfg config.Config, log *zap.Logger) (Limiter, error) {
	rl := cfg.RateLimit

	if !rl.Enabled {
		return Unlimited(), nil
	}

	if rl.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     rl.RedisAddr,
			Password: rl.RedisPassword,
			DB:       rl.RedisDB,
		})

		limiter, err := NewTokenBucket(client, rl.OrderRate, rl.OrderBurst)
		if err != nil {
			return nil, err
		}

		log.Info("rate limiter enabled",
			zap.String("backend", "redis"),
			zap.Float64("rate", rl.OrderRate),
			zap.Int("burst", rl.OrderBurst),
		)
		return limiter, nil
	}

	log.Info("rate limiter enabled",
		zap.String("backend", "memory"),
		zap.Int("max", rl.WindowMax),
		zap.Duration("window", rl.Window),
	)
	return NewFixedWindow(rl.WindowMax, rl.Window), nil
}
