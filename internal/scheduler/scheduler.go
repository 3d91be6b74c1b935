package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/halopax/unlockd/internal/clock"
	orderdomain "github.com/halopax/unlockd/internal/order/domain"
	"github.com/halopax/unlockd/internal/tenantctx"
)

// Scheduler periodically re-queries suppliers for orders that were
// submitted but have not reached a terminal status. Completing an order
// this way triggers the same notification path as an explicit status
// check.
type Scheduler struct {
	log    *zap.Logger
	cfg    Config
	clock  clock.Clock
	repo   orderdomain.Repository
	orders orderdomain.Service
}

type Params struct {
	fx.In

	Log    *zap.Logger
	Clock  clock.Clock
	Repo   orderdomain.Repository
	Orders orderdomain.Service
	Config Config `optional:"true"`
}

var ErrInvalidConfig = errors.New("scheduler missing dependencies")

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.Repo == nil || p.Orders == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:    p.Log.Named("scheduler"),
		cfg:    p.Config.withDefaults(),
		clock:  p.Clock,
		repo:   p.Repo,
		orders: p.Orders,
	}, nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("poll run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce checks one batch of stale submitted orders. Individual check
// failures are logged and skipped so one broken supplier cannot stall
// the batch.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-s.cfg.MinAge)
	pending, err := s.repo.ListPendingSubmitted(ctx, cutoff, s.cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	var changed, refunded int
	for _, o := range pending {
		res, err := s.orders.CheckStatus(tenantctx.WithTenantID(ctx, o.TenantID), o.ID)
		if err != nil {
			s.log.Warn("status check failed",
				zap.String("order_id", o.ID.String()),
				zap.String("order_number", o.OrderNumber),
				zap.Error(err),
			)
			continue
		}
		if res.Changed {
			changed++
		}
		if res.Refunded {
			refunded++
		}
	}

	s.log.Info("poll run complete",
		zap.Int("checked", len(pending)),
		zap.Int("changed", changed),
		zap.Int("refunded", refunded),
	)
	return nil
}
