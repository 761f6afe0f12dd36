package booking

import (
	"context"
	"time"

	"cruiseops/models"

	"go.uber.org/zap"
)

// TenantLister enumerates every company and its tenant database.
type TenantLister interface {
	Tenants(ctx context.Context) ([]models.TenantRef, error)
}

// Sweeper cancels expired holds across all tenants on a fixed interval.
type Sweeper struct {
	svc      *Service
	tenants  TenantLister
	interval time.Duration
	log      *zap.Logger
}

func NewSweeper(svc *Service, tenants TenantLister, interval time.Duration, log *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{svc: svc, tenants: tenants, interval: interval, log: log}
}

// Run sweeps until ctx is cancelled.
func (sw *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(sw.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			sw.SweepOnce(ctx)
		}
	}
}

// SweepOnce returns the number of holds cancelled. A failing tenant does not stop the
// others.
func (sw *Sweeper) SweepOnce(ctx context.Context) int {
	refs, err := sw.tenants.Tenants(ctx)
	if err != nil {
		sw.log.Warn("sweep: list tenants", zap.Error(err))
		return 0
	}
	total := 0
	for _, ref := range refs {
		if ctx.Err() != nil {
			break
		}
		n, err := sw.svc.ExpireHolds(ctx, ref.TenantDB, ref.CompanyID)
		total += n
		if err != nil {
			sw.log.Warn("sweep tenant", zap.String("tenant", ref.TenantDB), zap.Error(err))
			continue
		}
		if n > 0 {
			sw.log.Info("expired holds cancelled", zap.String("tenant", ref.TenantDB), zap.Int("count", n))
		}
	}
	return total
}
