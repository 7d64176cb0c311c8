package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ars-claims-service/internal/service"
	"github.com/spec-kit/ars-claims-service/internal/workflow"
)

const capacityLeaseKey = "ars:capacity:sweep:lease"

// CapacityWorker runs the capacity and SLA sweeps on a fixed interval. A
// short Redis lease keeps concurrent replicas from sweeping at the same
// time; the sweeps themselves are idempotent, so a lost lease only costs
// duplicate reads.
type CapacityWorker struct {
	capacity *service.CapacityService
	cache    *redis.Client
	interval time.Duration
	opts     workflow.Options
	logger   *zap.Logger
}

// NewCapacityWorker constructs the worker.
func NewCapacityWorker(capacity *service.CapacityService, cache *redis.Client, interval time.Duration, opts workflow.Options, logger *zap.Logger) *CapacityWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CapacityWorker{
		capacity: capacity,
		cache:    cache,
		interval: interval,
		opts:     opts,
		logger:   logger,
	}
}

// Run blocks until the context is cancelled, sweeping once per interval.
func (w *CapacityWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("capacity worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *CapacityWorker) sweep(ctx context.Context) {
	if !w.acquireLease(ctx) {
		w.logger.Debug("capacity sweep lease held elsewhere")
		return
	}

	if _, err := w.capacity.EvaluateCapacity(ctx); err != nil {
		w.logger.Error("capacity sweep failed", zap.Error(err))
	}
	if _, err := w.capacity.EvaluateSLABreaches(ctx, w.opts); err != nil {
		w.logger.Error("sla sweep failed", zap.Error(err))
	}
}

func (w *CapacityWorker) acquireLease(ctx context.Context) bool {
	if w.cache == nil {
		return true
	}
	ok, err := w.cache.SetNX(ctx, capacityLeaseKey, "1", w.interval/2).Result()
	if err != nil {
		w.logger.Warn("capacity lease check failed", zap.Error(err))
		return true
	}
	return ok
}
