// Package scheduler periodically recomputes every stored projection so that
// stored figures follow the current engine policy.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/iwvelando/rental-projection/internal/projection"
	"github.com/iwvelando/rental-projection/internal/store"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Store is the persistence the refresh job needs.
type Store interface {
	ListInputs(ctx context.Context) ([]store.StoredInput, error)
	UpsertProjection(ctx context.Context, propertyID int64, in projection.Input, out *projection.Output) error
}

// Report summarizes one refresh run.
type Report struct {
	Refreshed int
	Failed    int
}

// Scheduler manages the refresh job.
type Scheduler struct {
	cron   *cron.Cron
	engine *projection.Engine
	store  Store
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

// New registers the refresh job on spec, which accepts standard five field
// cron expressions and descriptors such as @daily.
func New(logger *zap.Logger, spec string, engine *projection.Engine, st Store) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   cron.New(),
		engine: engine,
		store:  st,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	if _, err := s.cron.AddFunc(spec, s.refresh); err != nil {
		cancel()
		return nil, fmt.Errorf("register refresh task %q: %w", spec, err)
	}
	return s, nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("op", "scheduler.Start"))
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped", zap.String("op", "scheduler.Stop"))
}

func (s *Scheduler) refresh() {
	if _, err := s.RunOnce(s.ctx); err != nil {
		s.logger.Error("projection refresh failed",
			zap.String("op", "scheduler.refresh"),
			zap.Error(err),
		)
	}
}

// RunOnce recomputes every stored input and replaces its projection. A
// property that fails to compute is logged and skipped.
func (s *Scheduler) RunOnce(ctx context.Context) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inputs, err := s.store.ListInputs(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list stored inputs: %w", err)
	}

	var report Report
	for _, stored := range inputs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		out, err := s.engine.Compute(stored.Input)
		if err == nil {
			err = s.store.UpsertProjection(ctx, stored.PropertyID, stored.Input, out)
		}
		if err != nil {
			report.Failed++
			s.logger.Warn("failed to refresh projection",
				zap.String("op", "scheduler.RunOnce"),
				zap.Int64("propertyId", stored.PropertyID),
				zap.Error(err),
			)
			continue
		}
		report.Refreshed++
	}

	s.logger.Info("projections refreshed",
		zap.String("op", "scheduler.RunOnce"),
		zap.Int("refreshed", report.Refreshed),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}
