// Package jobs runs the scheduled background tasks.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"goldrefinery/m/internal/metrics"
	"goldrefinery/m/internal/store"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type Scheduler struct {
	db        *sqlx.DB
	metrics   *metrics.Metrics
	log       *zap.Logger
	threshold int64
	sched     *cron.Cron
}

func New(db *sqlx.DB, m *metrics.Metrics, log *zap.Logger, threshold int64, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		db:        db,
		metrics:   m,
		log:       log,
		threshold: threshold,
		sched:     cron.New(cron.WithLocation(loc), cron.WithParser(cronParser)),
	}
}

// Start registers the low-stock sweep on the cron schedule and starts the scheduler.
func (s *Scheduler) Start(schedule string) error {
	_, err := s.sched.AddFunc(schedule, func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("low stock sweep panic", zap.Any("panic", r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.SweepLowStock(ctx); err != nil {
			s.log.Error("low stock sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule low stock sweep %q: %w", schedule, err)
	}
	s.sched.Start()
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.sched.Stop().Done()
}

// SweepLowStock logs every active product at or below the threshold and
// updates the per-tenant gauge. It returns the count per company.
func (s *Scheduler) SweepLowStock(ctx context.Context) (map[int64]int, error) {
	products, err := store.LowStockProducts(ctx, s.db, s.threshold)
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int)
	for _, p := range products {
		counts[p.CompanyID]++
		s.log.Warn("low stock",
			zap.Int64("company_id", p.CompanyID),
			zap.Int64("product_id", p.ID),
			zap.String("sku", p.SKU),
			zap.Int64("stock", p.Stock))
	}
	if s.metrics != nil {
		s.metrics.SetLowStock(counts)
	}
	return counts, nil
}
