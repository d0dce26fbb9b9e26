package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultPlanSweepInterval как часто истёкшие абонементы переводятся в expired
const DefaultPlanSweepInterval = time.Hour

// PlanExpirer переводит в expired абонементы с прошедшим end_date
type PlanExpirer interface {
	ExpireEnded(ctx context.Context) (int64, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	plans    PlanExpirer
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(plans PlanExpirer, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultPlanSweepInterval
	}
	return &Scheduler{
		plans:    plans,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Run выполняет задачи до отмены ctx или вызова Stop
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))
	s.runPlanExpiryTask(ctx)
	return nil
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runPlanExpiryTask периодически закрывает истёкшие абонементы
func (s *Scheduler) runPlanExpiryTask(ctx context.Context) {
	// Первый запуск сразу при старте
	s.expirePlans(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expirePlans(ctx)
		case <-s.stopChan:
			s.logger.Info("Plan expiry task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Plan expiry task cancelled")
			return
		}
	}
}

func (s *Scheduler) expirePlans(ctx context.Context) {
	expired, err := s.plans.ExpireEnded(ctx)
	if err != nil {
		s.logger.Error("Failed to expire plans", zap.Error(err))
		return
	}

	if expired > 0 {
		s.logger.Info("Expired client plans", zap.Int64("count", expired))
	}
}
