package scheduler

import (
	"context"
	"sync"
	"time"

	subscriptionUsecases "github.com/pawhaven/pawhaven/internal/application/subscription/usecases"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

// SubscriptionScheduler periodically cancels subscriptions that stayed
// past_due longer than the retry tolerance. It runs independently of the
// guardianship sweep and can be stopped on its own.
type SubscriptionScheduler struct {
	cancelExpiredUC *subscriptionUsecases.CancelExpiredSubscriptionsUseCase
	logger          logger.Interface
	stopChan        chan struct{}
	stopOnce        sync.Once
	wg              sync.WaitGroup
	interval        time.Duration
}

func NewSubscriptionScheduler(
	cancelExpiredUC *subscriptionUsecases.CancelExpiredSubscriptionsUseCase,
	interval time.Duration,
	logger logger.Interface,
) *SubscriptionScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SubscriptionScheduler{
		cancelExpiredUC: cancelExpiredUC,
		logger:          logger,
		stopChan:        make(chan struct{}),
		interval:        interval,
	}
}

// Start launches the sweep loop.
func (s *SubscriptionScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting subscription scheduler", "interval", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runLoop(ctx)
	}()
}

// Stop stops the scheduler gracefully.
func (s *SubscriptionScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
		s.logger.Infow("subscription scheduler stopped")
	})
}

func (s *SubscriptionScheduler) runLoop(ctx context.Context) {
	// Run immediately so a restart does not delay overdue cancellations.
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *SubscriptionScheduler) sweep(ctx context.Context) {
	startTime := time.Now()

	cancelled, err := s.cancelExpiredUC.Execute(ctx)
	if err != nil {
		s.logger.Errorw("subscription sweep failed",
			"error", err,
			"duration", time.Since(startTime))
		return
	}

	if cancelled > 0 {
		s.logger.Infow("subscription sweep finished",
			"cancelled", cancelled,
			"duration", time.Since(startTime))
	} else {
		s.logger.Debugw("subscription sweep found nothing to cancel",
			"duration", time.Since(startTime))
	}
}
