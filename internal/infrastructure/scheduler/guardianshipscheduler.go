package scheduler

import (
	"context"
	"sync"
	"time"

	guardianshipUsecases "github.com/pawhaven/pawhaven/internal/application/guardianship/usecases"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

// GuardianshipScheduler periodically completes guardianships whose grace
// window has run out.
type GuardianshipScheduler struct {
	autoCompleteUC *guardianshipUsecases.AutoCompleteExpiredUseCase
	logger         logger.Interface
	stopChan       chan struct{}
	stopOnce       sync.Once
	wg             sync.WaitGroup
	interval       time.Duration
}

func NewGuardianshipScheduler(
	autoCompleteUC *guardianshipUsecases.AutoCompleteExpiredUseCase,
	interval time.Duration,
	logger logger.Interface,
) *GuardianshipScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &GuardianshipScheduler{
		autoCompleteUC: autoCompleteUC,
		logger:         logger,
		stopChan:       make(chan struct{}),
		interval:       interval,
	}
}

// Start launches the sweep loop.
func (s *GuardianshipScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting guardianship scheduler", "interval", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runLoop(ctx)
	}()
}

// Stop stops the scheduler gracefully.
func (s *GuardianshipScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
		s.logger.Infow("guardianship scheduler stopped")
	})
}

func (s *GuardianshipScheduler) runLoop(ctx context.Context) {
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

func (s *GuardianshipScheduler) sweep(ctx context.Context) {
	startTime := time.Now()

	completed, err := s.autoCompleteUC.Execute(ctx)
	if err != nil {
		s.logger.Errorw("guardianship sweep failed",
			"error", err,
			"duration", time.Since(startTime))
		return
	}

	if completed > 0 {
		s.logger.Infow("guardianship sweep finished",
			"completed", completed,
			"duration", time.Since(startTime))
	} else {
		s.logger.Debugw("guardianship sweep found nothing to complete",
			"duration", time.Since(startTime))
	}
}
