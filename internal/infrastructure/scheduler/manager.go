package scheduler

import (
	"context"

	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

// Manager owns the two maintenance sweeps. They run on independent tickers;
// stopping one never touches the other, StopAll stops both.
type Manager struct {
	subscription *SubscriptionScheduler
	guardianship *GuardianshipScheduler
	logger       logger.Interface
}

func NewManager(
	subscription *SubscriptionScheduler,
	guardianship *GuardianshipScheduler,
	logger logger.Interface,
) *Manager {
	return &Manager{
		subscription: subscription,
		guardianship: guardianship,
		logger:       logger,
	}
}

func (m *Manager) StartAll(ctx context.Context) {
	m.subscription.Start(ctx)
	m.guardianship.Start(ctx)
	m.logger.Infow("all schedulers started")
}

func (m *Manager) StopAll() {
	m.subscription.Stop()
	m.guardianship.Stop()
	m.logger.Infow("all schedulers stopped")
}
