package migrations

import (
	"github.com/pawhaven/pawhaven/internal/infrastructure/persistence/models"
)

// AllModels lists every gorm model the automigrate strategy manages.
// Keep in sync with the SQL scripts under infrastructure/migration/scripts.
func AllModels() []interface{} {
	return []interface{}{
		&models.PaymentModel{},
		&models.SubscriptionModel{},
		&models.GuardianshipModel{},
	}
}
