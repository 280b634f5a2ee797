package models

import "time"

type SubscriptionModel struct {
	ID                     uint   `gorm:"primaryKey"`
	SID                    string `gorm:"column:sid;uniqueIndex;size:32;not null"`
	UserID                 uint   `gorm:"index;not null"`
	Provider               string `gorm:"size:20;not null"`
	ProviderSubscriptionID string `gorm:"uniqueIndex;size:64;not null"`
	ScopeType              string `gorm:"size:20;not null;default:'standalone'"`
	GuardianshipID         *uint  `gorm:"index"`
	Amount                 int64  `gorm:"not null"`
	Currency               string `gorm:"size:10;not null;default:'UAH'"`
	Status                 string `gorm:"size:20;not null;index"`
	NextChargeAt           *time.Time `gorm:"index"`
	LastChargeAt           *time.Time
	CancelledAt            *time.Time
	Version                int `gorm:"not null;default:0"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (SubscriptionModel) TableName() string {
	return "subscriptions"
}
