package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentModel struct {
	ID              uint   `gorm:"primaryKey"`
	SID             string `gorm:"column:sid;uniqueIndex;size:32;not null"`
	ProviderOrderID string `gorm:"uniqueIndex;size:64;not null"`
	UserID          *uint  `gorm:"index"`
	Amount          int64  `gorm:"not null"`
	Currency        string `gorm:"size:10;not null;default:'UAH'"`
	Status          string `gorm:"size:20;not null;index"`
	Recurring       bool   `gorm:"not null;default:false"`
	Purpose         string `gorm:"size:20;not null"`
	TargetType      string `gorm:"size:20;not null;default:''"`
	TargetID        uint
	DonationDate    time.Time `gorm:"not null;index"`
	Anonymous       bool      `gorm:"not null;default:false"`
	Comment         string    `gorm:"type:text"`
	FailureReason   *string   `gorm:"size:255"`
	Metadata        datatypes.JSON
	Version         int `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (PaymentModel) TableName() string {
	return "payments"
}
