package models

import "time"

type GuardianshipModel struct {
	ID             uint   `gorm:"primaryKey"`
	SID            string `gorm:"column:sid;uniqueIndex;size:32;not null"`
	UserID         uint   `gorm:"index;not null"`
	AnimalID       uint   `gorm:"index;not null"`
	SubscriptionID *uint  `gorm:"index"`
	StartDate      time.Time  `gorm:"not null"`
	GraceUntil     *time.Time `gorm:"index"`
	Status         string     `gorm:"size:20;not null;index"`
	Version        int        `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (GuardianshipModel) TableName() string {
	return "guardianships"
}
