package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TopUpOrder struct {
	Id            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AccountId     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Credits       int        `gorm:"not null"`
	GrossAmount   int64      `gorm:"not null"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending'"`
	SnapToken     string     `gorm:"type:varchar(255);not null;default:''"`
	TransactionId *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime"`
	SettledAt     *time.Time
}

func (TopUpOrder) TableName() string {
	return "topup_orders"
}

func (o *TopUpOrder) BeforeCreate(tx *gorm.DB) error {
	if o.Id == uuid.Nil {
		o.Id = uuid.New()
	}
	return nil
}
