package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreditTransaction struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AccountId    uuid.UUID  `gorm:"type:uuid;not null;index:idx_credit_transactions_account_created,priority:1"`
	Amount       int        `gorm:"not null;check:chk_credit_transactions_amount_non_zero,amount <> 0"`
	Type         string     `gorm:"type:varchar(20);not null"`
	GenerationId *uuid.UUID `gorm:"type:uuid;index"`
	ActorId      *uuid.UUID `gorm:"type:uuid"`
	Description  string     `gorm:"type:text;not null;default:''"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index:idx_credit_transactions_account_created,priority:2"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}

func (c *CreditTransaction) BeforeCreate(tx *gorm.DB) error {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	return nil
}
