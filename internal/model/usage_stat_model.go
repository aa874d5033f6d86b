package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsageStat struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountId        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_usage_stats_account_date,priority:1"`
	StatDate         string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_usage_stats_account_date,priority:2"`
	GenerationsCount int       `gorm:"not null;default:0"`
	TokensUsed       int       `gorm:"not null;default:0"`
	CacheHits        int       `gorm:"not null;default:0"`
	CacheMisses      int       `gorm:"not null;default:0"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (UsageStat) TableName() string {
	return "usage_stats"
}

func (u *UsageStat) BeforeCreate(tx *gorm.DB) error {
	if u.Id == uuid.Nil {
		u.Id = uuid.New()
	}
	return nil
}

// All returns every model owned by the service, in migration order.
func All() []interface{} {
	return []interface{}{
		&Account{},
		&CreditTransaction{},
		&ToolConfig{},
		&Generation{},
		&AuditLog{},
		&TopUpOrder{},
		&UsageStat{},
	}
}
