package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ToolConfig struct {
	Id            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ToolName      string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	Label         string     `gorm:"type:varchar(100);not null"`
	CreditCost    int        `gorm:"not null;check:chk_tool_configs_cost_positive,credit_cost > 0"`
	HourlyLimit   int        `gorm:"not null;default:0"`
	DailyLimit    int        `gorm:"not null;default:0"`
	IsEnabled     bool       `gorm:"not null"`
	ModelOverride *string    `gorm:"type:varchar(100)"`
	Instruction   string     `gorm:"type:text;not null;default:''"`
	DisplayOrder  int        `gorm:"not null;default:0"`
	UpdatedBy     *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime"`
}

func (ToolConfig) TableName() string {
	return "tool_configs"
}

func (t *ToolConfig) BeforeCreate(tx *gorm.DB) error {
	if t.Id == uuid.Nil {
		t.Id = uuid.New()
	}
	return nil
}
