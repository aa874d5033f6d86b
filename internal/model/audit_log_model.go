package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditLog struct {
	Id          uuid.UUID         `gorm:"type:uuid;primaryKey"`
	ActorId     *uuid.UUID        `gorm:"type:uuid;index"`
	Action      string            `gorm:"type:varchar(50);not null;index"`
	EntityType  string            `gorm:"type:varchar(50);not null;index:idx_audit_logs_entity,priority:1"`
	EntityId    string            `gorm:"type:varchar(64);not null;index:idx_audit_logs_entity,priority:2"`
	BeforeState datatypes.JSONMap `gorm:"type:jsonb"`
	AfterState  datatypes.JSONMap `gorm:"type:jsonb"`
	Reason      string            `gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time         `gorm:"autoCreateTime;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.Id == uuid.Nil {
		a.Id = uuid.New()
	}
	return nil
}
