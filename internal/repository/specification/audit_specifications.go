package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByEntity struct {
	EntityType string
	EntityID   string
}

func (s ByEntity) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("entity_type = ? AND entity_id = ?", s.EntityType, s.EntityID)
}

type ByAction struct {
	Action string
}

func (s ByAction) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("action = ?", s.Action)
}

type ByActor struct {
	ActorID uuid.UUID
}

func (s ByActor) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("actor_id = ?", s.ActorID)
}

// CreatedBetween bounds created_at; nil ends are open.
type CreatedBetween struct {
	From *time.Time
	To   *time.Time
}

func (s CreatedBetween) Apply(db *gorm.DB) *gorm.DB {
	if s.From != nil {
		db = db.Where("created_at >= ?", *s.From)
	}
	if s.To != nil {
		db = db.Where("created_at < ?", *s.To)
	}
	return db
}
