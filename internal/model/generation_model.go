package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GenerationSettings struct {
	Tone         string `json:"tone"`
	Emotion      string `json:"emotion"`
	Language     string `json:"language"`
	TargetRegion string `json:"target_region"`
	CreatorNotes string `json:"creator_notes"`
}

type Generation struct {
	Id               uuid.UUID                              `gorm:"type:uuid;primaryKey"`
	AccountId        uuid.UUID                              `gorm:"type:uuid;not null;index"`
	ProjectRef       *string                                `gorm:"type:varchar(255)"`
	ToolName         string                                 `gorm:"type:varchar(50);not null;index:idx_generations_cache_lookup,priority:2"`
	InputHash        string                                 `gorm:"type:varchar(64);not null;index:idx_generations_cache_lookup,priority:1"`
	Model            string                                 `gorm:"type:varchar(100);not null;default:''"`
	SourceContent    string                                 `gorm:"type:text;not null"`
	Settings         datatypes.JSONType[GenerationSettings] `gorm:"type:jsonb"`
	Status           string                                 `gorm:"type:varchar(20);not null;default:'pending';index:idx_generations_cache_lookup,priority:3"`
	Result           string                                 `gorm:"type:text;not null;default:''"`
	PromptTokens     int                                    `gorm:"not null;default:0"`
	CompletionTokens int                                    `gorm:"not null;default:0"`
	CreditsCharged   int                                    `gorm:"not null;default:0"`
	DurationMs       int64                                  `gorm:"not null;default:0"`
	ErrorMessage     *string                                `gorm:"type:text"`
	UserRating       *int                                   `gorm:"check:chk_generations_rating_range,user_rating IS NULL OR (user_rating BETWEEN 1 AND 5)"`
	UserFeedback     *string                                `gorm:"type:text"`
	CreatedAt        time.Time                              `gorm:"autoCreateTime;index"`
	UpdatedAt        time.Time                              `gorm:"autoUpdateTime"`
	CompletedAt      *time.Time
}

func (Generation) TableName() string {
	return "generations"
}

func (g *Generation) BeforeCreate(tx *gorm.DB) error {
	if g.Id == uuid.Nil {
		g.Id = uuid.New()
	}
	return nil
}
