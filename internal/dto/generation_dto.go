package dto

import (
	"time"

	"github.com/google/uuid"
)

type GenerationSettingsDto struct {
	Tone         string `json:"tone,omitempty" validate:"max=50"`
	Emotion      string `json:"emotion,omitempty" validate:"max=50"`
	Language     string `json:"language,omitempty" validate:"max=50"`
	TargetRegion string `json:"target_region,omitempty" validate:"max=100"`
	CreatorNotes string `json:"creator_notes,omitempty" validate:"max=2000"`
}

type GenerateRequest struct {
	ToolName      string                `json:"tool_name" validate:"required,max=50"`
	SourceContent string                `json:"source_content" validate:"required,max=100000"`
	ProjectRef    *string               `json:"project_ref,omitempty" validate:"omitempty,max=100"`
	Settings      GenerationSettingsDto `json:"settings"`
}

type GenerateResponse struct {
	GenerationId   *uuid.UUID `json:"generation_id,omitempty"`
	ToolName       string     `json:"tool_name"`
	Content        string     `json:"content"`
	WasCached      bool       `json:"was_cached"`
	CreditsCharged int        `json:"credits_charged"`
	TokensUsed     int        `json:"tokens_used"`
	DurationMs     int64      `json:"duration_ms"`
	Balance        int        `json:"balance"`
}

type GenerationResponse struct {
	Id               uuid.UUID             `json:"id"`
	AccountId        uuid.UUID             `json:"account_id"`
	ProjectRef       *string               `json:"project_ref,omitempty"`
	ToolName         string                `json:"tool_name"`
	Model            string                `json:"model"`
	Status           string                `json:"status"`
	Settings         GenerationSettingsDto `json:"settings"`
	Result           string                `json:"result,omitempty"`
	PromptTokens     int                   `json:"prompt_tokens"`
	CompletionTokens int                   `json:"completion_tokens"`
	CreditsCharged   int                   `json:"credits_charged"`
	DurationMs       int64                 `json:"duration_ms"`
	ErrorMessage     *string               `json:"error_message,omitempty"`
	UserRating       *int                  `json:"user_rating,omitempty"`
	UserFeedback     *string               `json:"user_feedback,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	CompletedAt      *time.Time            `json:"completed_at,omitempty"`
}

type GenerationListRequest struct {
	Page       int    `query:"page"`
	Limit      int    `query:"limit"`
	ToolName   string `query:"tool_name"`
	Status     string `query:"status" validate:"omitempty,oneof=pending processing completed failed"`
	ProjectRef string `query:"project_ref"`
	AccountId  string `query:"account_id" validate:"omitempty,uuid"`
}

type RateGenerationRequest struct {
	Rating   int     `json:"rating" validate:"required,min=1,max=5"`
	Feedback *string `json:"feedback,omitempty" validate:"omitempty,max=2000"`
}

type GenerationStatsResponse struct {
	Total            int64 `json:"total"`
	Completed        int64 `json:"completed"`
	Failed           int64 `json:"failed"`
	Pending          int64 `json:"pending"`
	TotalCreditsUsed int64 `json:"total_credits_used"`
}

// GenerationUsageMessage is published on the in-process bus after every
// request that returned content.
type GenerationUsageMessage struct {
	AccountId    uuid.UUID  `json:"account_id"`
	GenerationId *uuid.UUID `json:"generation_id,omitempty"`
	ToolName     string     `json:"tool_name"`
	TokensUsed   int        `json:"tokens_used"`
	CacheHit     bool       `json:"cache_hit"`
	OccurredAt   time.Time  `json:"occurred_at"`
}
