package entity

import (
	"time"

	"github.com/google/uuid"
)

type GenerationStatus string

const (
	GenerationStatusPending    GenerationStatus = "pending"
	GenerationStatusProcessing GenerationStatus = "processing"
	GenerationStatusCompleted  GenerationStatus = "completed"
	GenerationStatusFailed     GenerationStatus = "failed"
)

var generationTransitions = map[GenerationStatus][]GenerationStatus{
	GenerationStatusPending:    {GenerationStatusProcessing, GenerationStatusFailed},
	GenerationStatusProcessing: {GenerationStatusCompleted, GenerationStatusFailed},
}

// CanTransition reports whether a generation may move from s to next.
// Completed and failed are terminal.
func (s GenerationStatus) CanTransition(next GenerationStatus) bool {
	for _, allowed := range generationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s GenerationStatus) IsTerminal() bool {
	return s == GenerationStatusCompleted || s == GenerationStatusFailed
}

// GenerationSettings is the complete, fixed set of knobs that shape a
// generation. Every field takes part in the fingerprint.
type GenerationSettings struct {
	Tone         string `json:"tone"`
	Emotion      string `json:"emotion"`
	Language     string `json:"language"`
	TargetRegion string `json:"target_region"`
	CreatorNotes string `json:"creator_notes"`
}

type Generation struct {
	Id               uuid.UUID
	AccountId        uuid.UUID
	ProjectRef       *string
	ToolName         string
	InputHash        string
	Model            string
	SourceContent    string
	Settings         GenerationSettings
	Status           GenerationStatus
	Result           string
	PromptTokens     int
	CompletionTokens int
	CreditsCharged   int
	DurationMs       int64
	ErrorMessage     *string
	UserRating       *int
	UserFeedback     *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time
}

func (g *Generation) TotalTokens() int {
	return g.PromptTokens + g.CompletionTokens
}

// GenerationStats aggregates generation rows for dashboards.
type GenerationStats struct {
	Total            int64
	Completed        int64
	Failed           int64
	Pending          int64
	TotalCreditsUsed int64
}
