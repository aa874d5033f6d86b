package entity

import (
	"time"

	"github.com/google/uuid"
)

// ToolConfig describes one generation tool. Limits of 0 mean unlimited.
type ToolConfig struct {
	Id            uuid.UUID
	ToolName      string
	Label         string
	CreditCost    int
	HourlyLimit   int
	DailyLimit    int
	IsEnabled     bool
	ModelOverride *string
	Instruction   string
	DisplayOrder  int
	UpdatedBy     *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
