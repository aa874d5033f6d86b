package dto

import (
	"time"

	"github.com/google/uuid"
)

type ToolConfigResponse struct {
	Id            uuid.UUID  `json:"id"`
	ToolName      string     `json:"tool_name"`
	Label         string     `json:"label"`
	CreditCost    int        `json:"credit_cost"`
	HourlyLimit   int        `json:"hourly_limit"`
	DailyLimit    int        `json:"daily_limit"`
	IsEnabled     bool       `json:"is_enabled"`
	ModelOverride *string    `json:"model_override,omitempty"`
	DisplayOrder  int        `json:"display_order"`
	UpdatedBy     *uuid.UUID `json:"updated_by,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// PublicToolResponse is what regular users see in the tool picker.
type PublicToolResponse struct {
	ToolName   string `json:"tool_name"`
	Label      string `json:"label"`
	CreditCost int    `json:"credit_cost"`
}

// UpdateToolConfigRequest is a partial update; nil fields are left untouched.
type UpdateToolConfigRequest struct {
	Label         *string `json:"label,omitempty" validate:"omitempty,min=1,max=100"`
	CreditCost    *int    `json:"credit_cost,omitempty" validate:"omitempty,min=1,max=1000"`
	HourlyLimit   *int    `json:"hourly_limit,omitempty" validate:"omitempty,min=0"`
	DailyLimit    *int    `json:"daily_limit,omitempty" validate:"omitempty,min=0"`
	IsEnabled     *bool   `json:"is_enabled,omitempty"`
	ModelOverride *string `json:"model_override,omitempty" validate:"omitempty,max=100"`
	Instruction   *string `json:"instruction,omitempty"`
	DisplayOrder  *int    `json:"display_order,omitempty"`
	Reason        string  `json:"reason,omitempty" validate:"max=500"`
}
