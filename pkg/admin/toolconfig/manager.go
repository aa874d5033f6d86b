package toolconfig

import (
	"context"
	"fmt"
	"strings"

	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/repository/specification"
	"ai-contentgen-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Manager handles tool catalogue operations
type Manager struct{}

// NewManager creates a new tool config manager
func NewManager() *Manager {
	return &Manager{}
}

// List returns every tool in display order
func (m *Manager) List(ctx context.Context, uow unitofwork.UnitOfWork) ([]*entity.ToolConfig, error) {
	return uow.ToolConfigRepository().FindAll(ctx,
		specification.OrderBy{Field: "display_order", Desc: false},
		specification.OrderBy{Field: "tool_name", Desc: false},
	)
}

// Get returns nil when the tool does not exist
func (m *Manager) Get(ctx context.Context, uow unitofwork.UnitOfWork, toolName string) (*entity.ToolConfig, error) {
	return uow.ToolConfigRepository().FindOne(ctx, specification.Filter("tool_name", toolName))
}

// Change is the outcome of a partial update: the saved tool plus the pre- and
// post-images of the fields that actually changed.
type Change struct {
	Tool   *entity.ToolConfig
	Before entity.Snapshot
	After  entity.Snapshot
	Fields []string
}

// Apply updates the named tool with the non-nil fields of req.
func (m *Manager) Apply(ctx context.Context, uow unitofwork.UnitOfWork, toolName string, req dto.UpdateToolConfigRequest, actorId uuid.UUID) (*Change, error) {
	tool, err := m.Get(ctx, uow, toolName)
	if err != nil {
		return nil, err
	}
	if tool == nil {
		return nil, fmt.Errorf("tool '%s' not found", toolName)
	}

	change := &Change{Tool: tool, Before: entity.Snapshot{}, After: entity.Snapshot{}}
	set := func(field string, before, after interface{}) {
		if before == after {
			return
		}
		change.Before[field] = before
		change.After[field] = after
		change.Fields = append(change.Fields, field)
	}

	if req.Label != nil {
		set("label", tool.Label, *req.Label)
		tool.Label = *req.Label
	}
	if req.CreditCost != nil {
		set("credit_cost", tool.CreditCost, *req.CreditCost)
		tool.CreditCost = *req.CreditCost
	}
	if req.HourlyLimit != nil {
		set("hourly_limit", tool.HourlyLimit, *req.HourlyLimit)
		tool.HourlyLimit = *req.HourlyLimit
	}
	if req.DailyLimit != nil {
		set("daily_limit", tool.DailyLimit, *req.DailyLimit)
		tool.DailyLimit = *req.DailyLimit
	}
	if req.IsEnabled != nil {
		set("is_enabled", tool.IsEnabled, *req.IsEnabled)
		tool.IsEnabled = *req.IsEnabled
	}
	if req.ModelOverride != nil {
		override := strings.TrimSpace(*req.ModelOverride)
		set("model_override", deref(tool.ModelOverride), override)
		if override == "" {
			tool.ModelOverride = nil
		} else {
			tool.ModelOverride = &override
		}
	}
	if req.Instruction != nil {
		set("instruction", tool.Instruction, *req.Instruction)
		tool.Instruction = *req.Instruction
	}
	if req.DisplayOrder != nil {
		set("display_order", tool.DisplayOrder, *req.DisplayOrder)
		tool.DisplayOrder = *req.DisplayOrder
	}

	if len(change.Fields) == 0 {
		return change, nil
	}

	tool.UpdatedBy = &actorId
	if err := uow.ToolConfigRepository().Update(ctx, tool); err != nil {
		return nil, err
	}
	return change, nil
}

// Seed inserts tools that do not exist yet and leaves existing rows alone, so
// admin edits survive a re-seed. It returns the names it created.
func (m *Manager) Seed(ctx context.Context, uow unitofwork.UnitOfWork, tools []*entity.ToolConfig) ([]string, error) {
	var created []string
	for _, tool := range tools {
		existing, err := m.Get(ctx, uow, tool.ToolName)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}
		if err := uow.ToolConfigRepository().Create(ctx, tool); err != nil {
			return nil, fmt.Errorf("seed tool %s: %w", tool.ToolName, err)
		}
		created = append(created, tool.ToolName)
	}
	return created, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
