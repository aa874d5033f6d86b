package mapper

import (
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/model"
)

type ToolConfigMapper struct{}

func NewToolConfigMapper() *ToolConfigMapper {
	return &ToolConfigMapper{}
}

func (m *ToolConfigMapper) ToEntity(t *model.ToolConfig) *entity.ToolConfig {
	if t == nil {
		return nil
	}
	return &entity.ToolConfig{
		Id:            t.Id,
		ToolName:      t.ToolName,
		Label:         t.Label,
		CreditCost:    t.CreditCost,
		HourlyLimit:   t.HourlyLimit,
		DailyLimit:    t.DailyLimit,
		IsEnabled:     t.IsEnabled,
		ModelOverride: t.ModelOverride,
		Instruction:   t.Instruction,
		DisplayOrder:  t.DisplayOrder,
		UpdatedBy:     t.UpdatedBy,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func (m *ToolConfigMapper) ToModel(t *entity.ToolConfig) *model.ToolConfig {
	if t == nil {
		return nil
	}
	return &model.ToolConfig{
		Id:            t.Id,
		ToolName:      t.ToolName,
		Label:         t.Label,
		CreditCost:    t.CreditCost,
		HourlyLimit:   t.HourlyLimit,
		DailyLimit:    t.DailyLimit,
		IsEnabled:     t.IsEnabled,
		ModelOverride: t.ModelOverride,
		Instruction:   t.Instruction,
		DisplayOrder:  t.DisplayOrder,
		UpdatedBy:     t.UpdatedBy,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func (m *ToolConfigMapper) ToEntities(tools []*model.ToolConfig) []*entity.ToolConfig {
	res := make([]*entity.ToolConfig, len(tools))
	for i, t := range tools {
		res[i] = m.ToEntity(t)
	}
	return res
}
