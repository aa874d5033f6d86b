package mapper

import (
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/model"

	"gorm.io/datatypes"
)

type GenerationMapper struct{}

func NewGenerationMapper() *GenerationMapper {
	return &GenerationMapper{}
}

func (m *GenerationMapper) ToEntity(g *model.Generation) *entity.Generation {
	if g == nil {
		return nil
	}
	s := g.Settings.Data()
	return &entity.Generation{
		Id:            g.Id,
		AccountId:     g.AccountId,
		ProjectRef:    g.ProjectRef,
		ToolName:      g.ToolName,
		InputHash:     g.InputHash,
		Model:         g.Model,
		SourceContent: g.SourceContent,
		Settings: entity.GenerationSettings{
			Tone:         s.Tone,
			Emotion:      s.Emotion,
			Language:     s.Language,
			TargetRegion: s.TargetRegion,
			CreatorNotes: s.CreatorNotes,
		},
		Status:           entity.GenerationStatus(g.Status),
		Result:           g.Result,
		PromptTokens:     g.PromptTokens,
		CompletionTokens: g.CompletionTokens,
		CreditsCharged:   g.CreditsCharged,
		DurationMs:       g.DurationMs,
		ErrorMessage:     g.ErrorMessage,
		UserRating:       g.UserRating,
		UserFeedback:     g.UserFeedback,
		CreatedAt:        g.CreatedAt,
		UpdatedAt:        g.UpdatedAt,
		CompletedAt:      g.CompletedAt,
	}
}

func (m *GenerationMapper) ToModel(g *entity.Generation) *model.Generation {
	if g == nil {
		return nil
	}
	return &model.Generation{
		Id:            g.Id,
		AccountId:     g.AccountId,
		ProjectRef:    g.ProjectRef,
		ToolName:      g.ToolName,
		InputHash:     g.InputHash,
		Model:         g.Model,
		SourceContent: g.SourceContent,
		Settings: datatypes.NewJSONType(model.GenerationSettings{
			Tone:         g.Settings.Tone,
			Emotion:      g.Settings.Emotion,
			Language:     g.Settings.Language,
			TargetRegion: g.Settings.TargetRegion,
			CreatorNotes: g.Settings.CreatorNotes,
		}),
		Status:           string(g.Status),
		Result:           g.Result,
		PromptTokens:     g.PromptTokens,
		CompletionTokens: g.CompletionTokens,
		CreditsCharged:   g.CreditsCharged,
		DurationMs:       g.DurationMs,
		ErrorMessage:     g.ErrorMessage,
		UserRating:       g.UserRating,
		UserFeedback:     g.UserFeedback,
		CreatedAt:        g.CreatedAt,
		UpdatedAt:        g.UpdatedAt,
		CompletedAt:      g.CompletedAt,
	}
}

func (m *GenerationMapper) ToEntities(gens []*model.Generation) []*entity.Generation {
	res := make([]*entity.Generation, len(gens))
	for i, g := range gens {
		res[i] = m.ToEntity(g)
	}
	return res
}
