package mapper

import (
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/model"

	"gorm.io/datatypes"
)

type AuditMapper struct{}

func NewAuditMapper() *AuditMapper {
	return &AuditMapper{}
}

func (m *AuditMapper) ToEntity(a *model.AuditLog) *entity.AuditLog {
	if a == nil {
		return nil
	}
	return &entity.AuditLog{
		Id:          a.Id,
		ActorId:     a.ActorId,
		Action:      entity.AuditAction(a.Action),
		EntityType:  a.EntityType,
		EntityId:    a.EntityId,
		BeforeState: entity.Snapshot(a.BeforeState),
		AfterState:  entity.Snapshot(a.AfterState),
		Reason:      a.Reason,
		CreatedAt:   a.CreatedAt,
	}
}

func (m *AuditMapper) ToModel(a *entity.AuditLog) *model.AuditLog {
	if a == nil {
		return nil
	}
	return &model.AuditLog{
		Id:          a.Id,
		ActorId:     a.ActorId,
		Action:      string(a.Action),
		EntityType:  a.EntityType,
		EntityId:    a.EntityId,
		BeforeState: datatypes.JSONMap(a.BeforeState),
		AfterState:  datatypes.JSONMap(a.AfterState),
		Reason:      a.Reason,
		CreatedAt:   a.CreatedAt,
	}
}

func (m *AuditMapper) ToEntities(logs []*model.AuditLog) []*entity.AuditLog {
	res := make([]*entity.AuditLog, len(logs))
	for i, a := range logs {
		res[i] = m.ToEntity(a)
	}
	return res
}
