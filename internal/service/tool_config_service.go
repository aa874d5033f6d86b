package service

import (
	"context"

	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/pkg/logger"
	"ai-contentgen-be/internal/repository/memory"
	"ai-contentgen-be/internal/repository/unitofwork"
	adminEvents "ai-contentgen-be/pkg/admin/events"
	"ai-contentgen-be/pkg/admin/toolconfig"

	"github.com/google/uuid"
)

type IToolConfigService interface {
	// Get returns ErrUnknownTool when no such tool exists. Disabled tools are
	// returned as-is; callers decide what disabled means for them.
	Get(ctx context.Context, toolName string) (*entity.ToolConfig, error)
	List(ctx context.Context, includeDisabled bool) ([]*entity.ToolConfig, error)
	Update(ctx context.Context, actorId uuid.UUID, toolName string, req dto.UpdateToolConfigRequest) (*entity.ToolConfig, error)
	Seed(ctx context.Context, tools []*entity.ToolConfig) ([]string, error)
}

type toolConfigService struct {
	uowFactory unitofwork.RepositoryFactory
	manager    *toolconfig.Manager
	cache      *memory.ToolConfigCache
	audit      IAuditService
	publisher  adminEvents.Publisher
	logger     logger.ILogger
}

func NewToolConfigService(
	uowFactory unitofwork.RepositoryFactory,
	cache *memory.ToolConfigCache,
	audit IAuditService,
	publisher adminEvents.Publisher,
	logger logger.ILogger,
) IToolConfigService {
	return &toolConfigService{
		uowFactory: uowFactory,
		manager:    toolconfig.NewManager(),
		cache:      cache,
		audit:      audit,
		publisher:  publisher,
		logger:     logger,
	}
}

func (s *toolConfigService) Get(ctx context.Context, toolName string) (*entity.ToolConfig, error) {
	if tool, ok := s.cache.Get(toolName); ok {
		return tool, nil
	}

	tool, err := s.manager.Get(ctx, s.uowFactory.NewUnitOfWork(ctx), toolName)
	if err != nil {
		return nil, err
	}
	if tool == nil {
		return nil, ErrUnknownTool
	}
	s.cache.Set(tool)
	return tool, nil
}

func (s *toolConfigService) List(ctx context.Context, includeDisabled bool) ([]*entity.ToolConfig, error) {
	tools, ok := s.cache.GetAll()
	if !ok {
		var err error
		tools, err = s.manager.List(ctx, s.uowFactory.NewUnitOfWork(ctx))
		if err != nil {
			return nil, err
		}
		s.cache.SetAll(tools)
	}

	if includeDisabled {
		return tools, nil
	}
	enabled := make([]*entity.ToolConfig, 0, len(tools))
	for _, t := range tools {
		if t.IsEnabled {
			enabled = append(enabled, t)
		}
	}
	return enabled, nil
}

// Update applies an admin change. The cache entry is dropped after commit so
// the next generation request reads the new cost and limits.
func (s *toolConfigService) Update(ctx context.Context, actorId uuid.UUID, toolName string, req dto.UpdateToolConfigRequest) (*entity.ToolConfig, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	existing, err := s.manager.Get(ctx, uow, toolName)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrUnknownTool
	}

	change, err := s.manager.Apply(ctx, uow, toolName, req, actorId)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if len(change.Fields) == 0 {
		return change.Tool, nil
	}

	s.cache.Invalidate(toolName)

	if _, err := s.audit.Record(ctx, AuditEntry{
		ActorId:    &actorId,
		Action:     entity.AuditActionUpdate,
		EntityType: entity.AuditEntityToolConfig,
		EntityId:   toolName,
		Before:     change.Before,
		After:      change.After,
		Reason:     req.Reason,
	}); err != nil {
		s.logger.Error(logger.ModuleAdmin, "Tool config updated without audit entry", map[string]interface{}{
			"tool_name": toolName,
			"error":     err.Error(),
		})
	}

	s.logger.Info(logger.ModuleAdmin, "Tool config updated", map[string]interface{}{
		"tool_name": toolName,
		"actor_id":  actorId.String(),
		"fields":    change.Fields,
	})
	s.publisher.PublishToolConfigUpdated(ctx, toolName, actorId, change.Fields)

	return change.Tool, nil
}

func (s *toolConfigService) Seed(ctx context.Context, tools []*entity.ToolConfig) ([]string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	created, err := s.manager.Seed(ctx, uow, tools)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	for _, name := range created {
		s.cache.Invalidate(name)
	}
	return created, nil
}
