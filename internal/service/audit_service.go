package service

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/pkg/logger"
	"ai-contentgen-be/internal/repository/specification"
	"ai-contentgen-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// AuditEntry is what privileged operations hand to the recorder. Before and
// After hold only the fields the mutation touched.
type AuditEntry struct {
	ActorId    *uuid.UUID
	Action     entity.AuditAction
	EntityType string
	EntityId   string
	Before     entity.Snapshot
	After      entity.Snapshot
	Reason     string
}

type AuditFilter struct {
	ActorId    *uuid.UUID
	Action     string
	EntityType string
	EntityId   string
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

type IAuditService interface {
	Record(ctx context.Context, entry AuditEntry) (uuid.UUID, error)
	List(ctx context.Context, filter AuditFilter) ([]*entity.AuditLog, int64, error)
	EntityTrail(ctx context.Context, entityType, entityId string) ([]*entity.AuditLog, error)
}

type auditService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewAuditService(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger) IAuditService {
	return &auditService{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

// Record appends one entry. It runs outside any caller transaction, so a
// rolled-back ledger change can never take an audit entry with it.
func (s *auditService) Record(ctx context.Context, entry AuditEntry) (uuid.UUID, error) {
	if entry.Action == "" || entry.EntityType == "" || entry.EntityId == "" {
		return uuid.Nil, fmt.Errorf("audit entry requires action, entity type and entity id")
	}
	if entry.Before != nil && entry.After != nil {
		entry.Before, entry.After = diffSnapshots(entry.Before, entry.After)
	}
	log := &entity.AuditLog{
		Id:          uuid.New(),
		ActorId:     entry.ActorId,
		Action:      entry.Action,
		EntityType:  entry.EntityType,
		EntityId:    entry.EntityId,
		BeforeState: entry.Before,
		AfterState:  entry.After,
		Reason:      entry.Reason,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.AuditLogRepository().Create(ctx, log); err != nil {
		s.logger.Error(logger.ModuleAudit, "Failed to record audit entry", map[string]interface{}{
			"action":      string(entry.Action),
			"entity_type": entry.EntityType,
			"entity_id":   entry.EntityId,
			"error":       err.Error(),
		})
		return uuid.Nil, fmt.Errorf("record audit entry: %w", err)
	}
	return log.Id, nil
}

func (s *auditService) List(ctx context.Context, filter AuditFilter) ([]*entity.AuditLog, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	specs := []specification.Specification{specification.CreatedBetween{From: filter.From, To: filter.To}}
	if filter.ActorId != nil {
		specs = append(specs, specification.ByActor{ActorID: *filter.ActorId})
	}
	if filter.Action != "" {
		specs = append(specs, specification.ByAction{Action: filter.Action})
	}
	if filter.EntityType != "" {
		specs = append(specs, specification.Filter("entity_type", filter.EntityType))
	}
	if filter.EntityId != "" {
		specs = append(specs, specification.Filter("entity_id", filter.EntityId))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.AuditLogRepository().Count(ctx, specs...)
	if err != nil {
		return nil, 0, err
	}
	logs, err := uow.AuditLogRepository().FindAll(ctx, append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: filter.Limit, Offset: (filter.Page - 1) * filter.Limit},
	)...)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// EntityTrail returns every entry for one entity, oldest first.
func (s *auditService) EntityTrail(ctx context.Context, entityType, entityId string) ([]*entity.AuditLog, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.AuditLogRepository().FindAll(ctx,
		specification.ByEntity{EntityType: entityType, EntityID: entityId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
}

// diffSnapshots keeps only the keys whose values differ between before and
// after. Keys present on one side only are kept too.
func diffSnapshots(before, after entity.Snapshot) (entity.Snapshot, entity.Snapshot) {
	b := entity.Snapshot{}
	a := entity.Snapshot{}
	for k, av := range after {
		bv, ok := before[k]
		if !ok || !reflect.DeepEqual(bv, av) {
			a[k] = av
			if ok {
				b[k] = bv
			}
		}
	}
	for k, bv := range before {
		if _, ok := after[k]; !ok {
			b[k] = bv
		}
	}
	return b, a
}
