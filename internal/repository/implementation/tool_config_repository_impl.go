package implementation

import (
	"context"
	"errors"

	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/mapper"
	"ai-contentgen-be/internal/model"
	"ai-contentgen-be/internal/repository/contract"
	"ai-contentgen-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ToolConfigRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ToolConfigMapper
}

func NewToolConfigRepository(db *gorm.DB) contract.ToolConfigRepository {
	return &ToolConfigRepositoryImpl{
		db:     db,
		mapper: mapper.NewToolConfigMapper(),
	}
}

func (r *ToolConfigRepositoryImpl) Create(ctx context.Context, tool *entity.ToolConfig) error {
	m := r.mapper.ToModel(tool)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*tool = *r.mapper.ToEntity(m)
	return nil
}

func (r *ToolConfigRepositoryImpl) Update(ctx context.Context, tool *entity.ToolConfig) error {
	m := r.mapper.ToModel(tool)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*tool = *r.mapper.ToEntity(m)
	return nil
}

func (r *ToolConfigRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ToolConfig, error) {
	var m model.ToolConfig
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ToolConfigRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ToolConfig, error) {
	var models []*model.ToolConfig
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
