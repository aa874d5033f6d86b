package implementation

import (
	"context"
	"errors"

	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/mapper"
	"ai-contentgen-be/internal/model"
	"ai-contentgen-be/internal/repository/contract"
	"ai-contentgen-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GenerationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GenerationMapper
}

func NewGenerationRepository(db *gorm.DB) contract.GenerationRepository {
	return &GenerationRepositoryImpl{
		db:     db,
		mapper: mapper.NewGenerationMapper(),
	}
}

func (r *GenerationRepositoryImpl) Create(ctx context.Context, gen *entity.Generation) error {
	m := r.mapper.ToModel(gen)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*gen = *r.mapper.ToEntity(m)
	return nil
}

func (r *GenerationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Generation, error) {
	var m model.Generation
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *GenerationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Generation, error) {
	var models []*model.Generation
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *GenerationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Generation{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GenerationRepositoryImpl) Transition(ctx context.Context, id uuid.UUID, from []entity.GenerationStatus, next entity.GenerationStatus, fields map[string]interface{}) (bool, error) {
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}
	updates := map[string]interface{}{"status": string(next)}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).Model(&model.Generation{}).
		Where("id = ? AND status IN ?", id, allowed).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GenerationRepositoryImpl) UpdateFeedback(ctx context.Context, id uuid.UUID, rating int, feedback *string) error {
	return r.db.WithContext(ctx).Model(&model.Generation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"user_rating":   rating,
			"user_feedback": feedback,
		}).Error
}

func (r *GenerationRepositoryImpl) Stats(ctx context.Context, specs ...specification.Specification) (*entity.GenerationStats, error) {
	var row struct {
		Total     int64
		Completed int64
		Failed    int64
		Pending   int64
		Credits   int64
	}
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Generation{}), specs...)
	err := query.Select(`
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) AS failed,
			COALESCE(SUM(CASE WHEN status IN ('pending', 'processing') THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(credits_charged), 0) AS credits`).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &entity.GenerationStats{
		Total:            row.Total,
		Completed:        row.Completed,
		Failed:           row.Failed,
		Pending:          row.Pending,
		TotalCreditsUsed: row.Credits,
	}, nil
}
