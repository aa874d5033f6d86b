package implementation

import (
	"context"
	"errors"
	"time"

	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/mapper"
	"ai-contentgen-be/internal/model"
	"ai-contentgen-be/internal/repository/contract"
	"ai-contentgen-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BillingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BillingMapper
}

func NewBillingRepository(db *gorm.DB) contract.BillingRepository {
	return &BillingRepositoryImpl{
		db:     db,
		mapper: mapper.NewBillingMapper(),
	}
}

func (r *BillingRepositoryImpl) CreateTopUp(ctx context.Context, order *entity.TopUpOrder) error {
	m := r.mapper.TopUpToModel(order)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*order = *r.mapper.TopUpToEntity(m)
	return nil
}

func (r *BillingRepositoryImpl) FindTopUp(ctx context.Context, specs ...specification.Specification) (*entity.TopUpOrder, error) {
	var m model.TopUpOrder
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TopUpToEntity(&m), nil
}

func (r *BillingRepositoryImpl) FindAllTopUps(ctx context.Context, specs ...specification.Specification) ([]*entity.TopUpOrder, error) {
	var models []*model.TopUpOrder
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]*entity.TopUpOrder, len(models))
	for i, m := range models {
		res[i] = r.mapper.TopUpToEntity(m)
	}
	return res, nil
}

func (r *BillingRepositoryImpl) UpdateSnapToken(ctx context.Context, id uuid.UUID, token string) error {
	return r.db.WithContext(ctx).Model(&model.TopUpOrder{}).
		Where("id = ?", id).
		Update("snap_token", token).Error
}

func (r *BillingRepositoryImpl) SettleTopUp(ctx context.Context, id uuid.UUID, status entity.TopUpStatus, transactionId *uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.TopUpOrder{}).
		Where("id = ? AND status = ?", id, string(entity.TopUpStatusPending)).
		Updates(map[string]interface{}{
			"status":         string(status),
			"transaction_id": transactionId,
			"settled_at":     at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *BillingRepositoryImpl) IncrementUsage(ctx context.Context, accountId uuid.UUID, statDate string, delta entity.UsageStat) error {
	row := &model.UsageStat{
		AccountId:        accountId,
		StatDate:         statDate,
		GenerationsCount: delta.GenerationsCount,
		TokensUsed:       delta.TokensUsed,
		CacheHits:        delta.CacheHits,
		CacheMisses:      delta.CacheMisses,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}, {Name: "stat_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"generations_count": gorm.Expr("usage_stats.generations_count + ?", delta.GenerationsCount),
			"tokens_used":       gorm.Expr("usage_stats.tokens_used + ?", delta.TokensUsed),
			"cache_hits":        gorm.Expr("usage_stats.cache_hits + ?", delta.CacheHits),
			"cache_misses":      gorm.Expr("usage_stats.cache_misses + ?", delta.CacheMisses),
			"updated_at":        time.Now().UTC(),
		}),
	}).Create(row).Error
}

func (r *BillingRepositoryImpl) FindUsage(ctx context.Context, specs ...specification.Specification) ([]*entity.UsageStat, error) {
	var models []*model.UsageStat
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.UsageStatsToEntities(models), nil
}
