package implementation

import (
	"context"

	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/mapper"
	"ai-contentgen-be/internal/model"
	"ai-contentgen-be/internal/repository/contract"
	"ai-contentgen-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreditTransactionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LedgerMapper
}

func NewCreditTransactionRepository(db *gorm.DB) contract.CreditTransactionRepository {
	return &CreditTransactionRepositoryImpl{
		db:     db,
		mapper: mapper.NewLedgerMapper(),
	}
}

func (r *CreditTransactionRepositoryImpl) Create(ctx context.Context, tx *entity.CreditTransaction) error {
	m := r.mapper.ToModel(tx)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*tx = *r.mapper.ToEntity(m)
	return nil
}

func (r *CreditTransactionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CreditTransaction, error) {
	var models []*model.CreditTransaction
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *CreditTransactionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.CreditTransaction{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CreditTransactionRepositoryImpl) SumByAccount(ctx context.Context, accountId uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&model.CreditTransaction{}).
		Where("account_id = ?", accountId).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *CreditTransactionRepositoryImpl) Stats(ctx context.Context) (*entity.CreditStats, error) {
	var row struct {
		Purchased   int64
		Used        int64
		Refunded    int64
		Bonus       int64
		Adjustments int64
		Total       int64
	}
	err := r.db.WithContext(ctx).Model(&model.CreditTransaction{}).
		Select(`
			COALESCE(SUM(CASE WHEN type = 'purchase' THEN amount ELSE 0 END), 0) AS purchased,
			COALESCE(SUM(CASE WHEN type = 'usage' THEN -amount ELSE 0 END), 0) AS used,
			COALESCE(SUM(CASE WHEN type = 'refund' THEN amount ELSE 0 END), 0) AS refunded,
			COALESCE(SUM(CASE WHEN type = 'bonus' THEN amount ELSE 0 END), 0) AS bonus,
			COALESCE(SUM(CASE WHEN type = 'adjustment' THEN amount ELSE 0 END), 0) AS adjustments,
			COUNT(*) AS total`).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &entity.CreditStats{
		TotalPurchased:   row.Purchased,
		TotalUsed:        row.Used,
		TotalRefunded:    row.Refunded,
		TotalBonus:       row.Bonus,
		TotalAdjustments: row.Adjustments,
		TransactionCount: row.Total,
	}, nil
}

func (r *CreditTransactionRepositoryImpl) FindBalanceDrift(ctx context.Context) ([]*entity.BalanceDrift, error) {
	var rows []struct {
		Id        uuid.UUID
		Credits   int
		LedgerSum int64
		TxCount   int64
	}
	err := r.db.WithContext(ctx).Table("accounts AS a").
		Select("a.id, a.credits, COALESCE(SUM(t.amount), 0) AS ledger_sum, COUNT(t.id) AS tx_count").
		Joins("LEFT JOIN credit_transactions AS t ON t.account_id = a.id").
		Group("a.id, a.credits").
		Having("a.credits <> COALESCE(SUM(t.amount), 0)").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	res := make([]*entity.BalanceDrift, len(rows))
	for i, row := range rows {
		res[i] = &entity.BalanceDrift{
			AccountId:    row.Id,
			Cached:       row.Credits,
			LedgerSum:    row.LedgerSum,
			Transactions: row.TxCount,
		}
	}
	return res, nil
}
