package contract

import (
	"context"

	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/repository/specification"

	"github.com/google/uuid"
)

// CreditTransactionRepository is append-only: there is no Update or Delete.
type CreditTransactionRepository interface {
	Create(ctx context.Context, tx *entity.CreditTransaction) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CreditTransaction, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	SumByAccount(ctx context.Context, accountId uuid.UUID) (int64, error)
	Stats(ctx context.Context) (*entity.CreditStats, error)
	FindBalanceDrift(ctx context.Context) ([]*entity.BalanceDrift, error)
}
