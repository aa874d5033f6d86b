package contract

import (
	"context"

	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	Delete(ctx context.Context, id uuid.UUID) error // Soft delete
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Account, error)
	FindOneUnscoped(ctx context.Context, specs ...specification.Specification) (*entity.Account, error) // Includes soft-deleted
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Account, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// Balance mutations. Only the ledger calls these, always inside a transaction.
	// DecrementCredits applies only when the balance covers amount; it reports
	// whether a row was updated.
	DecrementCredits(ctx context.Context, id uuid.UUID, amount int) (bool, error)
	IncrementCredits(ctx context.Context, id uuid.UUID, amount int) (bool, error)

	UpdateBanStatus(ctx context.Context, id uuid.UUID, banned bool, reason *string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role entity.AccountRole) error
}
