package contract

import (
	"context"
	"time"

	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/repository/specification"

	"github.com/google/uuid"
)

type BillingRepository interface {
	CreateTopUp(ctx context.Context, order *entity.TopUpOrder) error
	FindTopUp(ctx context.Context, specs ...specification.Specification) (*entity.TopUpOrder, error)
	FindAllTopUps(ctx context.Context, specs ...specification.Specification) ([]*entity.TopUpOrder, error)
	UpdateSnapToken(ctx context.Context, id uuid.UUID, token string) error
	// SettleTopUp moves a pending order to status. It reports false when the
	// order was already settled.
	SettleTopUp(ctx context.Context, id uuid.UUID, status entity.TopUpStatus, transactionId *uuid.UUID, at time.Time) (bool, error)

	IncrementUsage(ctx context.Context, accountId uuid.UUID, statDate string, delta entity.UsageStat) error
	FindUsage(ctx context.Context, specs ...specification.Specification) ([]*entity.UsageStat, error)
}
