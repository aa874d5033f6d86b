package contract

import (
	"context"

	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/repository/specification"

	"github.com/google/uuid"
)

type GenerationRepository interface {
	Create(ctx context.Context, gen *entity.Generation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Generation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Generation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// Transition moves a row to next only if its current status is one of from.
	// It reports whether the row was updated.
	Transition(ctx context.Context, id uuid.UUID, from []entity.GenerationStatus, next entity.GenerationStatus, fields map[string]interface{}) (bool, error)
	UpdateFeedback(ctx context.Context, id uuid.UUID, rating int, feedback *string) error
	Stats(ctx context.Context, specs ...specification.Specification) (*entity.GenerationStats, error)
}
