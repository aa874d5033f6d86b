package contract

import (
	"context"

	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/repository/specification"
)

type ToolConfigRepository interface {
	Create(ctx context.Context, tool *entity.ToolConfig) error
	Update(ctx context.Context, tool *entity.ToolConfig) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ToolConfig, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ToolConfig, error)
}
