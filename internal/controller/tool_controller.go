package controller

import (
	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/pkg/serverutils"
	"ai-contentgen-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IToolController interface {
	RegisterRoutes(r fiber.Router)
	ListTools(ctx *fiber.Ctx) error
}

type toolController struct {
	toolConfigService service.IToolConfigService
}

func NewToolController(toolConfigService service.IToolConfigService) IToolController {
	return &toolController{toolConfigService: toolConfigService}
}

func (c *toolController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/tools")
	h.Get("", c.ListTools) // PUBLIC
}

func (c *toolController) ListTools(ctx *fiber.Ctx) error {
	tools, err := c.toolConfigService.List(ctx.UserContext(), false)
	if err != nil {
		return writeError(ctx, err)
	}
	res := make([]dto.PublicToolResponse, 0, len(tools))
	for _, t := range tools {
		res = append(res, dto.PublicToolResponse{
			ToolName:   t.ToolName,
			Label:      t.Label,
			CreditCost: t.CreditCost,
		})
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func toolToResponse(t *entity.ToolConfig) dto.ToolConfigResponse {
	return dto.ToolConfigResponse{
		Id:            t.Id,
		ToolName:      t.ToolName,
		Label:         t.Label,
		CreditCost:    t.CreditCost,
		HourlyLimit:   t.HourlyLimit,
		DailyLimit:    t.DailyLimit,
		IsEnabled:     t.IsEnabled,
		ModelOverride: t.ModelOverride,
		DisplayOrder:  t.DisplayOrder,
		UpdatedBy:     t.UpdatedBy,
		UpdatedAt:     t.UpdatedAt,
	}
}
