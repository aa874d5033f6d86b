package controller

import (
	"context"

	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/pkg/serverutils"
	"ai-contentgen-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	GetDashboardStats(ctx *fiber.Ctx) error

	// Accounts
	GetAllAccounts(ctx *fiber.Ctx) error
	GetAccount(ctx *fiber.Ctx) error
	SetBan(ctx *fiber.Ctx) error
	ChangeRole(ctx *fiber.Ctx) error
	DeleteAccount(ctx *fiber.Ctx) error

	// Credits
	GrantCredits(ctx *fiber.Ctx) error
	DeductCredits(ctx *fiber.Ctx) error
	GetAccountTransactions(ctx *fiber.Ctx) error
	GetCreditStats(ctx *fiber.Ctx) error
	GetBalanceDrift(ctx *fiber.Ctx) error

	// Tools
	GetTools(ctx *fiber.Ctx) error
	UpdateTool(ctx *fiber.Ctx) error

	// Generations & usage
	GetGenerations(ctx *fiber.Ctx) error
	GetGenerationStats(ctx *fiber.Ctx) error
	GetUsage(ctx *fiber.Ctx) error

	// Audit & logs
	GetAuditLogs(ctx *fiber.Ctx) error
	GetEntityTrail(ctx *fiber.Ctx) error
	GetSystemLogs(ctx *fiber.Ctx) error
	GetIncidentLogs(ctx *fiber.Ctx) error
}

type adminController struct {
	adminService      service.IAdminService
	toolConfigService service.IToolConfigService
	generationService service.IGenerationService
	auth              fiber.Handler
	identity          fiber.Handler
}

func NewAdminController(
	adminService service.IAdminService,
	toolConfigService service.IToolConfigService,
	generationService service.IGenerationService,
	auth, identity fiber.Handler,
) IAdminController {
	return &adminController{
		adminService:      adminService,
		toolConfigService: toolConfigService,
		generationService: generationService,
		auth:              auth,
		identity:          identity,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin")
	h.Use(c.auth, c.identity, RequireRole(entity.AccountRoleSupport))

	admin := RequireRole(entity.AccountRoleAdmin)

	h.Get("/dashboard", c.GetDashboardStats)

	h.Get("/accounts", c.GetAllAccounts)
	h.Get("/accounts/:id", c.GetAccount)
	h.Get("/accounts/:id/transactions", c.GetAccountTransactions)
	h.Put("/accounts/:id/ban", admin, c.SetBan)
	h.Put("/accounts/:id/role", admin, c.ChangeRole)
	h.Delete("/accounts/:id", admin, c.DeleteAccount)

	h.Post("/accounts/:id/credits", admin, c.GrantCredits)
	h.Post("/accounts/:id/credits/deduct", admin, c.DeductCredits)
	h.Get("/credits/stats", admin, c.GetCreditStats)
	h.Get("/credits/drift", admin, c.GetBalanceDrift)

	h.Get("/tools", admin, c.GetTools)
	h.Put("/tools/:name", admin, c.UpdateTool)

	h.Get("/generations", c.GetGenerations)
	h.Get("/generations/stats", c.GetGenerationStats)
	h.Get("/usage", c.GetUsage)

	h.Get("/audit", admin, c.GetAuditLogs)
	h.Get("/audit/:entityType/:entityId", admin, c.GetEntityTrail)
	h.Get("/logs", admin, c.GetSystemLogs)
	h.Get("/logs/incidents", admin, c.GetIncidentLogs)
}

func (c *adminController) GetDashboardStats(ctx *fiber.Ctx) error {
	res, err := c.adminService.GetDashboardStats(ctx.UserContext())
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

// ============================================================================
// Accounts
// ============================================================================

func (c *adminController) GetAllAccounts(ctx *fiber.Ctx) error {
	var req dto.AdminAccountListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return badRequest(ctx, "Invalid query parameters")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return writeError(ctx, err)
	}

	res, err := c.adminService.GetAllAccounts(ctx.UserContext(), req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *adminController) GetAccount(ctx *fiber.Ctx) error {
	id, ok := parseIdParam(ctx, "id")
	if !ok {
		return badRequest(ctx, "Invalid account ID")
	}

	res, err := c.adminService.GetAccount(ctx.UserContext(), id)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *adminController) SetBan(ctx *fiber.Ctx) error {
	id, ok := parseIdParam(ctx, "id")
	if !ok {
		return badRequest(ctx, "Invalid account ID")
	}
	var req dto.BanAccountRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return writeError(ctx, err)
	}

	res, err := c.adminService.SetBan(ctx.UserContext(), identityFrom(ctx), id, req)
	if err != nil {
		return writeError(ctx, err)
	}
	message := "Account unbanned"
	if req.Banned {
		message = "Account banned"
	}
	return ctx.JSON(serverutils.SuccessResponse(message, res))
}

func (c *adminController) ChangeRole(ctx *fiber.Ctx) error {
	id, ok := parseIdParam(ctx, "id")
	if !ok {
		return badRequest(ctx, "Invalid account ID")
	}
	var req dto.ChangeRoleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return writeError(ctx, err)
	}

	res, err := c.adminService.ChangeRole(ctx.UserContext(), identityFrom(ctx), id, req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Role updated", res))
}

func (c *adminController) DeleteAccount(ctx *fiber.Ctx) error {
	id, ok := parseIdParam(ctx, "id")
	if !ok {
		return badRequest(ctx, "Invalid account ID")
	}
	var req dto.DeleteAccountRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return writeError(ctx, err)
	}

	if err := c.adminService.DeleteAccount(ctx.UserContext(), identityFrom(ctx), id, req); err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Account deleted", nil))
}

// ============================================================================
// Credits
// ============================================================================

func (c *adminController) GrantCredits(ctx *fiber.Ctx) error {
	return c.adjustCredits(ctx, c.adminService.GrantCredits, "Credits granted")
}

func (c *adminController) DeductCredits(ctx *fiber.Ctx) error {
	return c.adjustCredits(ctx, c.adminService.DeductCredits, "Credits deducted")
}

type creditOp func(ctx context.Context, actor service.Identity, accountId uuid.UUID, req dto.AdminCreditRequest) (*dto.AdminCreditResponse, error)

func (c *adminController) adjustCredits(ctx *fiber.Ctx, op creditOp, message string) error {
	id, ok := parseIdParam(ctx, "id")
	if !ok {
		return badRequest(ctx, "Invalid account ID")
	}
	var req dto.AdminCreditRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return writeError(ctx, err)
	}

	res, err := op(ctx.UserContext(), identityFrom(ctx), id, req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse(message, res))
}

func (c *adminController) GetAccountTransactions(ctx *fiber.Ctx) error {
	id, ok := parseIdParam(ctx, "id")
	if !ok {
		return badRequest(ctx, "Invalid account ID")
	}
	var req dto.PageRequest
	if err := ctx.QueryParser(&req); err != nil {
		return badRequest(ctx, "Invalid query parameters")
	}

	res, err := c.adminService.GetAccountTransactions(ctx.UserContext(), id, req.Page, req.Limit)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *adminController) GetCreditStats(ctx *fiber.Ctx) error {
	res, err := c.adminService.GetCreditStats(ctx.UserContext())
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *adminController) GetBalanceDrift(ctx *fiber.Ctx) error {
	res, err := c.adminService.GetBalanceDrift(ctx.UserContext())
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

// ============================================================================
// Tools
// ============================================================================

func (c *adminController) GetTools(ctx *fiber.Ctx) error {
	tools, err := c.toolConfigService.List(ctx.UserContext(), true)
	if err != nil {
		return writeError(ctx, err)
	}
	res := make([]dto.ToolConfigResponse, 0, len(tools))
	for _, t := range tools {
		res = append(res, toolToResponse(t))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *adminController) UpdateTool(ctx *fiber.Ctx) error {
	var req dto.UpdateToolConfigRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return writeError(ctx, err)
	}

	tool, err := c.toolConfigService.Update(ctx.UserContext(), identityFrom(ctx).AccountId, ctx.Params("name"), req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Tool updated", toolToResponse(tool)))
}

// ============================================================================
// Generations & usage
// ============================================================================

func (c *adminController) GetGenerations(ctx *fiber.Ctx) error {
	var req dto.GenerationListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return badRequest(ctx, "Invalid query parameters")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return writeError(ctx, err)
	}

	res, err := c.generationService.History(ctx.UserContext(), identityFrom(ctx), &req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *adminController) GetGenerationStats(ctx *fiber.Ctx) error {
	var accountId *uuid.UUID
	if raw := ctx.Query("account_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(ctx, "Invalid account ID")
		}
		accountId = &id
	}

	res, err := c.generationService.Stats(ctx.UserContext(), accountId)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *adminController) GetUsage(ctx *fiber.Ctx) error {
	var req dto.UsageListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return badRequest(ctx, "Invalid query parameters")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return writeError(ctx, err)
	}

	res, err := c.adminService.GetUsage(ctx.UserContext(), req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

// ============================================================================
// Audit & logs
// ============================================================================

func (c *adminController) GetAuditLogs(ctx *fiber.Ctx) error {
	var req dto.AuditListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return badRequest(ctx, "Invalid query parameters")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return writeError(ctx, err)
	}

	res, err := c.adminService.GetAuditLogs(ctx.UserContext(), req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *adminController) GetEntityTrail(ctx *fiber.Ctx) error {
	res, err := c.adminService.GetEntityTrail(ctx.UserContext(), ctx.Params("entityType"), ctx.Params("entityId"))
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *adminController) GetSystemLogs(ctx *fiber.Ctx) error {
	var req dto.IncidentLogRequest
	if err := ctx.QueryParser(&req); err != nil {
		return badRequest(ctx, "Invalid query parameters")
	}

	res, err := c.adminService.GetSystemLogs(ctx.UserContext(), req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *adminController) GetIncidentLogs(ctx *fiber.Ctx) error {
	var req dto.IncidentLogRequest
	if err := ctx.QueryParser(&req); err != nil {
		return badRequest(ctx, "Invalid query parameters")
	}

	res, err := c.adminService.GetIncidentLogs(ctx.UserContext(), req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}
