package controller

import (
	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/pkg/serverutils"
	"ai-contentgen-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAccountController interface {
	RegisterRoutes(r fiber.Router)
	Bootstrap(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
	Balance(ctx *fiber.Ctx) error
	Transactions(ctx *fiber.Ctx) error
	CreateTopUp(ctx *fiber.Ctx) error
	ListTopUps(ctx *fiber.Ctx) error
}

type accountController struct {
	accountService service.IAccountService
	ledgerService  service.ILedgerService
	topUpService   service.ITopUpService
	auth           fiber.Handler
	identity       fiber.Handler
}

func NewAccountController(
	accountService service.IAccountService,
	ledgerService service.ILedgerService,
	topUpService service.ITopUpService,
	auth, identity fiber.Handler,
) IAccountController {
	return &accountController{
		accountService: accountService,
		ledgerService:  ledgerService,
		topUpService:   topUpService,
		auth:           auth,
		identity:       identity,
	}
}

func (c *accountController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/account")
	h.Use(c.auth)
	// bootstrap runs before the account row exists
	h.Post("bootstrap", c.Bootstrap)

	me := h.Group("", c.identity)
	me.Get("", c.Me)
	me.Get("balance", c.Balance)
	me.Get("transactions", c.Transactions)
	me.Post("topups", c.CreateTopUp)
	me.Get("topups", c.ListTopUps)
}

func (c *accountController) Bootstrap(ctx *fiber.Ctx) error {
	accountId, ok := tokenAccountId(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token subject"))
	}

	var req dto.BootstrapAccountRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return badRequest(ctx, "Invalid request body")
		}
	}
	if req.Email == "" {
		req.Email, _ = ctx.Locals(serverutils.LocalEmail).(string)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return writeError(ctx, err)
	}

	res, err := c.accountService.EnsureAccount(ctx.UserContext(), accountId, &req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Account ready", res))
}

func (c *accountController) Me(ctx *fiber.Ctx) error {
	res, err := c.accountService.Profile(ctx.UserContext(), identityFrom(ctx).AccountId)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *accountController) Balance(ctx *fiber.Ctx) error {
	credits, err := c.ledgerService.GetBalance(ctx.UserContext(), identityFrom(ctx).AccountId)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", dto.BalanceResponse{Credits: credits}))
}

func (c *accountController) Transactions(ctx *fiber.Ctx) error {
	var req dto.PageRequest
	if err := ctx.QueryParser(&req); err != nil {
		return badRequest(ctx, "Invalid query parameters")
	}

	res, err := c.accountService.Transactions(ctx.UserContext(), identityFrom(ctx).AccountId, req.Page, req.Limit)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *accountController) CreateTopUp(ctx *fiber.Ctx) error {
	var req dto.CreateTopUpRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return writeError(ctx, err)
	}

	res, err := c.topUpService.CreateOrder(ctx.UserContext(), identityFrom(ctx).AccountId, &req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Top-up order created", res))
}

func (c *accountController) ListTopUps(ctx *fiber.Ctx) error {
	res, err := c.topUpService.ListOrders(ctx.UserContext(), identityFrom(ctx).AccountId)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}
