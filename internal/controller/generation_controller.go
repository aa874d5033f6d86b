package controller

import (
	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/pkg/serverutils"
	"ai-contentgen-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IGenerationController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	Retry(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Rate(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type generationController struct {
	generationService service.IGenerationService
	auth              fiber.Handler
	identity          fiber.Handler
}

func NewGenerationController(generationService service.IGenerationService, auth, identity fiber.Handler) IGenerationController {
	return &generationController{
		generationService: generationService,
		auth:              auth,
		identity:          identity,
	}
}

func (c *generationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/generations")
	h.Use(c.auth, c.identity)
	h.Post("", c.Generate)
	h.Get("", c.History)
	h.Get("stats", c.Stats)
	h.Get(":id", c.Show)
	h.Post(":id/retry", c.Retry)
	h.Put(":id/rating", c.Rate)
}

func (c *generationController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return writeError(ctx, err)
	}

	res, err := c.generationService.Generate(ctx.UserContext(), identityFrom(ctx), &req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Content generated", res))
}

func (c *generationController) Retry(ctx *fiber.Ctx) error {
	id, ok := parseIdParam(ctx, "id")
	if !ok {
		return badRequest(ctx, "Invalid generation ID")
	}

	res, err := c.generationService.Retry(ctx.UserContext(), identityFrom(ctx), id)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Content generated", res))
}

func (c *generationController) History(ctx *fiber.Ctx) error {
	var req dto.GenerationListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return badRequest(ctx, "Invalid query parameters")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return writeError(ctx, err)
	}
	// staff browse other accounts through the admin routes
	identity := identityFrom(ctx)
	req.AccountId = identity.AccountId.String()

	res, err := c.generationService.History(ctx.UserContext(), identity, &req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *generationController) Show(ctx *fiber.Ctx) error {
	id, ok := parseIdParam(ctx, "id")
	if !ok {
		return badRequest(ctx, "Invalid generation ID")
	}

	res, err := c.generationService.Show(ctx.UserContext(), identityFrom(ctx), id)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *generationController) Rate(ctx *fiber.Ctx) error {
	id, ok := parseIdParam(ctx, "id")
	if !ok {
		return badRequest(ctx, "Invalid generation ID")
	}
	var req dto.RateGenerationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return writeError(ctx, err)
	}

	if err := c.generationService.Rate(ctx.UserContext(), identityFrom(ctx), id, &req); err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Rating saved", nil))
}

func (c *generationController) Stats(ctx *fiber.Ctx) error {
	identity := identityFrom(ctx)
	res, err := c.generationService.Stats(ctx.UserContext(), &identity.AccountId)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}
