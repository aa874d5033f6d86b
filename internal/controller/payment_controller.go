package controller

import (
	"errors"

	"ai-contentgen-be/internal/dto"
	"ai-contentgen-be/internal/pkg/serverutils"
	"ai-contentgen-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	HandleNotification(ctx *fiber.Ctx) error
}

type paymentController struct {
	topUpService service.ITopUpService
}

func NewPaymentController(topUpService service.ITopUpService) IPaymentController {
	return &paymentController{topUpService: topUpService}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payment")
	h.Post("/notification", c.HandleNotification) // PUBLIC, signed by Midtrans
}

func (c *paymentController) HandleNotification(ctx *fiber.Ctx) error {
	var req dto.MidtransNotificationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, "Invalid notification payload")
	}

	err := c.topUpService.HandleNotification(ctx.UserContext(), &req)
	// Unknown orders are acknowledged so the gateway stops retrying
	if errors.Is(err, service.ErrOrderNotFound) {
		return ctx.JSON(serverutils.SuccessResponse[any]("Ignored", nil))
	}
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("OK", nil))
}
