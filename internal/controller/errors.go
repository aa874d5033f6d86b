package controller

import (
	"errors"
	"math"
	"strconv"

	"ai-contentgen-be/internal/pkg/serverutils"
	"ai-contentgen-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type insufficientCreditsBody struct {
	Required  int `json:"required"`
	Available int `json:"available"`
}

type rateLimitedBody struct {
	Tool              string `json:"tool"`
	Window            string `json:"window"`
	RetryAfterSeconds int    `json:"retry_after_seconds"`
}

// writeError renders service errors. Order matters: a ledger inconsistency is
// checked before anything its message might resemble.
func writeError(ctx *fiber.Ctx, err error) error {
	var insufficient *service.InsufficientCreditsError
	var limited *service.RateLimitedError
	var invalid *serverutils.ValidationError

	switch {
	case errors.Is(err, service.ErrLedgerInconsistency):
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(fiber.StatusInternalServerError, "Generation could not be billed, support has been notified"))

	case errors.As(err, &insufficient):
		code := fiber.StatusPaymentRequired
		return ctx.Status(code).JSON(&serverutils.BaseResponse[insufficientCreditsBody]{
			Success: false,
			Code:    code,
			Message: "Insufficient credits",
			Data:    insufficientCreditsBody{Required: insufficient.Required, Available: insufficient.Available},
		})
	case errors.Is(err, service.ErrInsufficientCredits):
		return ctx.Status(fiber.StatusPaymentRequired).JSON(serverutils.ErrorResponse(fiber.StatusPaymentRequired, "Insufficient credits"))

	case errors.As(err, &limited):
		seconds := int(math.Ceil(limited.RetryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		ctx.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
		code := fiber.StatusTooManyRequests
		return ctx.Status(code).JSON(&serverutils.BaseResponse[rateLimitedBody]{
			Success: false,
			Code:    code,
			Message: "Too many requests",
			Data:    rateLimitedBody{Tool: limited.Tool, Window: limited.Window, RetryAfterSeconds: seconds},
		})

	case errors.Is(err, service.ErrAccountBanned):
		return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(fiber.StatusForbidden, "Access denied"))
	case errors.Is(err, service.ErrForbidden):
		return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(fiber.StatusForbidden, "Insufficient permissions"))

	case errors.Is(err, service.ErrGenerationUpstream):
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(fiber.StatusBadGateway, service.ErrGenerationUpstream.Error()))
	case errors.Is(err, service.ErrGenerationCancelled):
		// 499: client closed request
		return ctx.Status(499).JSON(serverutils.ErrorResponse(499, "Generation cancelled"))
	case errors.Is(err, service.ErrRiskCheckUnavailable):
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.ErrorResponse(fiber.StatusServiceUnavailable, "Service temporarily unavailable"))

	case errors.As(err, &invalid):
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, invalid.Error()))
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrInvalidTransactionType), errors.Is(err, service.ErrInvalidRating):
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, err.Error()))

	case errors.Is(err, service.ErrAccountNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, "Account not found"))
	case errors.Is(err, service.ErrUnknownTool):
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, "Unknown tool"))
	case errors.Is(err, service.ErrGenerationNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, "Generation not found"))
	case errors.Is(err, service.ErrOrderNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, "Order not found"))

	case errors.Is(err, service.ErrToolDisabled):
		return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(fiber.StatusConflict, "Tool is currently disabled"))
	case errors.Is(err, service.ErrGenerationNotRetryable):
		return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(fiber.StatusConflict, service.ErrGenerationNotRetryable.Error()))

	case errors.Is(err, service.ErrInvalidSignature):
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid signature"))
	}

	// Unknown errors go to the fiber ErrorHandler
	return err
}

func badRequest(ctx *fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, message))
}
