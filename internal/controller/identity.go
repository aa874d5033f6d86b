package controller

import (
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/pkg/serverutils"
	"ai-contentgen-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const localIdentity = "identity"

// tokenAccountId reads the subject the JWT middleware stored.
func tokenAccountId(ctx *fiber.Ctx) (uuid.UUID, bool) {
	raw, _ := ctx.Locals(serverutils.LocalUserID).(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// IdentityMiddleware loads the caller's account so role and ban state come
// from the database rather than from a possibly stale token.
func IdentityMiddleware(accounts service.IAccountService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		accountId, ok := tokenAccountId(ctx)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token subject"))
		}
		tokenBanned, _ := ctx.Locals(serverutils.LocalBanned).(bool)

		identity, err := accounts.ResolveIdentity(ctx.UserContext(), accountId, tokenBanned)
		if err != nil {
			return writeError(ctx, err)
		}
		ctx.Locals(localIdentity, identity)
		return ctx.Next()
	}
}

// RequireRole must run after IdentityMiddleware.
func RequireRole(min entity.AccountRole) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		identity, ok := ctx.Locals(localIdentity).(service.Identity)
		if !ok || !identity.Role.AtLeast(min) {
			return ctx.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(fiber.StatusForbidden, "Insufficient permissions"))
		}
		return ctx.Next()
	}
}

func identityFrom(ctx *fiber.Ctx) service.Identity {
	identity, _ := ctx.Locals(localIdentity).(service.Identity)
	return identity
}

func parseIdParam(ctx *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
