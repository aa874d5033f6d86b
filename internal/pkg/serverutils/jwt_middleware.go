package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Locals keys set by the JWT middleware.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
	LocalEmail  = "email"
	LocalBanned = "is_banned"
)

// NewJwtMiddleware verifies HS256 bearer tokens signed with secret.
func NewJwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
		}
		userID, _ := claims["user_id"].(string)
		if userID == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
		}
		role, _ := claims["role"].(string)
		if role == "" {
			role = "user"
		}
		email, _ := claims["email"].(string)
		banned, _ := claims["is_banned"].(bool)

		ctx.Locals(LocalUserID, userID)
		ctx.Locals(LocalRole, role)
		ctx.Locals(LocalEmail, email)
		ctx.Locals(LocalBanned, banned)
		return ctx.Next()
	}
}

// SignToken issues a token carrying the claims the middleware reads.
func SignToken(secret, userID, role, email string, expiresAt int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"email":   email,
		"exp":     expiresAt,
	})
	return token.SignedString([]byte(secret))
}
