package serverutils

import (
	"context"
	"strings"

	"ai-studio-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	localUserID   = "user_id"
	localIdentity = "identity"
)

// IdentityProvisioner mirrors a verified identity into local storage.
type IdentityProvisioner interface {
	EnsureUser(ctx context.Context, identity entity.Identity) (*entity.User, error)
}

type identityClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JwtMiddleware verifies the bearer token issued by the identity provider and,
// when a provisioner is given, makes sure the user and their quotas exist.
func JwtMiddleware(secret string, provisioner IdentityProvisioner) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}
		tokenStr := authHeader[7:]

		var claims identityClaims
		token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		userId, err := uuid.Parse(claims.Subject)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
		}

		role := entity.UserRoleUser
		if entity.UserRole(claims.Role) == entity.UserRoleAdmin {
			role = entity.UserRoleAdmin
		}
		identity := entity.Identity{
			Id:    userId,
			Email: claims.Email,
			Name:  claims.Name,
			Role:  role,
		}

		if provisioner != nil {
			if _, err := provisioner.EnsureUser(ctx.UserContext(), identity); err != nil {
				return err
			}
		}

		ctx.Locals(localUserID, userId.String())
		ctx.Locals(localIdentity, identity)
		return ctx.Next()
	}
}

func CurrentIdentity(ctx *fiber.Ctx) (entity.Identity, bool) {
	identity, ok := ctx.Locals(localIdentity).(entity.Identity)
	return identity, ok
}

func RequireRole(role entity.UserRole) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		identity, ok := CurrentIdentity(ctx)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing identity"))
		}
		if identity.Role != role {
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(fiber.StatusForbidden, "Forbidden"))
		}
		return ctx.Next()
	}
}

// ClientIP prefers the first X-Forwarded-For hop over the socket address.
func ClientIP(ctx *fiber.Ctx) string {
	if ips := ctx.IPs(); len(ips) > 0 && ips[0] != "" {
		return ips[0]
	}
	return ctx.IP()
}
