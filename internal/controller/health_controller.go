package controller

import (
	"context"
	"time"

	"ai-studio-be/internal/constant"
	"ai-studio-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	ping Pinger
}

func NewHealthController(ping Pinger) IHealthController {
	return &healthController{ping: ping}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	if c.ping != nil {
		pingCtx, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
		defer cancel()
		if err := c.ping(pingCtx); err != nil {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.ErrorResponse(fiber.StatusServiceUnavailable, "Database unavailable"))
		}
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", fiber.Map{"service": constant.ServiceName}))
}
