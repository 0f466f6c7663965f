package serverutils

import (
	"errors"

	"ai-studio-be/internal/constant"
	"ai-studio-be/internal/dto"
	"ai-studio-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the response
// envelope, so controllers can simply `return err`.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, log, err)
	}
}

func WriteError(ctx *fiber.Ctx, log logger.ILogger, err error) error {
	var (
		quotaErr    *dto.QuotaExceededError
		rateErr     *dto.RateLimitedError
		validErr    *dto.ValidationError
		providerErr *dto.ProviderError
		fiberErr    *fiber.Error
	)

	switch {
	case errors.As(err, &quotaErr):
		code := QuotaStatusCode(quotaErr.LimitType)
		return ctx.Status(code).JSON(ErrorResponseWithData(code, quotaErr.Reason, dto.QuotaExceededData{
			LimitType:        quotaErr.LimitType,
			DailyRemaining:   quotaErr.DailyRemaining,
			MonthlyRemaining: quotaErr.MonthlyRemaining,
			ResetsAt:         quotaErr.ResetsAt,
			ShowModalPricing: quotaErr.LimitType == constant.LimitTypeMonthly,
		}))
	case errors.As(err, &rateErr):
		ctx.Set(fiber.HeaderRetryAfter, "60")
		return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse(fiber.StatusTooManyRequests, "Too many requests, please slow down"))
	case errors.As(err, &validErr):
		return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, validErr.Error()))
	case errors.As(err, &providerErr):
		detail := ""
		if providerErr.Err != nil {
			detail = providerErr.Err.Error()
		}
		return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponseWithData(fiber.StatusBadGateway, "Failed to generate content. Please try again.", fiber.Map{
			"generation_id": providerErr.GenerationId,
			"error":         detail,
		}))
	case errors.Is(err, dto.ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(fiber.StatusNotFound, err.Error()))
	case errors.Is(err, dto.ErrUnauthorized):
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, err.Error()))
	case errors.Is(err, dto.ErrForbidden):
		return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(fiber.StatusForbidden, err.Error()))
	case errors.Is(err, dto.ErrConflict):
		return ctx.Status(fiber.StatusConflict).JSON(ErrorResponse(fiber.StatusConflict, err.Error()))
	case errors.As(err, &fiberErr):
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
	}

	if log != nil {
		log.Error(constant.ModuleHTTP, "Unhandled request error", map[string]interface{}{
			"error":  err.Error(),
			"method": ctx.Method(),
			"path":   ctx.Path(),
		})
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
}

func QuotaStatusCode(limitType string) int {
	switch limitType {
	case constant.LimitTypeDaily, constant.LimitTypeMonthly:
		return fiber.StatusTooManyRequests
	case constant.LimitTypeNotConfigured:
		return fiber.StatusForbidden
	default:
		return fiber.StatusServiceUnavailable
	}
}
