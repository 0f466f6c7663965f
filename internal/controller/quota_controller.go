package controller

import (
	"ai-studio-be/internal/constant"
	"ai-studio-be/internal/dto"
	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/pkg/serverutils"
	"ai-studio-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IQuotaController interface {
	RegisterRoutes(r fiber.Router)
	CheckQuota(ctx *fiber.Ctx) error
	GetQuotas(ctx *fiber.Ctx) error
}

type quotaController struct {
	service service.IQuotaService
	audit   service.IAuditService
}

func NewQuotaController(service service.IQuotaService, audit service.IAuditService) IQuotaController {
	return &quotaController{
		service: service,
		audit:   audit,
	}
}

func (c *quotaController) RegisterRoutes(r fiber.Router) {
	r.Post("/quota-check", c.CheckQuota)
	r.Get("/quotas", c.GetQuotas)
}

// CheckQuota answers 200 when the user may generate. Denials go through the
// error handler so the status code reflects the limit that was hit.
func (c *quotaController) CheckQuota(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.QuotaCheckRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res := c.service.Evaluate(ctx.UserContext(), userId, entity.GenerationType(req.GenerationType))

	status := constant.AuditStatusSuccess
	switch {
	case res.LimitType == constant.LimitTypeError:
		status = constant.AuditStatusFailed
	case !res.CanGenerate:
		status = constant.AuditStatusDenied
	}
	c.audit.Log(ctx.UserContext(), auditEntry(ctx, userId, constant.ActionCheckQuota, service.AuditInput(req), status))

	if !res.CanGenerate {
		return &dto.QuotaExceededError{
			LimitType:        res.LimitType,
			Reason:           res.Reason,
			DailyRemaining:   res.DailyRemaining,
			MonthlyRemaining: res.MonthlyRemaining,
			ResetsAt:         res.ResetsAt,
		}
	}

	return ctx.JSON(serverutils.SuccessResponse("Quota available", dto.NewQuotaCheckResponse(res)))
}

func (c *quotaController) GetQuotas(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	quotas, err := c.service.GetUserQuotas(ctx.UserContext(), userId)
	c.audit.Log(ctx.UserContext(), auditEntry(ctx, userId, constant.ActionGetQuotas, "{}", outcomeStatus(err)))
	if err != nil {
		return err
	}

	res := make([]dto.QuotaResponse, 0, len(quotas))
	for _, q := range quotas {
		res = append(res, dto.NewQuotaResponse(q))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get quotas", res))
}
