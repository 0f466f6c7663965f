package controller

import (
	"ai-studio-be/internal/constant"
	"ai-studio-be/internal/dto"
	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/pkg/serverutils"
	"ai-studio-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	ApplyTier(ctx *fiber.Ctx) error
}

type adminController struct {
	account service.IAccountService
	audit   service.IAuditService
}

func NewAdminController(account service.IAccountService, audit service.IAuditService) IAdminController {
	return &adminController{
		account: account,
		audit:   audit,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin", serverutils.RequireRole(entity.UserRoleAdmin))
	h.Put("/users/:id/tier", c.ApplyTier)
}

func (c *adminController) ApplyTier(ctx *fiber.Ctx) error {
	adminId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	userId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return &dto.ValidationError{Field: "id", Message: "must be a uuid"}
	}

	var req dto.ApplyTierRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	quotas, err := c.account.ApplyTier(ctx.UserContext(), userId, req.Tier)
	input := service.AuditInput(map[string]string{"user_id": userId.String(), "tier": req.Tier})
	c.audit.Log(ctx.UserContext(), auditEntry(ctx, adminId, constant.ActionApplyTier, input, outcomeStatus(err)))
	if err != nil {
		return err
	}

	res := make([]dto.QuotaResponse, 0, len(quotas))
	for _, q := range quotas {
		res = append(res, dto.NewQuotaResponse(q))
	}
	return ctx.JSON(serverutils.SuccessResponse("Tier applied", res))
}
