package controller

import (
	"ai-studio-be/internal/constant"
	"ai-studio-be/internal/dto"
	"ai-studio-be/internal/pkg/serverutils"
	"ai-studio-be/internal/service"
	"ai-studio-be/pkg/cost"

	"github.com/gofiber/fiber/v2"
)

type ICostController interface {
	RegisterRoutes(r fiber.Router)
	Estimate(ctx *fiber.Ctx) error
	EstimateBulk(ctx *fiber.Ctx) error
}

type costController struct {
	audit service.IAuditService
}

func NewCostController(audit service.IAuditService) ICostController {
	return &costController{audit: audit}
}

func (c *costController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/cost")
	h.Post("/estimate", c.Estimate)
	h.Post("/estimate-bulk", c.EstimateBulk)
}

func (c *costController) Estimate(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CostEstimateRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	calc, err := cost.Estimate(cost.GenerationType(req.Type), req.Params())
	c.audit.Log(ctx.UserContext(), auditEntry(ctx, userId, constant.ActionEstimateCost, service.AuditInput(req), outcomeStatus(err)))
	if err != nil {
		return &dto.ValidationError{Field: "type", Message: err.Error()}
	}

	return ctx.JSON(serverutils.SuccessResponse("Success estimate cost", dto.CostEstimateResponse{
		Calculation:   calc,
		FormattedCost: cost.Format(calc.EstimatedCost),
	}))
}

func (c *costController) EstimateBulk(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.BulkCostEstimateRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	items := make([]cost.BulkItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, cost.BulkItem{Type: cost.GenerationType(item.Type), Params: item.Params()})
	}

	bulk, err := cost.EstimateBulk(items)
	c.audit.Log(ctx.UserContext(), auditEntry(ctx, userId, constant.ActionEstimateCost, service.AuditInput(req), outcomeStatus(err)))
	if err != nil {
		return &dto.ValidationError{Field: "items", Message: err.Error()}
	}

	return ctx.JSON(serverutils.SuccessResponse("Success estimate cost", dto.BulkCostEstimateResponse{
		BulkCalculation: bulk,
		FormattedTotal:  cost.Format(bulk.TotalCost),
	}))
}
