package controller

import (
	"ai-studio-be/internal/constant"
	"ai-studio-be/internal/dto"
	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/pkg/serverutils"
	"ai-studio-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUsageController interface {
	RegisterRoutes(r fiber.Router)
	RecordGeneration(ctx *fiber.Ctx) error
	GetUserStats(ctx *fiber.Ctx) error
	GetDashboard(ctx *fiber.Ctx) error
	GetUsageHistory(ctx *fiber.Ctx) error
}

type usageController struct {
	service service.IUsageService
	audit   service.IAuditService
}

func NewUsageController(service service.IUsageService, audit service.IAuditService) IUsageController {
	return &usageController{
		service: service,
		audit:   audit,
	}
}

func (c *usageController) RegisterRoutes(r fiber.Router) {
	r.Post("/record-generation", c.RecordGeneration)
	r.Get("/user-stats", c.GetUserStats)
	r.Get("/dashboard", c.GetDashboard)
	r.Get("/usage-history", c.GetUsageHistory)
}

func (c *usageController) RecordGeneration(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.RecordGenerationRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	generation, err := c.service.Record(ctx.UserContext(), dto.RecordGenerationParams{
		UserId:     userId,
		Type:       entity.GenerationType(req.Type),
		Prompt:     req.Prompt,
		Status:     entity.GenerationStatus(req.Status),
		OutputURI:  req.OutputURI,
		Error:      req.Error,
		Cost:       req.Cost,
		DurationMs: req.DurationMs,
	})
	c.audit.Log(ctx.UserContext(), auditEntry(ctx, userId, constant.ActionRecordGeneration, service.AuditInput(req), outcomeStatus(err)))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Generation recorded", dto.NewGenerationResponse(generation)))
}

func (c *usageController) GetUserStats(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	limit := ctx.QueryInt("limit", constant.DefaultGenerationsLimit)

	generations, err := c.service.GetUserGenerations(ctx.UserContext(), userId, limit)
	if err != nil {
		c.audit.Log(ctx.UserContext(), auditEntry(ctx, userId, constant.ActionGetUserStats, "{}", constant.AuditStatusFailed))
		return err
	}
	usage, err := c.service.GetUserUsageStats(ctx.UserContext(), userId)
	c.audit.Log(ctx.UserContext(), auditEntry(ctx, userId, constant.ActionGetUserStats, "{}", outcomeStatus(err)))
	if err != nil {
		return err
	}

	res := dto.UserStatsResponse{
		Generations: make([]dto.GenerationResponse, 0, len(generations)),
		UsageStats:  make([]dto.UsageStatResponse, 0, len(usage)),
	}
	for _, g := range generations {
		item := dto.NewGenerationResponse(g)
		item.Prompt = truncate(item.Prompt, constant.PromptPreviewLength)
		res.Generations = append(res.Generations, item)
	}
	for _, u := range usage {
		res.UsageStats = append(res.UsageStats, dto.NewUsageStatResponse(u))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get user stats", res))
}

func (c *usageController) GetDashboard(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	stats, err := c.service.GetDashboardStats(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get dashboard stats", stats))
}

func (c *usageController) GetUsageHistory(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	days := ctx.QueryInt("days", constant.DefaultHistoryDays)
	history, err := c.service.GetUsageHistory(ctx.UserContext(), userId, days)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get usage history", history))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
