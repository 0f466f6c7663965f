package controller

import (
	"errors"

	"ai-studio-be/internal/constant"
	"ai-studio-be/internal/dto"
	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/pkg/serverutils"
	"ai-studio-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IGenerationController interface {
	RegisterRoutes(r fiber.Router)
	GenerateImage(ctx *fiber.Ctx) error
	GenerateVideo(ctx *fiber.Ctx) error
	GenerateMusic(ctx *fiber.Ctx) error
}

type generationController struct {
	service service.IGenerationService
	audit   service.IAuditService
}

func NewGenerationController(service service.IGenerationService, audit service.IAuditService) IGenerationController {
	return &generationController{
		service: service,
		audit:   audit,
	}
}

func (c *generationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/generate")
	h.Post("/image", c.GenerateImage)
	h.Post("/video", c.GenerateVideo)
	h.Post("/music", c.GenerateMusic)
}

func (c *generationController) GenerateImage(ctx *fiber.Ctx) error {
	var req dto.ImageGenerateRequest
	return c.generate(ctx, entity.GenerationTypeImage, &req, func(cmd *dto.GenerateCommand) {
		cmd.Prompt = req.Prompt
		cmd.Width = req.Width
		cmd.Height = req.Height
		cmd.Quality = req.Quality
		cmd.Style = req.Style
	})
}

func (c *generationController) GenerateVideo(ctx *fiber.Ctx) error {
	var req dto.VideoGenerateRequest
	return c.generate(ctx, entity.GenerationTypeVideo, &req, func(cmd *dto.GenerateCommand) {
		cmd.Prompt = req.Prompt
		cmd.Duration = req.Duration
		cmd.AspectRatio = req.AspectRatio
		cmd.ReferenceImage = req.ReferenceImage
	})
}

func (c *generationController) GenerateMusic(ctx *fiber.Ctx) error {
	var req dto.MusicGenerateRequest
	return c.generate(ctx, entity.GenerationTypeMusic, &req, func(cmd *dto.GenerateCommand) {
		cmd.Prompt = req.Prompt
		cmd.Duration = req.Duration
		cmd.BPM = req.BPM
		cmd.Genre = req.Genre
		cmd.Temperature = req.Temperature
	})
}

// generate parses and validates req, then lets fill copy it into the command.
func (c *generationController) generate(ctx *fiber.Ctx, generationType entity.GenerationType, req interface{}, fill func(cmd *dto.GenerateCommand)) error {
	identity, ok := serverutils.CurrentIdentity(ctx)
	if !ok {
		return dto.ErrUnauthorized
	}

	err := parseBody(ctx, req)
	if err == nil {
		err = serverutils.ValidateRequest(req)
	}
	if err != nil {
		var verr *dto.ValidationError
		input := "{}"
		if errors.As(err, &verr) {
			input = service.AuditInput(map[string]string{"field": verr.Field, "message": verr.Message})
		}
		action := constant.GenerationAction(string(generationType), constant.OutcomeValidationError)
		c.audit.Log(ctx.UserContext(), auditEntry(ctx, identity.Id, action, input, constant.AuditStatusDenied))
		return err
	}

	cmd := dto.GenerateCommand{
		User:   identity,
		Type:   generationType,
		IP:     serverutils.ClientIP(ctx),
		System: ctx.Get(fiber.HeaderUserAgent),
	}
	fill(&cmd)

	res, err := c.service.Generate(ctx.UserContext(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Generation completed", res))
}
