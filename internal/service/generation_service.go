package service

import (
	"context"
	"time"

	"ai-studio-be/internal/constant"
	"ai-studio-be/internal/dto"
	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/pkg/logger"
	"ai-studio-be/pkg/cost"
	"ai-studio-be/pkg/generator"
	"ai-studio-be/pkg/ratelimit"

	"github.com/google/uuid"
)

type IGenerationService interface {
	Generate(ctx context.Context, cmd dto.GenerateCommand) (*dto.GenerateResponse, error)
}

// RateLimit describes the limiter configuration, for error reporting.
type RateLimit struct {
	Limit  int
	Window time.Duration
}

type generationService struct {
	limiter   ratelimit.Limiter
	rateLimit RateLimit
	quota     IQuotaService
	usage     IUsageService
	audit     IAuditService
	providers map[entity.GenerationType]generator.Provider
	logger    logger.ILogger
	clock     Clock
}

func NewGenerationService(
	limiter ratelimit.Limiter,
	rateLimit RateLimit,
	quota IQuotaService,
	usage IUsageService,
	audit IAuditService,
	providers map[entity.GenerationType]generator.Provider,
	logger logger.ILogger,
	clock Clock,
) IGenerationService {
	if clock == nil {
		clock = SystemClock
	}
	return &generationService{
		limiter:   limiter,
		rateLimit: rateLimit,
		quota:     quota,
		usage:     usage,
		audit:     audit,
		providers: providers,
		logger:    logger,
		clock:     clock,
	}
}

func (s *generationService) Generate(ctx context.Context, cmd dto.GenerateCommand) (*dto.GenerateResponse, error) {
	userId := cmd.User.Id

	allowed, err := s.limiter.Allow(ctx, "generate:"+userId.String())
	if err != nil {
		s.logger.Warn(constant.ModuleGeneration, "Rate limiter unavailable, allowing request", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		allowed = true
	}
	if !allowed {
		s.auditOutcome(ctx, cmd, constant.OutcomeRateLimited, constant.AuditStatusDenied, nil)
		return nil, &dto.RateLimitedError{Limit: s.rateLimit.Limit, Window: s.rateLimit.Window}
	}

	estimate, err := cost.Estimate(cost.GenerationType(cmd.Type), estimateParams(cmd))
	if err != nil {
		return nil, &dto.ValidationError{Field: "type", Message: err.Error()}
	}

	check := s.quota.Reserve(ctx, userId, cmd.Type)
	if !check.CanGenerate {
		s.auditOutcome(ctx, cmd, constant.OutcomeQuotaExceeded, constant.AuditStatusDenied, map[string]interface{}{
			"limit_type": check.LimitType,
			"reason":     check.Reason,
		})
		return nil, &dto.QuotaExceededError{
			LimitType:        check.LimitType,
			Reason:           check.Reason,
			DailyRemaining:   check.DailyRemaining,
			MonthlyRemaining: check.MonthlyRemaining,
			ResetsAt:         check.ResetsAt,
		}
	}

	provider, ok := s.providers[cmd.Type]
	if !ok || provider == nil {
		provider = generator.NewUnconfigured(string(cmd.Type))
	}

	start := s.clock()
	result, genErr := provider.Generate(ctx, generationRequest(cmd))
	elapsed := s.clock().Sub(start).Milliseconds()

	// Bookkeeping outlives a client disconnect.
	bg := context.WithoutCancel(ctx)

	if genErr != nil {
		if check.Reservation != nil {
			if err := s.quota.Release(bg, *check.Reservation); err != nil {
				s.logger.Error(constant.ModuleGeneration, "Failed to release quota reservation", map[string]interface{}{
					"user_id": userId.String(),
					"type":    string(cmd.Type),
					"error":   err.Error(),
				})
			}
		}

		errText := genErr.Error()
		generation, err := s.usage.Record(bg, dto.RecordGenerationParams{
			UserId:        userId,
			Type:          cmd.Type,
			Prompt:        cmd.Prompt,
			Status:        entity.GenerationStatusFailed,
			Error:         &errText,
			DurationMs:    &elapsed,
			QuotaReserved: true,
		})
		generationId := ""
		if err != nil {
			s.logger.Error(constant.ModuleGeneration, "Failed to record failed generation", map[string]interface{}{
				"user_id": userId.String(),
				"error":   err.Error(),
			})
		} else {
			generationId = generation.Id.String()
		}

		s.logger.Warn(constant.ModuleGeneration, "Provider call failed", map[string]interface{}{
			"user_id":  userId.String(),
			"provider": provider.Name(),
			"error":    errText,
		})
		s.auditOutcome(bg, cmd, constant.OutcomeFailed, constant.AuditStatusFailed, map[string]interface{}{
			"provider": provider.Name(),
			"error":    errText,
		})
		return nil, &dto.ProviderError{Provider: provider.Name(), GenerationId: generationId, Err: genErr}
	}

	estimated := estimate.EstimatedCost
	generationId := uuid.Nil
	generation, err := s.usage.Record(bg, dto.RecordGenerationParams{
		UserId:        userId,
		Type:          cmd.Type,
		Prompt:        cmd.Prompt,
		Status:        entity.GenerationStatusSuccess,
		OutputURI:     &result.OutputURI,
		Cost:          &estimated,
		CostBreakdown: breakdownMap(estimate.Breakdown),
		DurationMs:    &elapsed,
		QuotaReserved: true,
	})
	if err != nil {
		// The user already has the output and the quota is already taken.
		s.logger.Error(constant.ModuleGeneration, "Failed to record successful generation", map[string]interface{}{
			"user_id": userId.String(),
			"type":    string(cmd.Type),
			"error":   err.Error(),
		})
	} else {
		generationId = generation.Id
	}

	s.auditOutcome(bg, cmd, constant.OutcomeSuccess, constant.AuditStatusSuccess, map[string]interface{}{
		"generation_id": generationId.String(),
		"cost":          estimated,
	})

	return &dto.GenerateResponse{
		GenerationId:     generationId,
		Type:             string(cmd.Type),
		OutputURI:        result.OutputURI,
		MimeType:         result.MimeType,
		Cost:             estimated,
		FormattedCost:    cost.Format(estimated),
		DurationMs:       elapsed,
		DailyRemaining:   check.DailyRemaining,
		MonthlyRemaining: check.MonthlyRemaining,
	}, nil
}

// auditOutcome writes the audit entry for one generation outcome.
func (s *generationService) auditOutcome(ctx context.Context, cmd dto.GenerateCommand, outcome, status string, extra map[string]interface{}) {
	input := map[string]interface{}{
		"type":   string(cmd.Type),
		"prompt": cmd.Prompt,
	}
	for k, v := range extra {
		input[k] = v
	}

	userId := cmd.User.Id
	s.audit.Log(ctx, dto.AuditEntry{
		UserId: &userId,
		Action: constant.GenerationAction(string(cmd.Type), outcome),
		Input:  AuditInput(input),
		Status: status,
		IP:     cmd.IP,
		System: cmd.System,
	})
}

func estimateParams(cmd dto.GenerateCommand) cost.Params {
	return cost.Params{
		Prompt:            cmd.Prompt,
		Quality:           cmd.Quality,
		Width:             cmd.Width,
		Height:            cmd.Height,
		Duration:          cmd.Duration,
		AspectRatio:       cmd.AspectRatio,
		HasReferenceImage: cmd.ReferenceImage != "",
		Temperature:       cmd.Temperature,
		BPM:               cmd.BPM,
	}
}

func generationRequest(cmd dto.GenerateCommand) generator.Request {
	return generator.Request{
		Prompt:         cmd.Prompt,
		Width:          cmd.Width,
		Height:         cmd.Height,
		Quality:        cmd.Quality,
		Style:          cmd.Style,
		Duration:       cmd.Duration,
		AspectRatio:    cmd.AspectRatio,
		ReferenceImage: cmd.ReferenceImage,
		BPM:            cmd.BPM,
		Genre:          cmd.Genre,
		Temperature:    cmd.Temperature,
	}
}

func breakdownMap(b cost.Breakdown) map[string]interface{} {
	multipliers := make(map[string]interface{}, len(b.Multipliers))
	for k, v := range b.Multipliers {
		multipliers[k] = v
	}
	out := map[string]interface{}{
		"base_cost":   b.BaseCost,
		"multipliers": multipliers,
	}
	if b.Duration > 0 {
		out["duration"] = b.Duration
	}
	return out
}
