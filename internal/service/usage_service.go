package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ai-studio-be/internal/constant"
	"ai-studio-be/internal/dto"
	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/pkg/logger"
	"ai-studio-be/internal/repository/contract"
	"ai-studio-be/internal/repository/specification"
	"ai-studio-be/internal/repository/unitofwork"
	"ai-studio-be/pkg/events"

	"github.com/google/uuid"
)

type IUsageService interface {
	// Record appends a generation. SUCCESS also advances the quota counters
	// (unless the quota was reserved up front) and the lifetime usage counter.
	Record(ctx context.Context, params dto.RecordGenerationParams) (*entity.Generation, error)
	GetUserGenerations(ctx context.Context, userId uuid.UUID, limit int) ([]*entity.Generation, error)
	GetUserUsageStats(ctx context.Context, userId uuid.UUID) ([]*entity.UserUsage, error)
	GetDashboardStats(ctx context.Context, userId uuid.UUID) (*dto.DashboardStats, error)
	GetUsageHistory(ctx context.Context, userId uuid.UUID, days int) ([]dto.UsageHistoryEntry, error)
}

type usageService struct {
	uowFactory unitofwork.RepositoryFactory
	events     IEventBus
	logger     logger.ILogger
	clock      Clock
}

func NewUsageService(uowFactory unitofwork.RepositoryFactory, events IEventBus, logger logger.ILogger, clock Clock) IUsageService {
	if clock == nil {
		clock = SystemClock
	}
	return &usageService{
		uowFactory: uowFactory,
		events:     events,
		logger:     logger,
		clock:      clock,
	}
}

func (s *usageService) Record(ctx context.Context, params dto.RecordGenerationParams) (*entity.Generation, error) {
	if !params.Type.Valid() {
		return nil, &dto.ValidationError{Field: "type", Message: fmt.Sprintf("unknown generation type %q", params.Type)}
	}
	if !params.Status.Valid() {
		return nil, &dto.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", params.Status)}
	}

	now := s.clock()
	generation := &entity.Generation{
		UserId:        params.UserId,
		Type:          params.Type,
		Prompt:        params.Prompt,
		Status:        params.Status,
		OutputURI:     params.OutputURI,
		Error:         params.Error,
		Cost:          params.Cost,
		CostBreakdown: params.CostBreakdown,
		DurationMs:    params.DurationMs,
		CreatedAt:     now,
	}
	if params.Status == entity.GenerationStatusFailed {
		zero := 0.0
		generation.Cost = &zero
		generation.CostBreakdown = nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.GenerationRepository().Create(ctx, generation); err != nil {
		return nil, fmt.Errorf("insert generation: %w", err)
	}

	if generation.Status == entity.GenerationStatusSuccess {
		if !params.QuotaReserved {
			if err := uow.QuotaRepository().Increment(ctx, params.UserId, params.Type); err != nil {
				s.underCounted(generation, "quota", err)
			}
		}
		if err := uow.UserUsageRepository().Increment(ctx, params.UserId, params.Type, now); err != nil {
			s.underCounted(generation, "user_usage", err)
		}
	}

	s.events.Emit(ctx, events.GenerationRecorded, map[string]interface{}{
		"generation_id": generation.Id.String(),
		"user_id":       generation.UserId.String(),
		"type":          string(generation.Type),
		"status":        string(generation.Status),
	})
	return generation, nil
}

func (s *usageService) underCounted(g *entity.Generation, counter string, err error) {
	msg := "Failed to increment usage, generation under-counted"
	if errors.Is(err, contract.ErrNotFound) {
		msg = "No counter row for generation, generation under-counted"
	}
	s.logger.Error(constant.ModuleUsage, msg, map[string]interface{}{
		"generation_id": g.Id.String(),
		"user_id":       g.UserId.String(),
		"type":          string(g.Type),
		"counter":       counter,
		"error":         err.Error(),
	})
}

func (s *usageService) GetUserGenerations(ctx context.Context, userId uuid.UUID, limit int) ([]*entity.Generation, error) {
	if limit <= 0 {
		limit = constant.DefaultGenerationsLimit
	}
	limit = min(limit, constant.MaxGenerationsLimit)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.GenerationRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.NewestFirst{},
		specification.Pagination{Limit: limit},
	)
}

func (s *usageService) GetUserUsageStats(ctx context.Context, userId uuid.UUID) ([]*entity.UserUsage, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.UserUsageRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "type"},
	)
}

func (s *usageService) GetDashboardStats(ctx context.Context, userId uuid.UUID) (*dto.DashboardStats, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	usage, err := uow.UserUsageRepository().FindAll(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	quotas, err := uow.QuotaRepository().FindAll(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	credits, err := uow.GenerationRepository().SumCost(ctx, userId)
	if err != nil {
		return nil, err
	}

	stats := &dto.DashboardStats{
		CreditsUsed: credits,
		Quotas:      make(map[string]dto.QuotaDetails, len(quotas)),
	}
	for _, u := range usage {
		stats.TotalGenerations += u.Count
		switch u.Type {
		case entity.GenerationTypeImage:
			stats.ImagesGenerated = u.Count
		case entity.GenerationTypeVideo:
			stats.VideosGenerated = u.Count
		case entity.GenerationTypeMusic:
			stats.MusicGenerated = u.Count
		}
	}
	for _, q := range quotas {
		stats.Quotas[strings.ToLower(string(q.GenerationType))] = dto.QuotaDetails{
			DailyLimit:   q.DailyLimit,
			DailyUsed:    q.DailyUsed,
			MonthlyLimit: q.MonthlyLimit,
			MonthlyUsed:  q.MonthlyUsed,
		}
	}
	return stats, nil
}

func (s *usageService) GetUsageHistory(ctx context.Context, userId uuid.UUID, days int) ([]dto.UsageHistoryEntry, error) {
	if days <= 0 {
		days = constant.DefaultHistoryDays
	}
	days = min(days, constant.MaxHistoryDays)

	since := s.clock().AddDate(0, 0, -days)
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.GenerationRepository().DailyCounts(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByStatus{Status: entity.GenerationStatusSuccess},
		specification.CreatedSince{Since: since},
	)
	if err != nil {
		return nil, err
	}

	history := make([]dto.UsageHistoryEntry, 0, len(rows))
	for _, r := range rows {
		history = append(history, dto.UsageHistoryEntry{
			Date:  r.Day.Format("2006-01-02"),
			Type:  string(r.Type),
			Count: r.Count,
		})
	}
	return history, nil
}
