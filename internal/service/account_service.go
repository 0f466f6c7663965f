package service

import (
	"context"
	"fmt"
	"time"

	"ai-studio-be/internal/config"
	"ai-studio-be/internal/constant"
	"ai-studio-be/internal/dto"
	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/pkg/logger"
	"ai-studio-be/internal/repository/specification"
	"ai-studio-be/internal/repository/unitofwork"
	"ai-studio-be/pkg/database"
	"ai-studio-be/pkg/events"

	"github.com/google/uuid"
)

// TierLimits maps each generation type to its daily and monthly limits.
type TierLimits map[entity.GenerationType]config.Limits

// PaidTier is fixed; the free tier comes from configuration.
var PaidTier = TierLimits{
	entity.GenerationTypeImage: {Daily: 50, Monthly: 1000},
	entity.GenerationTypeVideo: {Daily: 10, Monthly: 100},
	entity.GenerationTypeMusic: {Daily: 20, Monthly: 200},
}

func FreeTier(cfg config.QuotaConfig) TierLimits {
	return TierLimits{
		entity.GenerationTypeImage: cfg.Image,
		entity.GenerationTypeVideo: cfg.Video,
		entity.GenerationTypeMusic: cfg.Music,
	}
}

type IAccountService interface {
	// EnsureUser mirrors the identity into users and gives a first-time user
	// default quota and zeroed usage rows. Existing rows are left as they are.
	EnsureUser(ctx context.Context, identity entity.Identity) (*entity.User, error)
	ApplyTier(ctx context.Context, userId uuid.UUID, tier string) ([]*entity.Quota, error)
}

type accountService struct {
	uowFactory unitofwork.RepositoryFactory
	tiers      map[string]TierLimits
	events     IEventBus
	logger     logger.ILogger
	clock      Clock
}

func NewAccountService(uowFactory unitofwork.RepositoryFactory, freeTier TierLimits, events IEventBus, logger logger.ILogger, clock Clock) IAccountService {
	if clock == nil {
		clock = SystemClock
	}
	return &accountService{
		uowFactory: uowFactory,
		tiers: map[string]TierLimits{
			constant.TierFree: freeTier,
			constant.TierPaid: PaidTier,
		},
		events: events,
		logger: logger,
		clock:  clock,
	}
}

func (s *accountService) EnsureUser(ctx context.Context, identity entity.Identity) (*entity.User, error) {
	now := s.clock()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	user := &entity.User{
		Id:        identity.Id,
		Email:     identity.Email,
		Name:      identity.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uow.UserRepository().Upsert(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			s.logger.Warn(constant.ModuleAccount, "Email already belongs to another user", map[string]interface{}{
				"user_id":    identity.Id.String(),
				"constraint": database.ConstraintName(err),
			})
			return nil, fmt.Errorf("email %s is taken: %w", identity.Email, dto.ErrConflict)
		}
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	free := s.tiers[constant.TierFree]
	quotas := make([]*entity.Quota, 0, len(entity.GenerationTypes))
	usage := make([]*entity.UserUsage, 0, len(entity.GenerationTypes))
	for _, t := range entity.GenerationTypes {
		limits := free[t]
		quotas = append(quotas, &entity.Quota{
			UserId:         identity.Id,
			GenerationType: t,
			DailyLimit:     limits.Daily,
			MonthlyLimit:   limits.Monthly,
			LastReset:      now,
			MonthlyReset:   now,
			CreatedAt:      now,
		})
		usage = append(usage, &entity.UserUsage{
			UserId:   identity.Id,
			Type:     t,
			LastUsed: now,
		})
	}

	if err := uow.QuotaRepository().CreateDefaults(ctx, quotas); err != nil {
		return nil, fmt.Errorf("create default quotas: %w", err)
	}
	if err := uow.UserUsageRepository().CreateDefaults(ctx, usage); err != nil {
		return nil, fmt.Errorf("create usage rows: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *accountService) ApplyTier(ctx context.Context, userId uuid.UUID, tier string) ([]*entity.Quota, error) {
	limits, ok := s.tiers[tier]
	if !ok {
		return nil, &dto.ValidationError{Field: "tier", Message: fmt.Sprintf("unknown tier %q", tier)}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, dto.ErrNotFound
	}

	repo := uow.QuotaRepository()
	for _, t := range entity.GenerationTypes {
		l := limits[t]
		if err := repo.UpdateLimits(ctx, userId, t, l.Daily, l.Monthly); err != nil {
			return nil, fmt.Errorf("update %s limits: %w", t, err)
		}
	}

	quotas, err := repo.FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "generation_type"},
	)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(constant.ModuleAccount, "Tier applied", map[string]interface{}{
		"user_id": userId.String(),
		"tier":    tier,
	})
	s.events.Emit(ctx, events.TierApplied, map[string]interface{}{
		"user_id":    userId.String(),
		"tier":       tier,
		"applied_at": s.clock().Format(time.RFC3339),
	})
	return quotas, nil
}
