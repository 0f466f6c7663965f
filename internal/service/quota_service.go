package service

import (
	"context"
	"fmt"
	"time"

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

type IQuotaService interface {
	// Evaluate decides admission without consuming quota. Storage failures
	// deny with LimitType "error"; it never returns an error itself.
	Evaluate(ctx context.Context, userId uuid.UUID, generationType entity.GenerationType) *dto.QuotaCheckResult
	// Reserve decides admission and, when admitted, takes one unit of quota
	// in the same transaction.
	Reserve(ctx context.Context, userId uuid.UUID, generationType entity.GenerationType) *dto.QuotaCheckResult
	// Release returns a unit taken by Reserve. A unit whose window has since
	// been reset is not returned to the new window.
	Release(ctx context.Context, reservation entity.Reservation) error
	GetUserQuotas(ctx context.Context, userId uuid.UUID) ([]*entity.Quota, error)
}

type quotaService struct {
	uowFactory unitofwork.RepositoryFactory
	events     IEventBus
	logger     logger.ILogger
	clock      Clock
}

func NewQuotaService(uowFactory unitofwork.RepositoryFactory, events IEventBus, logger logger.ILogger, clock Clock) IQuotaService {
	if clock == nil {
		clock = SystemClock
	}
	return &quotaService{
		uowFactory: uowFactory,
		events:     events,
		logger:     logger,
		clock:      clock,
	}
}

func (s *quotaService) Evaluate(ctx context.Context, userId uuid.UUID, generationType entity.GenerationType) *dto.QuotaCheckResult {
	now := s.clock()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	quota, resets, err := s.loadFresh(ctx, uow.QuotaRepository(), userId, generationType, now, false)
	if err != nil {
		return s.checkFailed(userId, generationType, err)
	}
	s.emitResets(ctx, userId, generationType, resets)
	if quota == nil {
		return notConfigured()
	}

	return decide(quota)
}

func (s *quotaService) Reserve(ctx context.Context, userId uuid.UUID, generationType entity.GenerationType) *dto.QuotaCheckResult {
	now := s.clock()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return s.checkFailed(userId, generationType, err)
	}
	defer uow.Rollback()

	repo := uow.QuotaRepository()
	quota, resets, err := s.loadFresh(ctx, repo, userId, generationType, now, true)
	if err != nil {
		return s.checkFailed(userId, generationType, err)
	}
	if quota == nil {
		return notConfigured()
	}

	reserved, err := repo.IncrementIfAvailable(ctx, userId, generationType)
	if err != nil {
		return s.checkFailed(userId, generationType, err)
	}
	if err := uow.Commit(); err != nil {
		return s.checkFailed(userId, generationType, err)
	}
	s.emitResets(ctx, userId, generationType, resets)

	if !reserved {
		res := decide(quota)
		if res.CanGenerate {
			// The row changed between the locked read and the increment.
			return s.checkFailed(userId, generationType, fmt.Errorf("quota %s changed during reservation", quota.Id))
		}
		s.events.Emit(ctx, events.QuotaExceeded, map[string]interface{}{
			"user_id":    userId.String(),
			"type":       string(generationType),
			"limit_type": res.LimitType,
		})
		return res
	}

	quota.DailyUsed++
	quota.MonthlyUsed++
	reservation := quota.Reservation()
	return &dto.QuotaCheckResult{
		CanGenerate:      true,
		DailyRemaining:   quota.DailyRemaining(),
		MonthlyRemaining: quota.MonthlyRemaining(),
		Quota:            quota,
		Reservation:      &reservation,
	}
}

func (s *quotaService) Release(ctx context.Context, reservation entity.Reservation) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.QuotaRepository().Decrement(ctx, reservation); err != nil {
		return fmt.Errorf("release quota: %w", err)
	}
	return nil
}

func (s *quotaService) GetUserQuotas(ctx context.Context, userId uuid.UUID) ([]*entity.Quota, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.QuotaRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "generation_type"},
	)
}

// loadFresh reads the quota and applies any due window resets before
// returning it. Resets are conditional updates, so concurrent callers reset a
// window at most once; the row is re-read afterwards either way.
func (s *quotaService) loadFresh(
	ctx context.Context,
	repo contract.QuotaRepository,
	userId uuid.UUID,
	generationType entity.GenerationType,
	now time.Time,
	lock bool,
) (*entity.Quota, []string, error) {
	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.ByGenerationType{Type: generationType},
	}
	if lock {
		specs = append(specs, specification.ForUpdate{})
	}

	quota, err := repo.FindOne(ctx, specs...)
	if err != nil || quota == nil {
		return nil, nil, err
	}

	var resets []string
	stale := false

	if quota.DailyResetDue(now) {
		stale = true
		done, err := repo.ResetDaily(ctx, quota.Id, now.Add(-entity.DailyWindow), now)
		if err != nil {
			return nil, nil, fmt.Errorf("reset daily quota: %w", err)
		}
		if done {
			resets = append(resets, constant.LimitTypeDaily)
		}
	}

	if quota.MonthlyResetDue(now) {
		stale = true
		done, err := repo.ResetMonthly(ctx, quota.Id, now.Add(-entity.MonthlyWindow), now)
		if err != nil {
			return nil, nil, fmt.Errorf("reset monthly quota: %w", err)
		}
		if done {
			resets = append(resets, constant.LimitTypeMonthly)
		}
	}

	if stale {
		quota, err = repo.FindOne(ctx, specs...)
		if err != nil || quota == nil {
			return nil, nil, err
		}
	}

	return quota, resets, nil
}

func (s *quotaService) emitResets(ctx context.Context, userId uuid.UUID, generationType entity.GenerationType, resets []string) {
	for _, window := range resets {
		s.logger.Info(constant.ModuleQuota, "Quota window reset", map[string]interface{}{
			"user_id": userId.String(),
			"type":    string(generationType),
			"window":  window,
		})
		s.events.Emit(ctx, events.QuotaReset, map[string]interface{}{
			"user_id": userId.String(),
			"type":    string(generationType),
			"window":  window,
		})
	}
}

func (s *quotaService) checkFailed(userId uuid.UUID, generationType entity.GenerationType, err error) *dto.QuotaCheckResult {
	s.logger.Error(constant.ModuleQuota, "Error checking quota", map[string]interface{}{
		"user_id": userId.String(),
		"type":    string(generationType),
		"error":   err.Error(),
	})
	return &dto.QuotaCheckResult{
		CanGenerate: false,
		Reason:      constant.ReasonCheckError,
		LimitType:   constant.LimitTypeError,
	}
}

func notConfigured() *dto.QuotaCheckResult {
	return &dto.QuotaCheckResult{
		CanGenerate: false,
		Reason:      constant.ReasonNotConfigured,
		LimitType:   constant.LimitTypeNotConfigured,
	}
}

// decide applies the admission rule to a quota whose windows are current.
// The daily limit is checked before the monthly one.
func decide(q *entity.Quota) *dto.QuotaCheckResult {
	res := &dto.QuotaCheckResult{
		DailyRemaining:   q.DailyRemaining(),
		MonthlyRemaining: q.MonthlyRemaining(),
		Quota:            q,
	}

	switch {
	case q.DailyUsed >= q.DailyLimit:
		resetsAt := q.DailyResetsAt()
		res.Reason = fmt.Sprintf(constant.ReasonDailyFormat, q.DailyUsed, q.DailyLimit)
		res.LimitType = constant.LimitTypeDaily
		res.ResetsAt = &resetsAt
	case q.MonthlyUsed >= q.MonthlyLimit:
		resetsAt := q.MonthlyResetsAt()
		res.Reason = fmt.Sprintf(constant.ReasonMonthlyFormat, q.MonthlyUsed, q.MonthlyLimit)
		res.LimitType = constant.LimitTypeMonthly
		res.ResetsAt = &resetsAt
	default:
		res.CanGenerate = true
	}
	return res
}
