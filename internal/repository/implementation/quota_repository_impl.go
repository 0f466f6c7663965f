package implementation

import (
	"context"
	"errors"
	"time"

	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/mapper"
	"ai-studio-be/internal/model"
	"ai-studio-be/internal/repository/contract"
	"ai-studio-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuotaRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QuotaMapper
}

func NewQuotaRepository(db *gorm.DB) contract.QuotaRepository {
	return &QuotaRepositoryImpl{
		db:     db,
		mapper: mapper.NewQuotaMapper(),
	}
}

func (r *QuotaRepositoryImpl) byUserAndType(ctx context.Context, userId uuid.UUID, generationType entity.GenerationType) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Quota{}).
		Where("user_id = ? AND generation_type = ?", userId, string(generationType))
}

func (r *QuotaRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Quota, error) {
	var m model.Quota
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *QuotaRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Quota, error) {
	var models []*model.Quota
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *QuotaRepositoryImpl) CreateDefaults(ctx context.Context, quotas []*entity.Quota) error {
	if len(quotas) == 0 {
		return nil
	}
	models := r.mapper.ToModels(quotas)
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "generation_type"}},
			DoNothing: true,
		}).
		Create(&models).Error
}

func (r *QuotaRepositoryImpl) ResetDaily(ctx context.Context, id uuid.UUID, staleBefore, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Quota{}).
		Where("id = ? AND last_reset <= ?", id, staleBefore).
		UpdateColumns(map[string]interface{}{
			"daily_used": 0,
			"last_reset": now,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *QuotaRepositoryImpl) ResetMonthly(ctx context.Context, id uuid.UUID, staleBefore, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Quota{}).
		Where("id = ? AND monthly_reset <= ?", id, staleBefore).
		UpdateColumns(map[string]interface{}{
			"monthly_used":  0,
			"monthly_reset": now,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *QuotaRepositoryImpl) Increment(ctx context.Context, userId uuid.UUID, generationType entity.GenerationType) error {
	res := r.byUserAndType(ctx, userId, generationType).
		UpdateColumns(map[string]interface{}{
			"daily_used":   gorm.Expr("daily_used + 1"),
			"monthly_used": gorm.Expr("monthly_used + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrNotFound
	}
	return nil
}

func (r *QuotaRepositoryImpl) IncrementIfAvailable(ctx context.Context, userId uuid.UUID, generationType entity.GenerationType) (bool, error) {
	res := r.byUserAndType(ctx, userId, generationType).
		Where("daily_used < daily_limit AND monthly_used < monthly_limit").
		UpdateColumns(map[string]interface{}{
			"daily_used":   gorm.Expr("daily_used + 1"),
			"monthly_used": gorm.Expr("monthly_used + 1"),
		})
	return res.RowsAffected == 1, res.Error
}

func (r *QuotaRepositoryImpl) Decrement(ctx context.Context, reservation entity.Reservation) error {
	return r.byUserAndType(ctx, reservation.UserId, reservation.GenerationType).
		UpdateColumns(map[string]interface{}{
			"daily_used":   gorm.Expr("CASE WHEN last_reset = ? THEN GREATEST(daily_used - 1, 0) ELSE daily_used END", reservation.DailyWindow),
			"monthly_used": gorm.Expr("CASE WHEN monthly_reset = ? THEN GREATEST(monthly_used - 1, 0) ELSE monthly_used END", reservation.MonthlyWindow),
		}).Error
}

func (r *QuotaRepositoryImpl) UpdateLimits(ctx context.Context, userId uuid.UUID, generationType entity.GenerationType, daily, monthly int) error {
	res := r.byUserAndType(ctx, userId, generationType).
		UpdateColumns(map[string]interface{}{
			"daily_limit":   daily,
			"monthly_limit": monthly,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrNotFound
	}
	return nil
}
