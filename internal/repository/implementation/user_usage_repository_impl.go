package implementation

import (
	"context"
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

type UserUsageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserUsageMapper
}

func NewUserUsageRepository(db *gorm.DB) contract.UserUsageRepository {
	return &UserUsageRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserUsageMapper(),
	}
}

var userUsageConflict = []clause.Column{{Name: "user_id"}, {Name: "type"}}

func (r *UserUsageRepositoryImpl) CreateDefaults(ctx context.Context, rows []*entity.UserUsage) error {
	if len(rows) == 0 {
		return nil
	}
	models := make([]*model.UserUsage, len(rows))
	for i, row := range rows {
		models[i] = r.mapper.ToModel(row)
	}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: userUsageConflict, DoNothing: true}).
		Create(&models).Error
}

func (r *UserUsageRepositoryImpl) Increment(ctx context.Context, userId uuid.UUID, generationType entity.GenerationType, usedAt time.Time) error {
	m := &model.UserUsage{
		UserId:   userId,
		Type:     string(generationType),
		Count:    1,
		LastUsed: usedAt,
	}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: userUsageConflict,
			DoUpdates: clause.Assignments(map[string]interface{}{
				"count":     gorm.Expr("user_usage.count + 1"),
				"last_used": usedAt,
			}),
		}).
		Create(m).Error
}

func (r *UserUsageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UserUsage, error) {
	var models []*model.UserUsage
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
