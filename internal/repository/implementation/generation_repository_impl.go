package implementation

import (
	"context"

	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/mapper"
	"ai-studio-be/internal/model"
	"ai-studio-be/internal/repository/contract"
	"ai-studio-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GenerationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GenerationMapper
	usage  *mapper.UserUsageMapper
}

func NewGenerationRepository(db *gorm.DB) contract.GenerationRepository {
	return &GenerationRepositoryImpl{
		db:     db,
		mapper: mapper.NewGenerationMapper(),
		usage:  mapper.NewUserUsageMapper(),
	}
}

func (r *GenerationRepositoryImpl) Create(ctx context.Context, generation *entity.Generation) error {
	m := r.mapper.ToModel(generation)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return err
	}
	*generation = *r.mapper.ToEntity(m)
	return nil
}

func (r *GenerationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Generation, error) {
	var models []*model.Generation
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *GenerationRepositoryImpl) SumCost(ctx context.Context, userId uuid.UUID) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&model.Generation{}).
		Select("COALESCE(SUM(cost), 0)").
		Where("user_id = ?", userId).
		Scan(&total).Error
	return total, err
}

func (r *GenerationRepositoryImpl) DailyCounts(ctx context.Context, specs ...specification.Specification) ([]*entity.DailyUsage, error) {
	var rows []model.DailyUsageRow
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Generation{}), specs...)
	err := query.
		Select("DATE(created_at) AS day, type, COUNT(*) AS count").
		Group("DATE(created_at), type").
		Order("day DESC, type ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.usage.DailyToEntities(rows), nil
}
