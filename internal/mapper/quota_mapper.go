package mapper

import (
	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/model"
)

type QuotaMapper struct{}

func NewQuotaMapper() *QuotaMapper {
	return &QuotaMapper{}
}

func (m *QuotaMapper) ToEntity(q *model.Quota) *entity.Quota {
	if q == nil {
		return nil
	}

	return &entity.Quota{
		Id:             q.Id,
		UserId:         q.UserId,
		GenerationType: entity.GenerationType(q.GenerationType),
		DailyLimit:     q.DailyLimit,
		MonthlyLimit:   q.MonthlyLimit,
		DailyUsed:      q.DailyUsed,
		MonthlyUsed:    q.MonthlyUsed,
		LastReset:      q.LastReset,
		MonthlyReset:   q.MonthlyReset,
		CreatedAt:      q.CreatedAt,
	}
}

func (m *QuotaMapper) ToModel(q *entity.Quota) *model.Quota {
	if q == nil {
		return nil
	}

	return &model.Quota{
		Id:             q.Id,
		UserId:         q.UserId,
		GenerationType: string(q.GenerationType),
		DailyLimit:     q.DailyLimit,
		MonthlyLimit:   q.MonthlyLimit,
		DailyUsed:      q.DailyUsed,
		MonthlyUsed:    q.MonthlyUsed,
		LastReset:      q.LastReset,
		MonthlyReset:   q.MonthlyReset,
		CreatedAt:      q.CreatedAt,
	}
}

func (m *QuotaMapper) ToEntities(quotas []*model.Quota) []*entity.Quota {
	entities := make([]*entity.Quota, len(quotas))
	for i, q := range quotas {
		entities[i] = m.ToEntity(q)
	}
	return entities
}

func (m *QuotaMapper) ToModels(quotas []*entity.Quota) []*model.Quota {
	models := make([]*model.Quota, len(quotas))
	for i, q := range quotas {
		models[i] = m.ToModel(q)
	}
	return models
}
