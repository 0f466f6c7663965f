package mapper

import (
	"encoding/json"

	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/model"

	"gorm.io/datatypes"
)

type GenerationMapper struct{}

func NewGenerationMapper() *GenerationMapper {
	return &GenerationMapper{}
}

func (m *GenerationMapper) ToEntity(g *model.Generation) *entity.Generation {
	if g == nil {
		return nil
	}

	var breakdown map[string]interface{}
	if len(g.CostBreakdown) > 0 {
		// A breakdown that no longer parses is dropped rather than failing the read.
		_ = json.Unmarshal(g.CostBreakdown, &breakdown)
	}

	return &entity.Generation{
		Id:            g.Id,
		UserId:        g.UserId,
		Type:          entity.GenerationType(g.Type),
		Prompt:        g.Prompt,
		Status:        entity.GenerationStatus(g.Status),
		OutputURI:     g.OutputURI,
		Error:         g.Error,
		Cost:          g.Cost,
		CostBreakdown: breakdown,
		DurationMs:    g.DurationMs,
		CreatedAt:     g.CreatedAt,
	}
}

func (m *GenerationMapper) ToModel(g *entity.Generation) *model.Generation {
	if g == nil {
		return nil
	}

	var breakdown datatypes.JSON
	if g.CostBreakdown != nil {
		if b, err := json.Marshal(g.CostBreakdown); err == nil {
			breakdown = datatypes.JSON(b)
		}
	}

	return &model.Generation{
		Id:            g.Id,
		UserId:        g.UserId,
		Type:          string(g.Type),
		Prompt:        g.Prompt,
		Status:        string(g.Status),
		OutputURI:     g.OutputURI,
		Error:         g.Error,
		Cost:          g.Cost,
		CostBreakdown: breakdown,
		DurationMs:    g.DurationMs,
		CreatedAt:     g.CreatedAt,
	}
}

func (m *GenerationMapper) ToEntities(gens []*model.Generation) []*entity.Generation {
	entities := make([]*entity.Generation, len(gens))
	for i, g := range gens {
		entities[i] = m.ToEntity(g)
	}
	return entities
}

type UserUsageMapper struct{}

func NewUserUsageMapper() *UserUsageMapper {
	return &UserUsageMapper{}
}

func (m *UserUsageMapper) ToEntity(u *model.UserUsage) *entity.UserUsage {
	if u == nil {
		return nil
	}
	return &entity.UserUsage{
		Id:       u.Id,
		UserId:   u.UserId,
		Type:     entity.GenerationType(u.Type),
		Count:    u.Count,
		LastUsed: u.LastUsed,
	}
}

func (m *UserUsageMapper) ToModel(u *entity.UserUsage) *model.UserUsage {
	if u == nil {
		return nil
	}
	return &model.UserUsage{
		Id:       u.Id,
		UserId:   u.UserId,
		Type:     string(u.Type),
		Count:    u.Count,
		LastUsed: u.LastUsed,
	}
}

func (m *UserUsageMapper) ToEntities(rows []*model.UserUsage) []*entity.UserUsage {
	entities := make([]*entity.UserUsage, len(rows))
	for i, u := range rows {
		entities[i] = m.ToEntity(u)
	}
	return entities
}

func (m *UserUsageMapper) DailyToEntities(rows []model.DailyUsageRow) []*entity.DailyUsage {
	entities := make([]*entity.DailyUsage, len(rows))
	for i, r := range rows {
		entities[i] = &entity.DailyUsage{
			Day:   r.Day,
			Type:  entity.GenerationType(r.Type),
			Count: r.Count,
		}
	}
	return entities
}
