package specification

import (
	"time"

	"ai-studio-be/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ByGenerationType filters quotas, whose column is generation_type.
type ByGenerationType struct {
	Type entity.GenerationType
}

func (s ByGenerationType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("generation_type = ?", string(s.Type))
}

type ByStatus struct {
	Status entity.GenerationStatus
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

type CreatedSince struct {
	Since time.Time
}

func (s CreatedSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ?", s.Since)
}

// ForUpdate locks the selected rows until the surrounding transaction ends.
type ForUpdate struct{}

func (s ForUpdate) Apply(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
