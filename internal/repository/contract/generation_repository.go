package contract

import (
	"context"
	"time"

	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/repository/specification"

	"github.com/google/uuid"
)

// GenerationRepository is append-only.
type GenerationRepository interface {
	Create(ctx context.Context, generation *entity.Generation) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Generation, error)
	SumCost(ctx context.Context, userId uuid.UUID) (float64, error)
	// DailyCounts groups the matching generations by calendar day and type.
	DailyCounts(ctx context.Context, specs ...specification.Specification) ([]*entity.DailyUsage, error)
}

type UserUsageRepository interface {
	CreateDefaults(ctx context.Context, rows []*entity.UserUsage) error
	// Increment adds one to the (user, type) counter, creating it with count 1 if missing.
	Increment(ctx context.Context, userId uuid.UUID, generationType entity.GenerationType, usedAt time.Time) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UserUsage, error)
}

// AuditLogRepository is append-only.
type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
}
