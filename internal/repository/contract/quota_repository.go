package contract

import (
	"context"
	"time"

	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/repository/specification"

	"github.com/google/uuid"
)

type QuotaRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Quota, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Quota, error)

	// CreateDefaults inserts the rows, leaving any existing (user, type) row untouched.
	CreateDefaults(ctx context.Context, quotas []*entity.Quota) error

	// ResetDaily zeroes daily_used only if last_reset is still at or before
	// staleBefore. It reports whether this call performed the reset.
	ResetDaily(ctx context.Context, id uuid.UUID, staleBefore, now time.Time) (bool, error)
	ResetMonthly(ctx context.Context, id uuid.UUID, staleBefore, now time.Time) (bool, error)

	Increment(ctx context.Context, userId uuid.UUID, generationType entity.GenerationType) error
	// IncrementIfAvailable increments both counters only while both are below
	// their limits. False means the quota had no room left.
	IncrementIfAvailable(ctx context.Context, userId uuid.UUID, generationType entity.GenerationType) (bool, error)
	// Decrement gives a reserved unit back. Each counter is only decremented
	// while its window is still the one the reservation was taken from.
	Decrement(ctx context.Context, reservation entity.Reservation) error

	UpdateLimits(ctx context.Context, userId uuid.UUID, generationType entity.GenerationType, daily, monthly int) error
}
