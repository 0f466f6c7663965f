package contract

import (
	"context"

	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/repository/specification"
)

type UserRepository interface {
	// Upsert inserts the user or refreshes email and name when the id exists.
	Upsert(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
}
