package unitofwork

import (
	"context"

	"ai-studio-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	QuotaRepository() contract.QuotaRepository
	GenerationRepository() contract.GenerationRepository
	UserUsageRepository() contract.UserUsageRepository
	AuditLogRepository() contract.AuditLogRepository
}
