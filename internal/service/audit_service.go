package service

import (
	"context"
	"encoding/json"

	"ai-studio-be/internal/constant"
	"ai-studio-be/internal/dto"
	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/pkg/logger"
	"ai-studio-be/internal/repository/unitofwork"
)

// IAuditService appends to the audit trail. Log has no return value: a
// failed write is reported to the diagnostic log and otherwise ignored.
type IAuditService interface {
	Log(ctx context.Context, entry dto.AuditEntry)
}

type auditService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewAuditService(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger) IAuditService {
	return &auditService{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

func (s *auditService) Log(ctx context.Context, entry dto.AuditEntry) {
	// The trail is written even when the request that produced it was cancelled.
	ctx = context.WithoutCancel(ctx)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	err := uow.AuditLogRepository().Create(ctx, &entity.AuditLog{
		UserId: entry.UserId,
		Action: entry.Action,
		Input:  entry.Input,
		Status: entry.Status,
		IP:     entry.IP,
		System: entry.System,
	})
	if err != nil {
		s.logger.Error(constant.ModuleAudit, "Failed to write audit log", map[string]interface{}{
			"action": entry.Action,
			"status": entry.Status,
			"error":  err.Error(),
		})
	}
}

// AuditInput serialises a request for the audit trail. Unserialisable values
// are recorded as an empty object.
func AuditInput(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
