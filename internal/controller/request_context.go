package controller

import (
	"ai-studio-be/internal/constant"
	"ai-studio-be/internal/dto"
	"ai-studio-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	identity, ok := serverutils.CurrentIdentity(ctx)
	if !ok {
		return uuid.Nil, dto.ErrUnauthorized
	}
	return identity.Id, nil
}

func parseBody(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		return &dto.ValidationError{Field: "body", Message: "invalid request body"}
	}
	return nil
}

// auditEntry fills in the request-derived fields of an audit record.
func auditEntry(ctx *fiber.Ctx, userId uuid.UUID, action, input, status string) dto.AuditEntry {
	system := ctx.Get(fiber.HeaderUserAgent)
	if system == "" {
		system = constant.ServiceName
	}
	return dto.AuditEntry{
		UserId: &userId,
		Action: action,
		Input:  input,
		Status: status,
		IP:     serverutils.ClientIP(ctx),
		System: system,
	}
}

func outcomeStatus(err error) string {
	if err != nil {
		return constant.AuditStatusFailed
	}
	return constant.AuditStatusSuccess
}
