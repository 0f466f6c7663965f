package dto

import "github.com/google/uuid"

type ApplyTierRequest struct {
	Tier string `json:"tier" validate:"required,oneof=free paid"`
}

type AuditEntry struct {
	UserId *uuid.UUID
	Action string
	Input  string
	Status string
	IP     string
	System string
}
