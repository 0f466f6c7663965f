package entity

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	Id        uuid.UUID
	UserId    *uuid.UUID
	Action    string
	Input     string
	Status    string
	IP        string
	System    string
	CreatedAt time.Time
}
