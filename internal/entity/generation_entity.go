package entity

import (
	"time"

	"github.com/google/uuid"
)

type GenerationStatus string

const (
	GenerationStatusSuccess GenerationStatus = "SUCCESS"
	GenerationStatusFailed  GenerationStatus = "FAILED"
)

func (s GenerationStatus) Valid() bool {
	return s == GenerationStatusSuccess || s == GenerationStatusFailed
}

type Generation struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	Type          GenerationType
	Prompt        string
	Status        GenerationStatus
	OutputURI     *string
	Error         *string
	Cost          *float64
	CostBreakdown map[string]interface{}
	DurationMs    *int64
	CreatedAt     time.Time
}

// UserUsage is the lifetime count of successful generations per type.
type UserUsage struct {
	Id       uuid.UUID
	UserId   uuid.UUID
	Type     GenerationType
	Count    int
	LastUsed time.Time
}

type DailyUsage struct {
	Day   time.Time
	Type  GenerationType
	Count int
}
