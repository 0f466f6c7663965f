package dto

import (
	"time"

	"ai-studio-be/internal/entity"

	"github.com/google/uuid"
)

type QuotaCheckRequest struct {
	GenerationType string `json:"generation_type" validate:"required,oneof=IMAGE VIDEO MUSIC"`
}

// QuotaCheckResult is the outcome of an admission decision. LimitType is empty
// when CanGenerate is true.
type QuotaCheckResult struct {
	CanGenerate      bool
	DailyRemaining   int
	MonthlyRemaining int
	Reason           string
	LimitType        string
	Quota            *entity.Quota
	ResetsAt         *time.Time
	// Reservation is set when Reserve admitted the request.
	Reservation *entity.Reservation
}

type QuotaCheckResponse struct {
	CanGenerate      bool       `json:"can_generate"`
	DailyRemaining   int        `json:"daily_remaining"`
	MonthlyRemaining int        `json:"monthly_remaining"`
	Reason           string     `json:"reason,omitempty"`
	LimitType        string     `json:"limit_type,omitempty"`
	ResetsAt         *time.Time `json:"resets_at,omitempty"`
}

func NewQuotaCheckResponse(r *QuotaCheckResult) *QuotaCheckResponse {
	return &QuotaCheckResponse{
		CanGenerate:      r.CanGenerate,
		DailyRemaining:   r.DailyRemaining,
		MonthlyRemaining: r.MonthlyRemaining,
		Reason:           r.Reason,
		LimitType:        r.LimitType,
		ResetsAt:         r.ResetsAt,
	}
}

type QuotaResponse struct {
	Id             uuid.UUID `json:"id"`
	GenerationType string    `json:"generation_type"`
	DailyLimit     int       `json:"daily_limit"`
	MonthlyLimit   int       `json:"monthly_limit"`
	DailyUsed      int       `json:"daily_used"`
	MonthlyUsed    int       `json:"monthly_used"`
	LastReset      time.Time `json:"last_reset"`
	MonthlyReset   time.Time `json:"monthly_reset"`
}

func NewQuotaResponse(q *entity.Quota) QuotaResponse {
	return QuotaResponse{
		Id:             q.Id,
		GenerationType: string(q.GenerationType),
		DailyLimit:     q.DailyLimit,
		MonthlyLimit:   q.MonthlyLimit,
		DailyUsed:      q.DailyUsed,
		MonthlyUsed:    q.MonthlyUsed,
		LastReset:      q.LastReset,
		MonthlyReset:   q.MonthlyReset,
	}
}

// QuotaExceededData is the data payload for 429 responses
type QuotaExceededData struct {
	LimitType        string     `json:"limit_type"`
	DailyRemaining   int        `json:"daily_remaining"`
	MonthlyRemaining int        `json:"monthly_remaining"`
	ResetsAt         *time.Time `json:"resets_at,omitempty"`
	ShowModalPricing bool       `json:"show_modal_pricing"`
}
