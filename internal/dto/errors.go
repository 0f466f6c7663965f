package dto

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)

// QuotaExceededError is returned when admission is denied. LimitType tells
// the caller which response code applies.
type QuotaExceededError struct {
	LimitType        string
	Reason           string
	DailyRemaining   int
	MonthlyRemaining int
	ResetsAt         *time.Time
}

func (e *QuotaExceededError) Error() string {
	return e.Reason
}

type RateLimitedError struct {
	Limit  int
	Window time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d requests per %s", e.Limit, e.Window)
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ProviderError wraps a failed call to a generation provider.
type ProviderError struct {
	Provider     string
	GenerationId string
	Err          error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
