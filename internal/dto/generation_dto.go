package dto

import (
	"time"

	"ai-studio-be/internal/entity"

	"github.com/google/uuid"
)

// RecordGenerationParams describes one finished provider call. QuotaReserved
// marks a call whose quota was already taken by a reservation.
type RecordGenerationParams struct {
	UserId        uuid.UUID
	Type          entity.GenerationType
	Prompt        string
	Status        entity.GenerationStatus
	OutputURI     *string
	Error         *string
	Cost          *float64
	CostBreakdown map[string]interface{}
	DurationMs    *int64
	QuotaReserved bool
}

type RecordGenerationRequest struct {
	Type       string   `json:"type" validate:"required,oneof=IMAGE VIDEO MUSIC"`
	Prompt     string   `json:"prompt" validate:"required"`
	Status     string   `json:"status" validate:"required,oneof=SUCCESS FAILED"`
	OutputURI  *string  `json:"output_uri"`
	Error      *string  `json:"error"`
	Cost       *float64 `json:"cost" validate:"omitempty,gte=0"`
	DurationMs *int64   `json:"duration_ms" validate:"omitempty,gte=0"`
}

type GenerationResponse struct {
	Id            uuid.UUID              `json:"id"`
	Type          string                 `json:"type"`
	Prompt        string                 `json:"prompt"`
	Status        string                 `json:"status"`
	OutputURI     *string                `json:"output_uri,omitempty"`
	Error         *string                `json:"error,omitempty"`
	Cost          *float64               `json:"cost,omitempty"`
	CostBreakdown map[string]interface{} `json:"cost_breakdown,omitempty"`
	DurationMs    *int64                 `json:"duration_ms,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

func NewGenerationResponse(g *entity.Generation) GenerationResponse {
	return GenerationResponse{
		Id:            g.Id,
		Type:          string(g.Type),
		Prompt:        g.Prompt,
		Status:        string(g.Status),
		OutputURI:     g.OutputURI,
		Error:         g.Error,
		Cost:          g.Cost,
		CostBreakdown: g.CostBreakdown,
		DurationMs:    g.DurationMs,
		CreatedAt:     g.CreatedAt,
	}
}

type ImageGenerateRequest struct {
	Prompt  string `json:"prompt" validate:"required,min=10,max=1000"`
	Width   int    `json:"width" validate:"omitempty,min=64,max=2048"`
	Height  int    `json:"height" validate:"omitempty,min=64,max=2048"`
	Quality int    `json:"quality" validate:"omitempty,min=10,max=100"`
	Style   string `json:"style" validate:"omitempty,max=100"`
}

type VideoGenerateRequest struct {
	Prompt         string `json:"prompt" validate:"required,min=10,max=1000"`
	Duration       int    `json:"duration" validate:"omitempty,min=1,max=30"`
	AspectRatio    string `json:"aspect_ratio" validate:"omitempty,oneof=16:9 9:16 1:1"`
	ReferenceImage string `json:"reference_image" validate:"omitempty"`
}

type MusicGenerateRequest struct {
	Prompt      string   `json:"prompt" validate:"required,min=10,max=1000"`
	Duration    int      `json:"duration" validate:"omitempty,min=10,max=120"`
	BPM         int      `json:"bpm" validate:"omitempty,min=60,max=200"`
	Genre       string   `json:"genre" validate:"omitempty,max=50"`
	Temperature *float64 `json:"temperature" validate:"omitempty,gte=0,lte=1"`
}

// GenerateCommand is one end-to-end generation request, after validation.
type GenerateCommand struct {
	User   entity.Identity
	Type   entity.GenerationType
	Prompt string

	Width          int
	Height         int
	Quality        int
	Style          string
	Duration       int
	AspectRatio    string
	ReferenceImage string
	BPM            int
	Genre          string
	Temperature    *float64

	IP     string
	System string
}

type GenerateResponse struct {
	GenerationId     uuid.UUID `json:"generation_id"`
	Type             string    `json:"type"`
	OutputURI        string    `json:"output_uri"`
	MimeType         string    `json:"mime_type,omitempty"`
	Cost             float64   `json:"cost"`
	FormattedCost    string    `json:"formatted_cost"`
	DurationMs       int64     `json:"duration_ms"`
	DailyRemaining   int       `json:"daily_remaining"`
	MonthlyRemaining int       `json:"monthly_remaining"`
}
