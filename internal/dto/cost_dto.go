package dto

import "ai-studio-be/pkg/cost"

type CostEstimateRequest struct {
	Type              string   `json:"type" validate:"required,oneof=IMAGE VIDEO MUSIC"`
	Quality           int      `json:"quality" validate:"omitempty,min=10,max=100"`
	Width             int      `json:"width" validate:"omitempty,min=1,max=2048"`
	Height            int      `json:"height" validate:"omitempty,min=1,max=2048"`
	Duration          int      `json:"duration" validate:"omitempty,min=1"`
	AspectRatio       string   `json:"aspect_ratio"`
	HasReferenceImage bool     `json:"has_reference_image"`
	Temperature       *float64 `json:"temperature" validate:"omitempty,gte=0,lte=1"`
	BPM               int      `json:"bpm" validate:"omitempty,min=1"`
}

func (r CostEstimateRequest) Params() cost.Params {
	return cost.Params{
		Quality:           r.Quality,
		Width:             r.Width,
		Height:            r.Height,
		Duration:          r.Duration,
		AspectRatio:       r.AspectRatio,
		HasReferenceImage: r.HasReferenceImage,
		Temperature:       r.Temperature,
		BPM:               r.BPM,
	}
}

type CostEstimateResponse struct {
	cost.Calculation
	FormattedCost string `json:"formatted_cost"`
}

type BulkCostEstimateRequest struct {
	Items []CostEstimateRequest `json:"items" validate:"required,min=1,max=50,dive"`
}

type BulkCostEstimateResponse struct {
	cost.BulkCalculation
	FormattedTotal string `json:"formatted_total"`
}
