// Package cost estimates the monetary cost of a generation request.
// Everything here is pure: no I/O, no clock, no shared state.
package cost

import (
	"fmt"
	"math"
)

type GenerationType string

const (
	TypeImage GenerationType = "IMAGE"
	TypeVideo GenerationType = "VIDEO"
	TypeMusic GenerationType = "MUSIC"
)

const (
	ImageBaseCost          = 0.039 // per image up to 1024x1024 (1290 output tokens)
	ImageBasePixels        = 1024 * 1024
	VideoBaseCostPerSecond = 0.40
	VideoDefaultDuration   = 5
	MusicBaseCostPerSecond = 0.002 // $0.06 per 30 seconds
	MusicDefaultDuration   = 30
	Currency               = "USD"
)

// Params carries the request fields that influence cost. Zero values mean
// "not supplied" except where a pointer is used to tell 0 from absent.
type Params struct {
	Prompt string

	// IMAGE
	Quality int
	Width   int
	Height  int

	// VIDEO / MUSIC
	Duration int

	// VIDEO
	AspectRatio       string
	HasReferenceImage bool

	// MUSIC
	Temperature *float64
	BPM         int
}

type Breakdown struct {
	BaseCost    float64            `json:"base_cost"`
	Duration    int                `json:"duration,omitempty"`
	Multipliers map[string]float64 `json:"multipliers"`
}

type Calculation struct {
	EstimatedCost float64        `json:"estimated_cost"`
	Breakdown     Breakdown      `json:"breakdown"`
	Currency      string         `json:"currency"`
	Type          GenerationType `json:"type"`
}

// Estimate dispatches on the generation type.
func Estimate(t GenerationType, p Params) (Calculation, error) {
	switch t {
	case TypeImage:
		return Image(p), nil
	case TypeVideo:
		return Video(p), nil
	case TypeMusic:
		return Music(p), nil
	default:
		return Calculation{}, fmt.Errorf("unknown generation type %q", t)
	}
}

func Image(p Params) Calculation {
	qualityMultiplier := 1.0
	if p.Quality > 0 {
		qualityMultiplier = float64(p.Quality) / 100 * 1.2
	}

	resolutionMultiplier := 1.0
	if p.Width > 0 && p.Height > 0 {
		resolutionMultiplier = math.Max(1.0, float64(p.Width)*float64(p.Height)/ImageBasePixels)
	}

	return Calculation{
		EstimatedCost: ImageBaseCost * qualityMultiplier * resolutionMultiplier,
		Breakdown: Breakdown{
			BaseCost: ImageBaseCost,
			Multipliers: map[string]float64{
				"quality":    qualityMultiplier,
				"resolution": resolutionMultiplier,
			},
		},
		Currency: Currency,
		Type:     TypeImage,
	}
}

func Video(p Params) Calculation {
	duration := p.Duration
	if duration <= 0 {
		duration = VideoDefaultDuration
	}

	aspectRatioMultiplier := 1.0
	if p.AspectRatio == "9:16" || p.AspectRatio == "1:1" {
		aspectRatioMultiplier = 1.1
	}

	referenceImageMultiplier := 1.0
	if p.HasReferenceImage {
		referenceImageMultiplier = 1.5
	}

	return Calculation{
		EstimatedCost: float64(duration) * VideoBaseCostPerSecond * aspectRatioMultiplier * referenceImageMultiplier,
		Breakdown: Breakdown{
			BaseCost: VideoBaseCostPerSecond,
			Duration: duration,
			Multipliers: map[string]float64{
				"aspect_ratio":    aspectRatioMultiplier,
				"reference_image": referenceImageMultiplier,
			},
		},
		Currency: Currency,
		Type:     TypeVideo,
	}
}

func Music(p Params) Calculation {
	duration := p.Duration
	if duration <= 0 {
		duration = MusicDefaultDuration
	}

	temperatureMultiplier := 1.0
	if p.Temperature != nil {
		temperatureMultiplier = 1 + *p.Temperature*0.2
	}

	bpmMultiplier := 1.0
	if p.BPM > 140 || (p.BPM > 0 && p.BPM < 60) {
		bpmMultiplier = 1.1
	}

	return Calculation{
		EstimatedCost: float64(duration) * MusicBaseCostPerSecond * temperatureMultiplier * bpmMultiplier,
		Breakdown: Breakdown{
			BaseCost: MusicBaseCostPerSecond,
			Duration: duration,
			Multipliers: map[string]float64{
				"temperature": temperatureMultiplier,
				"bpm":         bpmMultiplier,
			},
		},
		Currency: Currency,
		Type:     TypeMusic,
	}
}

// Format renders a cost for display. Anything under a cent is shown as "< $0.01".
func Format(cost float64) string {
	if cost < 0.01 {
		return "< $0.01"
	}
	return fmt.Sprintf("$%.2f", cost)
}

type BulkItem struct {
	Type   GenerationType
	Params Params
}

type BulkCalculation struct {
	TotalCost float64       `json:"total_cost"`
	Breakdown []Calculation `json:"breakdown"`
}

func EstimateBulk(items []BulkItem) (BulkCalculation, error) {
	out := BulkCalculation{Breakdown: make([]Calculation, 0, len(items))}
	for i, item := range items {
		calc, err := Estimate(item.Type, item.Params)
		if err != nil {
			return BulkCalculation{}, fmt.Errorf("item %d: %w", i, err)
		}
		out.TotalCost += calc.EstimatedCost
		out.Breakdown = append(out.Breakdown, calc)
	}
	return out, nil
}

type Affordability struct {
	CanAfford bool   `json:"can_afford"`
	Message   string `json:"message,omitempty"`
}

// CanAfford reports whether a paid-tier balance covers the estimate.
// Free-tier generations are paid for by quota, not credits.
func CanAfford(credits, estimatedCost float64, tier string) Affordability {
	if tier == "" || tier == "free" {
		return Affordability{CanAfford: true}
	}
	if credits >= estimatedCost {
		return Affordability{CanAfford: true}
	}
	return Affordability{
		CanAfford: false,
		Message:   fmt.Sprintf("Insufficient credits. Need $%.2f, have $%.2f", estimatedCost, credits),
	}
}
