package dto

import (
	"time"

	"ai-studio-be/internal/entity"
)

type UsageStatResponse struct {
	Type     string    `json:"type"`
	Count    int       `json:"count"`
	LastUsed time.Time `json:"last_used"`
}

func NewUsageStatResponse(u *entity.UserUsage) UsageStatResponse {
	return UsageStatResponse{
		Type:     string(u.Type),
		Count:    u.Count,
		LastUsed: u.LastUsed,
	}
}

type UserStatsResponse struct {
	Generations []GenerationResponse `json:"generations"`
	UsageStats  []UsageStatResponse  `json:"usage_stats"`
}

type QuotaDetails struct {
	DailyLimit   int `json:"daily_limit"`
	DailyUsed    int `json:"daily_used"`
	MonthlyLimit int `json:"monthly_limit"`
	MonthlyUsed  int `json:"monthly_used"`
}

// DashboardStats keys quota details by lower-case type ("image", "video", "music").
type DashboardStats struct {
	TotalGenerations int                     `json:"total_generations"`
	ImagesGenerated  int                     `json:"images_generated"`
	VideosGenerated  int                     `json:"videos_generated"`
	MusicGenerated   int                     `json:"music_generated"`
	CreditsUsed      float64                 `json:"credits_used"`
	Quotas           map[string]QuotaDetails `json:"quotas"`
}

type UsageHistoryEntry struct {
	Date  string `json:"date"`
	Type  string `json:"type"`
	Count int    `json:"count"`
}
