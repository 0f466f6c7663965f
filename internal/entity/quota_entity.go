package entity

import (
	"time"

	"github.com/google/uuid"
)

type GenerationType string

const (
	GenerationTypeImage GenerationType = "IMAGE"
	GenerationTypeVideo GenerationType = "VIDEO"
	GenerationTypeMusic GenerationType = "MUSIC"
)

var GenerationTypes = []GenerationType{
	GenerationTypeImage,
	GenerationTypeVideo,
	GenerationTypeMusic,
}

func (t GenerationType) Valid() bool {
	switch t {
	case GenerationTypeImage, GenerationTypeVideo, GenerationTypeMusic:
		return true
	}
	return false
}

const (
	DailyWindow   = 24 * time.Hour
	MonthlyWindow = 30 * 24 * time.Hour
)

type Quota struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	GenerationType GenerationType
	DailyLimit     int
	MonthlyLimit   int
	DailyUsed      int
	MonthlyUsed    int
	LastReset      time.Time
	MonthlyReset   time.Time
	CreatedAt      time.Time
}

// DailyResetDue reports whether at least one whole day has passed since the
// last daily reset.
func (q *Quota) DailyResetDue(now time.Time) bool {
	return int64(now.Sub(q.LastReset)/DailyWindow) >= 1
}

func (q *Quota) MonthlyResetDue(now time.Time) bool {
	return now.Sub(q.MonthlyReset) >= MonthlyWindow
}

// Reservation is one unit taken from a quota, stamped with the windows it
// was taken from.
type Reservation struct {
	UserId         uuid.UUID
	GenerationType GenerationType
	DailyWindow    time.Time
	MonthlyWindow  time.Time
}

func (q *Quota) Reservation() Reservation {
	return Reservation{
		UserId:         q.UserId,
		GenerationType: q.GenerationType,
		DailyWindow:    q.LastReset,
		MonthlyWindow:  q.MonthlyReset,
	}
}

func (q *Quota) HasCapacity() bool {
	return q.DailyUsed < q.DailyLimit && q.MonthlyUsed < q.MonthlyLimit
}

func (q *Quota) DailyRemaining() int {
	return max(q.DailyLimit-q.DailyUsed, 0)
}

func (q *Quota) MonthlyRemaining() int {
	return max(q.MonthlyLimit-q.MonthlyUsed, 0)
}

func (q *Quota) DailyResetsAt() time.Time {
	return q.LastReset.Add(DailyWindow)
}

func (q *Quota) MonthlyResetsAt() time.Time {
	return q.MonthlyReset.Add(MonthlyWindow)
}
