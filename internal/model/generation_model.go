package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Generation struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId        uuid.UUID      `gorm:"type:uuid;not null;index:idx_generations_user_created,priority:1"`
	Type          string         `gorm:"type:generation_type;not null"`
	Prompt        string         `gorm:"type:text;not null"`
	Status        string         `gorm:"type:generation_status;not null"`
	OutputURI     *string        `gorm:"column:output_uri;type:text"`
	Error         *string        `gorm:"type:text"`
	Cost          *float64       `gorm:"type:real"`
	CostBreakdown datatypes.JSON `gorm:"type:jsonb"`
	DurationMs    *int64
	CreatedAt     time.Time `gorm:"autoCreateTime;index:idx_generations_user_created,priority:2,sort:desc"`

	User User `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
}

func (Generation) TableName() string {
	return "generations"
}

type UserUsage struct {
	Id       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_usage_user_type"`
	Type     string    `gorm:"type:generation_type;not null;uniqueIndex:idx_user_usage_user_type"`
	Count    int       `gorm:"not null;default:0"`
	LastUsed time.Time `gorm:"not null"`

	User User `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
}

func (UserUsage) TableName() string {
	return "user_usage"
}

// DailyUsageRow is the scan target of the usage-history aggregate.
type DailyUsageRow struct {
	Day   time.Time
	Type  string
	Count int
}
