package model

import (
	"time"

	"github.com/google/uuid"
)

type Quota struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_quotas_user_type"`
	GenerationType string    `gorm:"type:generation_type;not null;uniqueIndex:idx_quotas_user_type"`
	DailyLimit     int       `gorm:"not null"`
	MonthlyLimit   int       `gorm:"not null"`
	DailyUsed      int       `gorm:"not null;default:0"`
	MonthlyUsed    int       `gorm:"not null;default:0"`
	LastReset      time.Time `gorm:"not null"`
	MonthlyReset   time.Time `gorm:"not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`

	User User `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
}

func (Quota) TableName() string {
	return "quotas"
}
