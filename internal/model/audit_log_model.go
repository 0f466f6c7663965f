package model

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    *uuid.UUID `gorm:"type:uuid;index"`
	Action    string     `gorm:"type:varchar(100);not null;index"`
	Input     string     `gorm:"type:text"`
	Status    string     `gorm:"type:varchar(50);not null"`
	IP        string     `gorm:"column:ip;type:varchar(45)"`
	System    string     `gorm:"type:text"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`

	User *User `gorm:"foreignKey:UserId;constraint:OnDelete:SET NULL"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
