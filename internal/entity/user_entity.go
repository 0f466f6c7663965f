package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User mirrors the identity provider's account. Nothing here is
// authoritative; it exists so quotas and generations have a foreign key.
type User struct {
	Id        uuid.UUID
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity is what the auth middleware extracts from a verified token.
type Identity struct {
	Id    uuid.UUID
	Email string
	Name  string
	Role  UserRole
}

func (i Identity) IsAdmin() bool {
	return i.Role == UserRoleAdmin
}
