package mapper

import (
	"ai-studio-be/internal/entity"
	"ai-studio-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:        u.Id,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:        u.Id,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type AuditLogMapper struct{}

func NewAuditLogMapper() *AuditLogMapper {
	return &AuditLogMapper{}
}

func (m *AuditLogMapper) ToModel(a *entity.AuditLog) *model.AuditLog {
	if a == nil {
		return nil
	}
	return &model.AuditLog{
		Id:        a.Id,
		UserId:    a.UserId,
		Action:    a.Action,
		Input:     a.Input,
		Status:    a.Status,
		IP:        a.IP,
		System:    a.System,
		CreatedAt: a.CreatedAt,
	}
}

func (m *AuditLogMapper) ToEntity(a *model.AuditLog) *entity.AuditLog {
	if a == nil {
		return nil
	}
	return &entity.AuditLog{
		Id:        a.Id,
		UserId:    a.UserId,
		Action:    a.Action,
		Input:     a.Input,
		Status:    a.Status,
		IP:        a.IP,
		System:    a.System,
		CreatedAt: a.CreatedAt,
	}
}
