package domain

import (
	"time"
)

type Role string

const (
	RoleNormalPlanner Role = "普通计划员"
	RoleSeniorPlanner Role = "资深计划员"
	RoleAdmin         Role = "管理员"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
