package model

import (
	"time"
)

// User represents the account that owns tags, ingredients and recipes.
// Email is the login identifier.
type User struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Email       string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password    string     `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialize
	Name        string     `json:"name" gorm:"type:varchar(255)"`
	IsActive    bool       `json:"is_active" gorm:"not null"`
	IsStaff     bool       `json:"is_staff" gorm:"not null"`
	IsSuperuser bool       `json:"is_superuser" gorm:"not null"`
	LastLogin   *time.Time `json:"last_login"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
