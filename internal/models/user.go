package models

import (
	"time"
)

const (
	RoleStudent = "STUDENT"
	RoleAdmin   = "ADMIN"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name            string  `gorm:"not null" json:"name"`
	Email           string  `gorm:"uniqueIndex;not null" json:"email"`
	Password        string  `gorm:"not null" json:"-"`
	Role            string  `gorm:"default:'STUDENT'" json:"role"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`

	IsVerified       bool    `gorm:"default:false" json:"is_verified"`
	VerificationCode *string `json:"-"`
}
