package models

import (
	"time"
)

type Participant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	MeetingID uint       `gorm:"index;not null" json:"meeting_id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	Role      string     `gorm:"not null" json:"role"`
	JoinedAt  *time.Time `json:"joined_at,omitempty"`
	LeftAt    *time.Time `json:"left_at,omitempty"`
}
