package models

import (
	"time"
)

// Meeting is a scheduled room. EDate is optional: open-ended meetings
// carry no end date until one is patched in.
type Meeting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RoomName  string     `gorm:"not null" json:"room_name"`
	SDate     time.Time  `gorm:"not null" json:"s_date"`
	EDate     *time.Time `json:"e_date,omitempty"`
	CreatedBy uint       `gorm:"index;not null" json:"created_by"`
}
