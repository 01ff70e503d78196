package models

import "time"

// User is an account holder. Email is the natural key: clients and reminders
// reference it directly, matching the wire contract where owners are identified
// by email rather than a surrogate id.
type User struct {
	Email     string    `gorm:"primaryKey" json:"email"`
	Name      string    `gorm:"not null" json:"name"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash
	Photo     string    `json:"photo,omitempty"`
	Logo      string    `json:"logo,omitempty"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
