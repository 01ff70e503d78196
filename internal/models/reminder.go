package models

import "time"

// Reminder is a per-user checklist entry shown on the dashboard.
type Reminder struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserEmail string    `gorm:"column:useremail;not null;index" json:"useremail"`
	Title     string    `gorm:"not null" json:"title"`
	IsChecked bool      `gorm:"column:ischecked" json:"ischecked"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{&User{}, &Client{}, &Dependent{}, &Reminder{}}
}
