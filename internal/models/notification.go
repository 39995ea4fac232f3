package models

import "time"

// Notification informs a student about a review decision or a recalculation
// affecting their record. UserID carries the student number; ApplicationID is
// set when the notification was raised by a decision on a specific
// application.
type Notification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        string    `gorm:"size:64;not null;index" json:"user_id"`
	ApplicationID *uint     `gorm:"index" json:"application_id,omitempty"`
	Type          string    `gorm:"size:50;not null" json:"type"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	Read          bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
