package models

import (
	"time"

	"gorm.io/gorm"
)

// Email represents one summarized inbox message persisted for a user.
// EmailID is the mailbox-assigned message id and is unique per row;
// re-summarizing an already stored message is a conflict-safe no-op.
type Email struct {
	gorm.Model

	EmailID   string    `gorm:"uniqueIndex;not null" json:"email_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	FromEmail string    `gorm:"not null" json:"from"`
	Subject   string    `json:"subject"`
	Summary   string    `gorm:"type:text" json:"summary"`
	Date      time.Time `gorm:"index" json:"date"`

	// Read/trash lifecycle
	Read        bool       `gorm:"default:false" json:"read"`
	IsTrashed   bool       `gorm:"default:false;index" json:"is_trashed"`
	DeletedDate *time.Time `json:"deleted_date,omitempty"`

	// Relations
	User User `json:"-"`
}
