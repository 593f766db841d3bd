package models

import (
	"time"

	"github.com/google/uuid"
)

// StoryTTL is how long a story stays visible before the cleanup job removes it.
const StoryTTL = 24 * time.Hour

// MaxStoriesPerUser caps how many stories one user can have live at once.
const MaxStoriesPerUser = 20

type Story struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID uuid.UUID `gorm:"not null;index" json:"user_id"`
	URL    string    `gorm:"size:255;not null" json:"url"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}
