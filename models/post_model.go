package models

import (
	"time"

	"github.com/google/uuid"
)

type MediaItem struct {
	URL       string `json:"url"`
	MediaType string `json:"media_type,omitempty"`
}

type Comment struct {
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Post struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AuthorID uuid.UUID `gorm:"not null;index" json:"author_id"`
	Content  string    `gorm:"type:text" json:"content"`

	Media    []MediaItem `gorm:"serializer:json" json:"media"`
	Likes    []string    `gorm:"serializer:json" json:"likes"`
	Comments []Comment   `gorm:"serializer:json" json:"comments"`
	Shares   int         `gorm:"default:0" json:"shares"`

	Deleted bool `gorm:"default:false;index" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
