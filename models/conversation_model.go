package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ConversationTypeDM    = "dm"
	ConversationTypeGroup = "group"
)

// LastMessage is the denormalized projection of the most recent message in a
// conversation, kept on the conversation row for cheap list rendering.
type LastMessage struct {
	MessageID uuid.UUID `json:"id"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type Conversation struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Participants []string  `gorm:"serializer:json;not null" json:"participants"`
	Type         string    `gorm:"size:10;not null;default:'dm'" json:"type"`

	// PairKey is "min:max" of the two participant ids for dm conversations and
	// NULL for groups. The unique index is what makes find-or-create race-free.
	PairKey *string `gorm:"size:520;uniqueIndex" json:"-"`

	LastMessage *LastMessage `gorm:"embedded;embeddedPrefix:last_message_" json:"lastMessage"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
