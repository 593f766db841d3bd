package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
)

type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ConversationID uuid.UUID `gorm:"not null;index:idx_messages_conversation_created,priority:1" json:"conversationId"`
	SenderID       string    `gorm:"size:255;not null" json:"senderId"`

	// Body is an opaque client payload; only "text" is read for the projection.
	Body map[string]interface{} `gorm:"serializer:json" json:"body"`

	Status string `gorm:"size:10;not null;default:'sent'" json:"status"`

	CreatedAt time.Time `gorm:"index:idx_messages_conversation_created,priority:2" json:"createdAt"`
}

// Text returns the projection text of the body, or "" when the body has none.
func (m *Message) Text() string {
	if m.Body == nil {
		return ""
	}
	if t, ok := m.Body["text"].(string); ok {
		return t
	}
	return ""
}
