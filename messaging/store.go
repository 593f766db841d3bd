package messaging

import (
	"context"

	"github.com/google/uuid"
	"github.com/vibralabs/vibra_backend/models"
)

// Store is the persistence port for the messaging core. The shipped
// implementation is GormStore; tests inject an in-memory fake.
type Store interface {
	// CreateConversation inserts the conversation. For dm conversations the
	// pair key must be unique; a duplicate insert returns ErrDuplicatePair.
	CreateConversation(ctx context.Context, conv *models.Conversation) error

	// FindDirectByPairKey returns the dm conversation for the pair key, or
	// nil when none exists.
	FindDirectByPairKey(ctx context.Context, pairKey string) (*models.Conversation, error)

	GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)

	// ListConversationsForUser returns every conversation whose participant
	// set contains userID.
	ListConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error)

	CreateMessage(ctx context.Context, msg *models.Message) error

	// ListMessages returns a page of the conversation's messages ascending
	// by CreatedAt. A non-positive limit means no cap.
	ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error)

	// SetLastMessage updates the conversation's lastMessage projection and
	// bumps UpdatedAt, unless the stored projection is already newer than
	// proj.CreatedAt. Returns false when the conversation row does not exist.
	SetLastMessage(ctx context.Context, conversationID uuid.UUID, proj models.LastMessage) (bool, error)

	// UpdateMessageStatus sets the message status and returns the updated
	// message, or nil when no such message exists.
	UpdateMessageStatus(ctx context.Context, messageID uuid.UUID, status string) (*models.Message, error)
}
