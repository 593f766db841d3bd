package messaging

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/vibralabs/vibra_backend/apperrors"
	"github.com/vibralabs/vibra_backend/models"
	"github.com/vibralabs/vibra_backend/utils"
)

// DefaultPageSize bounds how many messages a single listing page returns.
const DefaultPageSize = 50

// Service implements the messaging core: conversation resolution, message
// ingest with the lastMessage projection, and delivery-status updates.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// FindOrCreateDirect returns the single dm conversation for the unordered pair
// {userA, userB}, creating it when none exists. The second return value is
// true when a new conversation was created.
func (s *Service) FindOrCreateDirect(ctx context.Context, userA, userB string) (*models.Conversation, bool, error) {
	if userA == "" || userB == "" {
		return nil, false, apperrors.InvalidArg("both participants are required")
	}
	if userA == userB {
		return nil, false, apperrors.InvalidArg("dm participants must be two distinct users")
	}

	pairKey := utils.PairKey(userA, userB)
	existing, err := s.store.FindDirectByPairKey(ctx, pairKey)
	if err != nil {
		return nil, false, apperrors.Wrap(apperrors.CodeInternal, "conversation lookup failed", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	conv := &models.Conversation{
		Participants: []string{userA, userB},
		Type:         models.ConversationTypeDM,
		PairKey:      &pairKey,
	}
	err = s.store.CreateConversation(ctx, conv)
	if err == nil {
		return conv, true, nil
	}
	if !errors.Is(err, ErrDuplicatePair) {
		return nil, false, apperrors.Wrap(apperrors.CodeInternal, "conversation create failed", err)
	}

	// Lost the create race; the winner's row must be there now.
	existing, lookupErr := s.store.FindDirectByPairKey(ctx, pairKey)
	if lookupErr != nil || existing == nil {
		return nil, false, apperrors.Wrap(apperrors.CodeInternal, "conversation lookup after conflict failed", lookupErr)
	}
	return existing, false, nil
}

// CreateGroup creates a group conversation with the given participants,
// preserving their order for display.
func (s *Service) CreateGroup(ctx context.Context, participants []string) (*models.Conversation, error) {
	if len(participants) == 0 {
		return nil, apperrors.InvalidArg("participants required")
	}
	conv := &models.Conversation{
		Participants: participants,
		Type:         models.ConversationTypeGroup,
	}
	if err := s.store.CreateConversation(ctx, conv); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "conversation create failed", err)
	}
	return conv, nil
}

func (s *Service) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	if userID == "" {
		return nil, apperrors.InvalidArg("user id required")
	}
	convs, err := s.store.ListConversationsForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "conversation listing failed", err)
	}
	return convs, nil
}

func (s *Service) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	conv, err := s.store.GetConversation(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "conversation lookup failed", err)
	}
	if conv == nil {
		return nil, apperrors.NotFound("conversation not found")
	}
	return conv, nil
}

// CreateMessage persists a message with status "sent" and refreshes the owning
// conversation's lastMessage projection. A message aimed at a conversation
// that no longer exists is still persisted and the projection update is
// skipped; that mirrors the historical contract clients rely on.
func (s *Service) CreateMessage(ctx context.Context, conversationID uuid.UUID, senderID string, body map[string]interface{}) (*models.Message, error) {
	if len(body) == 0 {
		return nil, apperrors.InvalidArg("message body required")
	}
	if senderID == "" {
		return nil, apperrors.InvalidArg("sender id required")
	}

	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		Status:         models.MessageStatusSent,
		CreatedAt:      time.Now(),
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "message create failed", err)
	}

	updated, err := s.store.SetLastMessage(ctx, conversationID, models.LastMessage{
		MessageID: msg.ID,
		SenderID:  msg.SenderID,
		Text:      msg.Text(),
		CreatedAt: msg.CreatedAt,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "lastMessage update failed", err)
	}
	if !updated {
		log.Printf("lastMessage update skipped: conversation %s not found for message %s", conversationID, msg.ID)
	}
	return msg, nil
}

// ListMessages returns one page of a conversation's messages, ascending by
// CreatedAt. Page numbering starts at 1; out-of-range values fall back to the
// first page and the default page size.
func (s *Service) ListMessages(ctx context.Context, conversationID uuid.UUID, page, pageSize int) ([]models.Message, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	msgs, err := s.store.ListMessages(ctx, conversationID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "message listing failed", err)
	}
	return msgs, nil
}

// UpdateStatus moves a message to "delivered" or "read". Transitions are not
// checked for monotonicity; clients only ever advance, and the stored value is
// whatever arrived last.
func (s *Service) UpdateStatus(ctx context.Context, messageID uuid.UUID, status string) (*models.Message, error) {
	if status != models.MessageStatusDelivered && status != models.MessageStatusRead {
		return nil, apperrors.InvalidArg("status must be delivered or read")
	}
	msg, err := s.store.UpdateMessageStatus(ctx, messageID, status)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "status update failed", err)
	}
	if msg == nil {
		return nil, apperrors.NotFound("message not found")
	}
	return msg, nil
}
