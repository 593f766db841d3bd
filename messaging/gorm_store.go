package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vibralabs/vibra_backend/models"
	"gorm.io/gorm"
)

// ErrDuplicatePair signals that a dm conversation for the same pair key was
// inserted concurrently. Callers convert it into a lookup.
var ErrDuplicatePair = errors.New("conversation already exists for pair")

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	if err := s.db.WithContext(ctx).Create(conv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePair
		}
		return err
	}
	return nil
}

func (s *GormStore) FindDirectByPairKey(ctx context.Context, pairKey string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).
		Where("type = ? AND pair_key = ?", models.ConversationTypeDM, pairKey).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

func (s *GormStore) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

func (s *GormStore) ListConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.db.WithContext(ctx).
		Where("jsonb_exists(participants::jsonb, ?)", userID).
		Find(&convs).Error
	return convs, err
}

func (s *GormStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	return s.db.WithContext(ctx).Create(msg).Error
}

func (s *GormStore) ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	var msgs []models.Message
	q := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	err := q.Find(&msgs).Error
	return msgs, err
}

func (s *GormStore) SetLastMessage(ctx context.Context, conversationID uuid.UUID, proj models.LastMessage) (bool, error) {
	// The created_at guard keeps the projection last-write-wins: a message
	// that committed later can never be overwritten by an earlier one.
	res := s.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ? AND (last_message_created_at IS NULL OR last_message_created_at <= ?)",
			conversationID, proj.CreatedAt).
		Updates(map[string]interface{}{
			"last_message_message_id": proj.MessageID,
			"last_message_sender_id":  proj.SenderID,
			"last_message_text":       proj.Text,
			"last_message_created_at": proj.CreatedAt,
			"updated_at":              time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	// Zero rows means either the conversation is gone or a newer projection
	// is already in place; only the former counts as "not updated".
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", conversationID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) UpdateMessageStatus(ctx context.Context, messageID uuid.UUID, status string) (*models.Message, error) {
	res := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ?", messageID).
		Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	var msg models.Message
	if err := s.db.WithContext(ctx).Where("id = ?", messageID).First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}
