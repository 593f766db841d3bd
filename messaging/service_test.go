package messaging

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vibralabs/vibra_backend/apperrors"
	"github.com/vibralabs/vibra_backend/models"
)

// memoryStore is the test double for Store. It mirrors the postgres
// implementation's guarantees: pair-key uniqueness and the created_at guard on
// the lastMessage projection.
type memoryStore struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]*models.Conversation
	messages      map[uuid.UUID]*models.Message
	messageOrder  []uuid.UUID
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		conversations: make(map[uuid.UUID]*models.Conversation),
		messages:      make(map[uuid.UUID]*models.Message),
	}
}

func (s *memoryStore) CreateConversation(_ context.Context, conv *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv.PairKey != nil {
		for _, existing := range s.conversations {
			if existing.PairKey != nil && *existing.PairKey == *conv.PairKey {
				return ErrDuplicatePair
			}
		}
	}
	conv.ID = uuid.New()
	now := time.Now()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	copied := *conv
	s.conversations[conv.ID] = &copied
	return nil
}

func (s *memoryStore) FindDirectByPairKey(_ context.Context, pairKey string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conv := range s.conversations {
		if conv.Type == models.ConversationTypeDM && conv.PairKey != nil && *conv.PairKey == pairKey {
			copied := *conv
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) GetConversation(_ context.Context, id uuid.UUID) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, nil
	}
	copied := *conv
	return &copied, nil
}

func (s *memoryStore) ListConversationsForUser(_ context.Context, userID string) ([]models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Conversation
	for _, conv := range s.conversations {
		if conv.HasParticipant(userID) {
			out = append(out, *conv)
		}
	}
	return out, nil
}

func (s *memoryStore) CreateMessage(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = uuid.New()
	copied := *msg
	s.messages[msg.ID] = &copied
	s.messageOrder = append(s.messageOrder, msg.ID)
	return nil
}

func (s *memoryStore) ListMessages(_ context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for _, id := range s.messageOrder {
		if msg := s.messages[id]; msg.ConversationID == conversationID {
			out = append(out, *msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryStore) SetLastMessage(_ context.Context, conversationID uuid.UUID, proj models.LastMessage) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[conversationID]
	if !ok {
		return false, nil
	}
	if conv.LastMessage != nil && conv.LastMessage.CreatedAt.After(proj.CreatedAt) {
		return true, nil
	}
	conv.LastMessage = &proj
	conv.UpdatedAt = time.Now()
	return true, nil
}

func (s *memoryStore) UpdateMessageStatus(_ context.Context, messageID uuid.UUID, status string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[messageID]
	if !ok {
		return nil, nil
	}
	msg.Status = status
	copied := *msg
	return &copied, nil
}

func TestFindOrCreateDirectIsOrderInsensitive(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	first, created, err := svc.FindOrCreateDirect(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.ConversationTypeDM, first.Type)
	assert.Equal(t, []string{"alice", "bob"}, first.Participants)
	assert.Nil(t, first.LastMessage)

	second, created, err := svc.FindOrCreateDirect(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestFindOrCreateDirectRejectsBadParticipants(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	_, _, err := svc.FindOrCreateDirect(ctx, "", "bob")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))

	_, _, err = svc.FindOrCreateDirect(ctx, "alice", "alice")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}

func TestFindOrCreateDirectConcurrentCreatesSingleConversation(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	const callers = 16
	ids := make([]uuid.UUID, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := "alice", "bob"
			if i%2 == 1 {
				a, b = b, a
			}
			conv, _, err := svc.FindOrCreateDirect(ctx, a, b)
			if assert.NoError(t, err) {
				ids[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
	assert.Len(t, store.conversations, 1)
}

func TestCreateMessageUpdatesProjection(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	conv, _, err := svc.FindOrCreateDirect(ctx, "alice", "bob")
	require.NoError(t, err)
	before := conv.UpdatedAt

	msg, err := svc.CreateMessage(ctx, conv.ID, "alice", map[string]interface{}{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, models.MessageStatusSent, msg.Status)
	assert.Equal(t, "alice", msg.SenderID)

	got, err := svc.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastMessage)
	assert.Equal(t, msg.ID, got.LastMessage.MessageID)
	assert.Equal(t, "alice", got.LastMessage.SenderID)
	assert.Equal(t, "hi", got.LastMessage.Text)
	assert.False(t, got.UpdatedAt.Before(before))
}

func TestCreateMessageProjectionFollowsLatest(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	conv, _, err := svc.FindOrCreateDirect(ctx, "alice", "bob")
	require.NoError(t, err)

	_, err = svc.CreateMessage(ctx, conv.ID, "alice", map[string]interface{}{"text": "first"})
	require.NoError(t, err)
	second, err := svc.CreateMessage(ctx, conv.ID, "bob", map[string]interface{}{"text": "second"})
	require.NoError(t, err)

	got, err := svc.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastMessage)
	assert.Equal(t, second.ID, got.LastMessage.MessageID)
	assert.Equal(t, "second", got.LastMessage.Text)
}

func TestSetLastMessageIgnoresStaleProjection(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	conv, _, err := svc.FindOrCreateDirect(ctx, "alice", "bob")
	require.NoError(t, err)

	latest, err := svc.CreateMessage(ctx, conv.ID, "alice", map[string]interface{}{"text": "latest"})
	require.NoError(t, err)

	// A concurrent ingest that committed its row first but carries an earlier
	// timestamp must not win the projection.
	updated, err := store.SetLastMessage(ctx, conv.ID, models.LastMessage{
		MessageID: uuid.New(),
		SenderID:  "bob",
		Text:      "stale",
		CreatedAt: latest.CreatedAt.Add(-time.Second),
	})
	require.NoError(t, err)
	assert.True(t, updated)

	got, err := svc.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, latest.ID, got.LastMessage.MessageID)
	assert.Equal(t, "latest", got.LastMessage.Text)
}

func TestCreateMessageRejectsEmptyBody(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	conv, _, err := svc.FindOrCreateDirect(ctx, "alice", "bob")
	require.NoError(t, err)

	_, err = svc.CreateMessage(ctx, conv.ID, "alice", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
	assert.Empty(t, store.messages)
}

// Documents current behavior: a message aimed at a missing conversation is
// still persisted and only the projection update is skipped.
func TestCreateMessageMissingConversationSkipsProjection(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	msg, err := svc.CreateMessage(ctx, uuid.New(), "alice", map[string]interface{}{"text": "orphan"})
	require.NoError(t, err)
	assert.Len(t, store.messages, 1)
	assert.Equal(t, models.MessageStatusSent, msg.Status)
}

func TestUpdateStatus(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	conv, _, err := svc.FindOrCreateDirect(ctx, "alice", "bob")
	require.NoError(t, err)
	msg, err := svc.CreateMessage(ctx, conv.ID, "alice", map[string]interface{}{"text": "hi"})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, msg.ID, models.MessageStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.MessageStatusDelivered, updated.Status)

	updated, err = svc.UpdateStatus(ctx, msg.ID, models.MessageStatusRead)
	require.NoError(t, err)
	assert.Equal(t, models.MessageStatusRead, updated.Status)
}

func TestUpdateStatusRejectsInvalidValues(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, uuid.New(), models.MessageStatusSent)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))

	_, err = svc.UpdateStatus(ctx, uuid.New(), "seen")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}

func TestUpdateStatusUnknownMessage(t *testing.T) {
	svc := NewService(newMemoryStore())

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), models.MessageStatusRead)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestListMessagesPaginatesWithoutHidingNewest(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	conv, _, err := svc.FindOrCreateDirect(ctx, "alice", "bob")
	require.NoError(t, err)

	const total = DefaultPageSize + 1
	base := time.Now()
	for i := 0; i < total; i++ {
		err := store.CreateMessage(ctx, &models.Message{
			ConversationID: conv.ID,
			SenderID:       "alice",
			Body:           map[string]interface{}{"text": fmt.Sprintf("m%d", i)},
			Status:         models.MessageStatusSent,
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	first, err := svc.ListMessages(ctx, conv.ID, 1, 0)
	require.NoError(t, err)
	require.Len(t, first, DefaultPageSize)
	assert.Equal(t, "m0", first[0].Text())
	assert.Equal(t, fmt.Sprintf("m%d", DefaultPageSize-1), first[len(first)-1].Text())

	// The overflow message must stay reachable on the next page.
	second, err := svc.ListMessages(ctx, conv.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, fmt.Sprintf("m%d", total-1), second[0].Text())

	// A caller-supplied page size covers everything in one go.
	all, err := svc.ListMessages(ctx, conv.ID, 1, total)
	require.NoError(t, err)
	assert.Len(t, all, total)
}

func TestListConversationsForUser(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()

	_, _, err := svc.FindOrCreateDirect(ctx, "alice", "bob")
	require.NoError(t, err)
	_, _, err = svc.FindOrCreateDirect(ctx, "alice", "carol")
	require.NoError(t, err)
	_, err = svc.CreateGroup(ctx, []string{"bob", "carol", "dave"})
	require.NoError(t, err)

	convs, err := svc.ListConversations(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, convs, 2)

	convs, err = svc.ListConversations(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, convs, 2)

	convs, err = svc.ListConversations(ctx, "dave")
	require.NoError(t, err)
	assert.Len(t, convs, 1)
}
