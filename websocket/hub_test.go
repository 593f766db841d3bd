package websocket

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorderConn struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorderConn) WriteJSON(v interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, v.(Event))
	return nil
}

func (r *recorderConn) received() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func newTestClient(userID string) (*Client, *recorderConn) {
	conn := &recorderConn{}
	return &Client{UserID: userID, Conn: conn}, conn
}

func TestPublishReachesAllSubscribersIncludingSender(t *testing.T) {
	convID := uuid.New()
	alice, aliceConn := newTestClient("alice")
	bob, bobConn := newTestClient("bob")
	defer Unsubscribe(alice)
	defer Unsubscribe(bob)

	Subscribe(alice, convID)
	Subscribe(bob, convID)

	Publish(convID, "message", map[string]string{"text": "hi"})

	for _, conn := range []*recorderConn{aliceConn, bobConn} {
		events := conn.received()
		require.Len(t, events, 1)
		assert.Equal(t, "message", events[0].Type)
		assert.Equal(t, convID.String(), events[0].ConversationID)
	}
}

func TestPublishDoesNotLeakAcrossRooms(t *testing.T) {
	convA := uuid.New()
	convB := uuid.New()
	alice, aliceConn := newTestClient("alice")
	bob, bobConn := newTestClient("bob")
	defer Unsubscribe(alice)
	defer Unsubscribe(bob)

	Subscribe(alice, convA)
	Subscribe(bob, convB)

	Publish(convA, "message", nil)

	assert.Len(t, aliceConn.received(), 1)
	assert.Empty(t, bobConn.received())
}

func TestSubscribeIsIdempotent(t *testing.T) {
	convID := uuid.New()
	alice, aliceConn := newTestClient("alice")
	defer Unsubscribe(alice)

	Subscribe(alice, convID)
	Subscribe(alice, convID)
	assert.Equal(t, 1, RoomSize(convID))

	Publish(convID, "message", nil)
	assert.Len(t, aliceConn.received(), 1)
}

func TestUnsubscribeLeavesAllRooms(t *testing.T) {
	convA := uuid.New()
	convB := uuid.New()
	alice, aliceConn := newTestClient("alice")

	Subscribe(alice, convA)
	Subscribe(alice, convB)
	Unsubscribe(alice)

	assert.Equal(t, 0, RoomSize(convA))
	assert.Equal(t, 0, RoomSize(convB))

	Publish(convA, "message", nil)
	Publish(convB, "message_status", nil)
	assert.Empty(t, aliceConn.received())
}

func TestConcurrentSubscribeIsSafe(t *testing.T) {
	convID := uuid.New()

	const clients = 32
	all := make([]*Client, clients)
	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		client, _ := newTestClient("user")
		all[i] = client
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			Subscribe(c, convID)
		}(client)
	}
	wg.Wait()

	assert.Equal(t, clients, RoomSize(convID))
	for _, c := range all {
		Unsubscribe(c)
	}
	assert.Equal(t, 0, RoomSize(convID))
}
