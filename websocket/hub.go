package websocket

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Conn is the slice of a websocket connection the hub needs. Satisfied by
// *websocket.Conn from gofiber/contrib; tests substitute a recorder.
type Conn interface {
	WriteJSON(v interface{}) error
}

// Client is one live websocket connection tagged with its verified user.
type Client struct {
	UserID string
	Conn   Conn

	mu sync.Mutex
}

// Send writes a JSON payload to the client. Writes are serialized because both
// the read loop (acks) and publishers (fan-out) target the same connection.
func (c *Client) Send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(v)
}

// Event is the server-to-client envelope.
type Event struct {
	Type           string      `json:"type"`
	ConversationID string      `json:"conversationId,omitempty"`
	Payload        interface{} `json:"payload,omitempty"`
}

var roomsMu sync.RWMutex
var rooms = make(map[uuid.UUID]map[*Client]bool)

// Subscribe joins the client to the conversation's broadcast room. Idempotent.
func Subscribe(client *Client, conversationID uuid.UUID) {
	roomsMu.Lock()
	defer roomsMu.Unlock()
	room, ok := rooms[conversationID]
	if !ok {
		room = make(map[*Client]bool)
		rooms[conversationID] = room
	}
	room[client] = true
}

// Unsubscribe removes the client from every room it joined. Called on
// disconnect.
func Unsubscribe(client *Client) {
	roomsMu.Lock()
	defer roomsMu.Unlock()
	for conversationID, room := range rooms {
		if room[client] {
			delete(room, client)
			if len(room) == 0 {
				delete(rooms, conversationID)
			}
		}
	}
}

// Publish delivers an event to every subscriber of the conversation, the
// originating connection included. Delivery is best effort; a failed write
// only logs.
func Publish(conversationID uuid.UUID, eventType string, payload interface{}) {
	roomsMu.RLock()
	members := make([]*Client, 0, len(rooms[conversationID]))
	for client := range rooms[conversationID] {
		members = append(members, client)
	}
	roomsMu.RUnlock()

	event := Event{Type: eventType, ConversationID: conversationID.String(), Payload: payload}
	for _, client := range members {
		if err := client.Send(event); err != nil {
			log.Printf("Error sending %s to client %s: %v", eventType, client.UserID, err)
		}
	}
}

// RoomSize reports the current subscriber count of a conversation.
func RoomSize(conversationID uuid.UUID) int {
	roomsMu.RLock()
	defer roomsMu.RUnlock()
	return len(rooms[conversationID])
}
