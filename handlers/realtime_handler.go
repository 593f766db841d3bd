package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"

	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	config "github.com/vibralabs/vibra_backend/configs"
	"github.com/vibralabs/vibra_backend/websocket"
)

// ClientEvent is the client-to-server websocket envelope. The first frame must
// be an auth event carrying a valid JWT; everything after that is one of
// subscribe, send_message or message_status.
type ClientEvent struct {
	Type           string                 `json:"type"`
	Token          string                 `json:"token,omitempty"`
	ConversationID string                 `json:"conversationId,omitempty"`
	Body           map[string]interface{} `json:"body,omitempty"`
	ClientTempID   string                 `json:"clientTempId,omitempty"`
	MessageID      string                 `json:"messageId,omitempty"`
	Status         string                 `json:"status,omitempty"`
}

type MessageAck struct {
	Type         string `json:"type"`
	OK           bool   `json:"ok"`
	MessageID    string `json:"messageId,omitempty"`
	ClientTempID string `json:"clientTempId,omitempty"`
	Error        string `json:"error,omitempty"`
}

func ServeWs(c *websocketcontrib.Conn) {
	var authMsg ClientEvent
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		log.Printf("WebSocket auth failed: invalid or missing auth message, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		c.Close()
		return
	}

	claims, err := parseToken(authMsg.Token)
	if err != nil {
		log.Printf("WebSocket auth failed: invalid token, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid user ID"})
		c.Close()
		return
	}

	client := &websocket.Client{UserID: userID, Conn: c}
	log.Printf("WebSocket client authenticated: %s", userID)
	defer func() {
		log.Printf("WebSocket client disconnected: %s", userID)
		websocket.Unsubscribe(client)
		c.Close()
	}()

	for {
		var event ClientEvent
		if err := c.ReadJSON(&event); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseAbnormalClosure) {
				log.Printf("WebSocket closed for client %s: %v", userID, err)
			} else {
				log.Printf("WebSocket read error for client %s: %v", userID, err)
			}
			break
		}
		handleClientEvent(client, event)
	}
}

func handleClientEvent(client *websocket.Client, event ClientEvent) {
	switch event.Type {
	case "subscribe":
		conversationID, err := uuid.Parse(event.ConversationID)
		if err != nil {
			_ = client.Send(fiber.Map{"error": "Invalid conversation ID"})
			return
		}
		websocket.Subscribe(client, conversationID)
		_ = client.Send(websocket.Event{Type: "subscribed", ConversationID: conversationID.String()})

	case "send_message":
		handleSendMessage(client, event)

	case "message_status":
		handleMessageStatus(client, event)

	default:
		_ = client.Send(fiber.Map{"error": "Unknown event type"})
	}
}

// handleSendMessage persists the message and fans it out to the room. The ack
// reflects persistence only; fan-out is best effort.
func handleSendMessage(client *websocket.Client, event ClientEvent) {
	conversationID, err := uuid.Parse(event.ConversationID)
	if err != nil || len(event.Body) == 0 {
		_ = client.Send(MessageAck{Type: "ack", OK: false, ClientTempID: event.ClientTempID, Error: "invalid_payload"})
		return
	}

	msg, err := Messaging.CreateMessage(context.Background(), conversationID, client.UserID, event.Body)
	if err != nil {
		_ = client.Send(MessageAck{Type: "ack", OK: false, ClientTempID: event.ClientTempID, Error: err.Error()})
		return
	}

	_ = client.Send(MessageAck{Type: "ack", OK: true, MessageID: msg.ID.String(), ClientTempID: event.ClientTempID})
	websocket.Publish(conversationID, "message", msg)
}

// handleMessageStatus has no ack; a failed lookup is logged and swallowed so a
// stray status update can never take the connection down.
func handleMessageStatus(client *websocket.Client, event ClientEvent) {
	messageID, err := uuid.Parse(event.MessageID)
	if err != nil || event.Status == "" {
		return
	}

	msg, err := Messaging.UpdateStatus(context.Background(), messageID, event.Status)
	if err != nil {
		log.Printf("message_status failed for client %s: %v", client.UserID, err)
		return
	}
	websocket.Publish(msg.ConversationID, "message_status", fiber.Map{
		"messageId": msg.ID.String(),
		"status":    msg.Status,
	})
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Config("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
