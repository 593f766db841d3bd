package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/vibralabs/vibra_backend/apperrors"
	"github.com/vibralabs/vibra_backend/middleware"
	"github.com/vibralabs/vibra_backend/models"
	"github.com/vibralabs/vibra_backend/websocket"
)

func GetUserConversations(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return apperrors.Unauthorized("Unauthorized")
	}

	conversations, err := Messaging.ListConversations(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"conversations": conversations})
}

type CreateConversationRequest struct {
	Participants []string `json:"participants"`
	Type         string   `json:"type"`
}

func CreateOrGetConversation(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req CreateConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if req.Type == "" {
		req.Type = models.ConversationTypeDM
	}

	// Blank entries stand in for the caller, matching what clients send.
	participants := make([]string, 0, len(req.Participants))
	for _, p := range req.Participants {
		if p == "" {
			p = userID
		}
		if p != "" {
			participants = append(participants, p)
		}
	}
	if len(participants) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "participants required"})
	}

	if req.Type == models.ConversationTypeDM {
		if len(participants) != 2 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "dm must have exactly 2 participants"})
		}
		conv, created, err := Messaging.FindOrCreateDirect(c.Context(), participants[0], participants[1])
		if err != nil {
			return err
		}
		status := fiber.StatusOK
		if created {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(conv)
	}

	conv, err := Messaging.CreateGroup(c.Context(), participants)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(conv)
}

func GetConversationMessages(c *fiber.Ctx) error {
	conversationID, err := uuid.Parse(c.Params("conversationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))

	messages, err := Messaging.ListMessages(c.Context(), conversationID, page, pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"messages": messages})
}

type CreateMessageRequest struct {
	Body map[string]interface{} `json:"body"`
}

func CreateConversationMessage(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	conversationID, err := uuid.Parse(c.Params("conversationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	var req CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if len(req.Body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing body"})
	}

	msg, err := Messaging.CreateMessage(c.Context(), conversationID, userID, req.Body)
	if err != nil {
		return err
	}

	websocket.Publish(conversationID, "message", msg)

	return c.Status(fiber.StatusCreated).JSON(msg)
}
