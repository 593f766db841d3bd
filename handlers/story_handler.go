package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/vibralabs/vibra_backend/database"
	"github.com/vibralabs/vibra_backend/middleware"
	"github.com/vibralabs/vibra_backend/models"
	"gorm.io/gorm"
)

const storiesTrayLimit = 50

type StoryResponse struct {
	models.Story
	Author models.PublicProfile `json:"author"`
}

type CreateStoryRequest struct {
	URL string `json:"url" validate:"required"`
}

// CreateStory publishes a story that stays visible for the story TTL. Each
// user keeps at most MaxStoriesPerUser live; older ones are dropped on write.
func CreateStory(c *fiber.Ctx) error {
	userID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req CreateStoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	story := models.Story{
		UserID:    userID,
		URL:       req.URL,
		ExpiresAt: time.Now().Add(models.StoryTTL),
	}
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&story).Error; err != nil {
			return err
		}
		// Trim beyond the per-user cap, oldest first.
		var ids []uuid.UUID
		if err := tx.Model(&models.Story{}).
			Where("user_id = ?", userID).
			Order("created_at desc").
			Offset(models.MaxStoriesPerUser).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			return tx.Delete(&models.Story{}, "id IN ?", ids).Error
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create story"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"story": StoryResponse{Story: story, Author: user.Public()},
	})
}

// GetStoriesTray lists unexpired stories across users, newest first.
func GetStoriesTray(c *fiber.Ctx) error {
	var stories []models.Story
	err := database.DB.
		Where("expires_at > ?", time.Now()).
		Order("created_at desc").
		Limit(storiesTrayLimit).
		Find(&stories).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch stories"})
	}

	userIDs := make([]uuid.UUID, 0, len(stories))
	seen := make(map[uuid.UUID]bool)
	for _, s := range stories {
		if !seen[s.UserID] {
			seen[s.UserID] = true
			userIDs = append(userIDs, s.UserID)
		}
	}

	authors := make(map[uuid.UUID]models.PublicProfile)
	if len(userIDs) > 0 {
		var users []models.User
		if err := database.DB.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch authors"})
		}
		for i := range users {
			authors[users[i].ID] = users[i].Public()
		}
	}

	out := make([]StoryResponse, 0, len(stories))
	for _, s := range stories {
		out = append(out, StoryResponse{Story: s, Author: authors[s.UserID]})
	}
	return c.JSON(out)
}

// DeleteStory removes one of the caller's own stories.
func DeleteStory(c *fiber.Ctx) error {
	userID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	storyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid story ID"})
	}

	res := database.DB.Delete(&models.Story{}, "id = ? AND user_id = ?", storyID, userID)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete story"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Story not found"})
	}
	return c.JSON(fiber.Map{"ok": true})
}
