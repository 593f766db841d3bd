package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/vibralabs/vibra_backend/database"
	"github.com/vibralabs/vibra_backend/middleware"
	"github.com/vibralabs/vibra_backend/models"
)

const feedLimit = 50

type CreatePostRequest struct {
	Content  string `json:"content"`
	MediaURL string `json:"media_url"`
}

type PostResponse struct {
	models.Post
	Author *models.PublicProfile `json:"author,omitempty"`
}

func CreatePost(c *fiber.Ctx) error {
	authorID, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if strings.TrimSpace(req.Content) == "" && req.MediaURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Empty post not allowed"})
	}

	post := models.Post{
		AuthorID: authorID,
		Content:  req.Content,
		Media:    []models.MediaItem{},
		Likes:    []string{},
		Comments: []models.Comment{},
	}
	if req.MediaURL != "" {
		post.Media = append(post.Media, models.MediaItem{URL: req.MediaURL})
	}
	if err := database.DB.Create(&post).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create post"})
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func GetFeed(c *fiber.Ctx) error {
	q := database.DB.Where("deleted = false").Order("created_at desc").Limit(feedLimit)
	if authorID := c.Query("author_id"); authorID != "" {
		q = q.Where("author_id = ?", authorID)
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch posts"})
	}

	authorIDs := make([]uuid.UUID, 0, len(posts))
	seen := make(map[uuid.UUID]bool)
	for _, p := range posts {
		if !seen[p.AuthorID] {
			seen[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	authors := make(map[uuid.UUID]models.PublicProfile)
	if len(authorIDs) > 0 {
		var users []models.User
		if err := database.DB.Where("id IN ?", authorIDs).Find(&users).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch authors"})
		}
		for i := range users {
			authors[users[i].ID] = users[i].Public()
		}
	}

	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		resp := PostResponse{Post: p}
		if a, ok := authors[p.AuthorID]; ok {
			resp.Author = &a
		}
		out = append(out, resp)
	}
	return c.JSON(out)
}

func GetPost(c *fiber.Ctx) error {
	post, status, errMsg := findPost(c.Params("id"))
	if post == nil {
		return c.Status(status).JSON(fiber.Map{"error": errMsg})
	}
	return c.JSON(post)
}

func UpdatePost(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if strings.TrimSpace(req.Content) == "" && req.MediaURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Empty post not allowed"})
	}

	post, status, errMsg := findPost(c.Params("id"))
	if post == nil {
		return c.Status(status).JSON(fiber.Map{"error": errMsg})
	}
	if post.AuthorID.String() != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	post.Content = req.Content
	if req.MediaURL != "" {
		post.Media = []models.MediaItem{{URL: req.MediaURL}}
	}
	if err := database.DB.Save(post).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update post"})
	}
	return c.JSON(post)
}

// DeletePost soft-deletes; the row stays for moderation but leaves the feed.
func DeletePost(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	post, status, errMsg := findPost(c.Params("id"))
	if post == nil {
		return c.Status(status).JSON(fiber.Map{"error": errMsg})
	}
	if post.AuthorID.String() != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	post.Deleted = true
	if err := database.DB.Save(post).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete post"})
	}
	return c.JSON(fiber.Map{"ok": true})
}

// LikePost toggles the caller's like on the post.
func LikePost(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	post, status, errMsg := findPost(c.Params("id"))
	if post == nil {
		return c.Status(status).JSON(fiber.Map{"error": errMsg})
	}

	liked := false
	likes := make([]string, 0, len(post.Likes)+1)
	for _, id := range post.Likes {
		if id == userID {
			liked = true
			continue
		}
		likes = append(likes, id)
	}
	if !liked {
		likes = append(likes, userID)
	}
	post.Likes = likes

	if err := database.DB.Save(post).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update likes"})
	}
	return c.JSON(fiber.Map{"liked": !liked, "likes_count": len(post.Likes)})
}

func CommentOnPost(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	type CommentRequest struct {
		Text string `json:"text" validate:"required"`
	}
	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	post, status, errMsg := findPost(c.Params("id"))
	if post == nil {
		return c.Status(status).JSON(fiber.Map{"error": errMsg})
	}

	comment := models.Comment{AuthorID: userID, Text: req.Text, CreatedAt: time.Now()}
	post.Comments = append(post.Comments, comment)
	if err := database.DB.Save(post).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add comment"})
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func findPost(id string) (*models.Post, int, string) {
	postID, err := uuid.Parse(id)
	if err != nil {
		return nil, fiber.StatusBadRequest, "Invalid post ID"
	}
	var post models.Post
	if err := database.DB.Where("id = ? AND deleted = false", postID).First(&post).Error; err != nil {
		return nil, fiber.StatusNotFound, "Post not found"
	}
	return &post, fiber.StatusOK, ""
}
