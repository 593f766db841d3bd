package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vibralabs/vibra_backend/handlers"
	"github.com/vibralabs/vibra_backend/middleware"
)

func PostRoutes(app *fiber.App) {
	posts := app.Group("/api/v1/posts")

	posts.Get("", handlers.GetFeed)
	posts.Get("/stories", handlers.GetStoriesTray)
	posts.Get("/:id", handlers.GetPost)

	posts.Post("", middleware.Protected(), handlers.CreatePost)
	posts.Patch("/:id", middleware.Protected(), handlers.UpdatePost)
	posts.Delete("/:id", middleware.Protected(), handlers.DeletePost)
	posts.Post("/:id/like", middleware.Protected(), handlers.LikePost)
	posts.Post("/:id/comments", middleware.Protected(), handlers.CommentOnPost)
}
