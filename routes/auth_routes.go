package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vibralabs/vibra_backend/handlers"
	"github.com/vibralabs/vibra_backend/middleware"
)

func AuthRoutes(app *fiber.App) {
	auth := app.Group("/api/v1/auth")

	auth.Post("/signup", handlers.SignupUser)
	auth.Post("/login", handlers.LoginUser)

	auth.Get("/me", middleware.Protected(), handlers.GetMe)
	auth.Patch("/me", middleware.Protected(), handlers.UpdateMe)
	auth.Post("/follow/:id", middleware.Protected(), handlers.FollowUser)
	auth.Post("/unfollow/:id", middleware.Protected(), handlers.UnfollowUser)

	auth.Post("/avatar", middleware.Protected(), handlers.UploadAvatar)
	auth.Post("/story", middleware.Protected(), handlers.CreateStory)
	auth.Delete("/story/:id", middleware.Protected(), handlers.DeleteStory)
}
