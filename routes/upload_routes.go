package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vibralabs/vibra_backend/handlers"
	"github.com/vibralabs/vibra_backend/middleware"
)

func UploadRoutes(app *fiber.App) {
	uploads := app.Group("/api/v1/uploads", middleware.Protected())

	uploads.Post("", handlers.UploadFile)
	uploads.Get("/signature", handlers.GenerateUploadSignature)
}
