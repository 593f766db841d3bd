package main

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"github.com/vibralabs/vibra_backend/apperrors"
	config "github.com/vibralabs/vibra_backend/configs"
	"github.com/vibralabs/vibra_backend/database"
	"github.com/vibralabs/vibra_backend/handlers"
	"github.com/vibralabs/vibra_backend/jobs"
	"github.com/vibralabs/vibra_backend/routes"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	handlers.InitServices()

	c := cron.New()
	c.AddFunc("*/10 * * * *", jobs.PurgeExpiredStories)
	go c.Start()
	log.Println("✅ Cron job for story expiry scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "Vibra",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				code = appErr.Code.HTTPStatus()
				log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
				return c.Status(code).JSON(fiber.Map{
					"error": appErr.Message,
					"code":  appErr.Code,
				})
			}
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Vibra API",
		})
	})

	app.Static("/uploads", handlers.UploadDir())

	routes.AuthRoutes(app)
	routes.PostRoutes(app)
	routes.MessagingRoutes(app)
	routes.UploadRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	port := config.ConfigOr("PORT", "8080")
	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
