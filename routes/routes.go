package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	controller "looma/controllers"
	"looma/middleware"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Google OAuth consent flow; the callback writes the credential file
	auth.Get("/", controller.GoogleOAuth)
	auth.Get("/google", controller.GoogleOAuth)
	auth.Get("/google/callback", controller.GoogleOAuthCallback)

	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Get("/me", controller.GetCurrentUser)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	api := app.Group("", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	api.Get("/checkGoogleAuth", controller.CheckGoogleAuth)

	// Summarization pipeline, optionally rate limited
	api.Get("/summary", middleware.SummaryRateLimiter(), controller.SummarizeEmails)

	// Stored emails and trash lifecycle
	api.Get("/fetchEmails", controller.FetchEmails)
	api.Get("/fetchTrashedEmails", controller.FetchTrashedEmails)
	api.Post("/isRead", controller.SetRead)
	api.Post("/moveToTrash", controller.MoveToTrash)
	api.Post("/restoreEmail", controller.RestoreEmail)
	api.Post("/permanentlyDeleteEmail", controller.PermanentlyDeleteEmail)
	api.Post("/emptyTrash", controller.EmptyTrash)

	// Aggregates
	api.Get("/dashboard-stats", controller.DashboardStats)
	api.Get("/email-analytics", controller.EmailAnalytics)
	api.Get("/email-trends", controller.EmailTrends)

	// Calendar
	api.Post("/addEvent", controller.AddEvent)
	api.Get("/upcomingEvents", controller.UpcomingEvents)

	// Composition and sending
	api.Post("/generateEmail", controller.GenerateEmail)
	api.Post("/sendEmail", controller.SendEmail)

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(app, db)
	SetupAPIRoutes(app, db)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
