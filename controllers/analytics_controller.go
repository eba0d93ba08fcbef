package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"looma/config"
	"looma/models"
	"looma/store"
)

// DashboardStats handles GET /dashboard-stats.
func DashboardStats(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	stats, err := store.NewEmailStore(config.DB).DashboardStats(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute dashboard stats",
		})
	}

	return c.JSON(stats)
}

// EmailAnalytics handles GET /email-analytics.
func EmailAnalytics(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	analytics, err := store.NewEmailStore(config.DB).Analytics(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute analytics",
		})
	}

	return c.JSON(analytics)
}

// EmailTrends handles GET /email-trends?period=N (days, default 7).
func EmailTrends(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	days, err := strconv.Atoi(c.Query("period", "7"))
	if err != nil || days <= 0 {
		days = 7
	}
	if days > 90 {
		days = 90
	}

	trends, err := store.NewEmailStore(config.DB).Trends(user.ID, days)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute trends",
		})
	}

	return c.JSON(fiber.Map{
		"period": days,
		"trends": trends,
	})
}
