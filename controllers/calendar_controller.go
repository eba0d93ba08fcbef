package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"looma/config"
	"looma/gcal"
	"looma/models"
	"looma/token"
	"looma/utils"
)

// calendarClient loads the stored credential and builds a Calendar
// client, or replies 401 when the user still has to authenticate. A nil
// client means the response has already been written.
func calendarClient(c *fiber.Ctx) (*gcal.Client, error) {
	tok, err := token.NewStore(config.AppConfig.TokenFile).Load()
	if err != nil {
		if errors.Is(err, token.ErrNotFound) || errors.Is(err, token.ErrInvalid) {
			return nil, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Google authentication required. Please visit /auth to connect your account.",
			})
		}
		return nil, utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load credentials", err)
	}

	client, err := gcal.NewClient(c.UserContext(), config.GoogleOAuth(), tok)
	if err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to connect to Calendar", err)
	}
	return client, nil
}

// AddEvent handles POST /addEvent.
func AddEvent(c *fiber.Ctx) error {
	var req gcal.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if !req.Start.Valid() || !req.End.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "start and end times are required",
		})
	}

	client, err := calendarClient(c)
	if client == nil {
		return err
	}

	user := c.Locals("user").(*models.User)
	link, err := client.CreateEvent(c.UserContext(), req)
	if err != nil {
		utils.LogError("calendar_create", err, map[string]interface{}{"user_id": user.ID})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create event", err)
	}

	return c.JSON(fiber.Map{
		"message":   "Event created",
		"eventLink": link,
	})
}

// UpcomingEvents handles GET /upcomingEvents.
func UpcomingEvents(c *fiber.Ctx) error {
	client, err := calendarClient(c)
	if client == nil {
		return err
	}

	user := c.Locals("user").(*models.User)
	events, err := client.ListUpcoming(c.UserContext())
	if err != nil {
		utils.LogError("calendar_list", err, map[string]interface{}{"user_id": user.ID})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list events", err)
	}

	return c.JSON(fiber.Map{"events": events})
}
