package controller

import (
	"errors"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"

	"looma/ai"
	"looma/config"
	"looma/gmail"
	"looma/models"
	"looma/token"
	"looma/utils"
)

type GenerateEmailRequest struct {
	Preferences ai.Preferences `json:"preferences"`
}

type SendEmailRequest struct {
	To      string `json:"to" validate:"required"`
	Cc      string `json:"cc"`
	Bcc     string `json:"bcc"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

// GenerateEmail handles POST /generateEmail: drafts a subject and body
// from the user's preferences, falling back to a deterministic template
// when the AI call fails.
func GenerateEmail(c *fiber.Ctx) error {
	var req GenerateEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req.Preferences); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	user := c.Locals("user").(*models.User)
	client := ai.NewClient(config.AppConfig.AI.APIKey, config.AppConfig.AI.Model, config.AppConfig.AI.BaseURL)

	subject, body, err := client.ComposeEmail(c.UserContext(), req.Preferences)
	if err != nil {
		utils.LogEvent("compose_fallback", map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		})
		subject, body = ai.FallbackEmail(req.Preferences)
	}

	return c.JSON(fiber.Map{
		"subject": subject,
		"body":    body,
	})
}

// SendEmail handles POST /sendEmail: validates recipients, builds the
// MIME message, and sends it through Gmail.
func SendEmail(c *fiber.Ctx) error {
	var req SendEmailRequest
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

	for _, field := range []struct {
		name  string
		value string
	}{{"to", req.To}, {"cc", req.Cc}, {"bcc", req.Bcc}} {
		for _, addr := range splitAddresses(field.value) {
			if err := checkmail.ValidateFormat(addr); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid " + field.name + " address: " + addr,
				})
			}
		}
	}

	tok, err := token.NewStore(config.AppConfig.TokenFile).Load()
	if err != nil {
		if errors.Is(err, token.ErrNotFound) || errors.Is(err, token.ErrInvalid) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Google authentication required. Please visit /auth to connect your account.",
			})
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load credentials", err)
	}

	user := c.Locals("user").(*models.User)
	mail, err := gmail.NewClient(c.UserContext(), config.GoogleOAuth(), tok)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to connect to Gmail", err)
	}

	raw, err := utils.BuildMessage(req.To, req.Cc, req.Bcc, req.Subject, req.Body)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build message",
		})
	}

	if err := mail.Send(c.UserContext(), raw); err != nil {
		utils.LogError("email_send", err, map[string]interface{}{
			"user_id": user.ID,
			"to":      req.To,
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to send email", err)
	}

	utils.LogEvent("email_sent", map[string]interface{}{
		"user_id": user.ID,
		"to":      req.To,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Email sent successfully",
	})
}

// splitAddresses splits a comma-separated recipient list, dropping
// empties.
func splitAddresses(list string) []string {
	if list == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	addrs := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			addrs = append(addrs, trimmed)
		}
	}
	return addrs
}
