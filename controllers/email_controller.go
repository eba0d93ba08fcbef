package controller

import (
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"looma/config"
	"looma/models"
	"looma/store"
)

type SetReadRequest struct {
	EmailID string `json:"emailId" validate:"required"`
	Read    *bool  `json:"read" validate:"required"`
}

type EmailActionRequest struct {
	EmailID string `json:"emailId" validate:"required"`
}

// FetchEmails handles GET /fetchEmails: the user's active emails,
// newest first.
func FetchEmails(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	emails, err := store.NewEmailStore(config.DB).ListActive(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch emails",
		})
	}

	return c.JSON(emails)
}

// TrashedEmail is one trash-view row: the stored email plus a short
// snippet of its summary for the list rendering.
type TrashedEmail struct {
	models.Email
	Snippet string `json:"snippet"`
}

// FetchTrashedEmails handles GET /fetchTrashedEmails.
func FetchTrashedEmails(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	emails, err := store.NewEmailStore(config.DB).ListTrashed(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch trashed emails",
		})
	}

	return c.JSON(trashedEmails(emails))
}

func trashedEmails(emails []models.Email) []TrashedEmail {
	out := make([]TrashedEmail, 0, len(emails))
	for _, e := range emails {
		out = append(out, TrashedEmail{Email: e, Snippet: summarySnippet(e.Summary)})
	}
	return out
}

// summarySnippet takes the first 100 characters of the summary, cutting
// on a rune boundary so multi-byte text stays valid.
func summarySnippet(summary string) string {
	const limit = 100
	if len(summary) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(summary[cut]) {
			cut--
		}
		summary = summary[:cut]
	}
	return summary + "..."
}

// SetRead handles POST /isRead: toggles the read flag on one email.
func SetRead(c *fiber.Ctx) error {
	var req SetReadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.EmailID == "" || req.Read == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "emailId and read are required",
		})
	}

	affected, err := store.NewEmailStore(config.DB).SetRead(req.EmailID, *req.Read)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update email",
		})
	}
	if affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Email not found",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// MoveToTrash handles POST /moveToTrash.
func MoveToTrash(c *fiber.Ctx) error {
	return emailMutation(c, "Email moved to trash", func(s *store.EmailStore, emailID string, userID uint) (int64, error) {
		return s.MoveToTrash(emailID, userID)
	})
}

// RestoreEmail handles POST /restoreEmail.
func RestoreEmail(c *fiber.Ctx) error {
	return emailMutation(c, "Email restored", func(s *store.EmailStore, emailID string, userID uint) (int64, error) {
		return s.Restore(emailID, userID)
	})
}

// PermanentlyDeleteEmail handles POST /permanentlyDeleteEmail.
func PermanentlyDeleteEmail(c *fiber.Ctx) error {
	return emailMutation(c, "Email permanently deleted", func(s *store.EmailStore, emailID string, userID uint) (int64, error) {
		return s.PermanentlyDelete(emailID, userID)
	})
}

// emailMutation shares the parse/404 plumbing of the single-email
// mutations. Zero affected rows means not-found or not-owner; callers
// get the same 404 either way.
func emailMutation(c *fiber.Ctx, message string, mutate func(*store.EmailStore, string, uint) (int64, error)) error {
	user := c.Locals("user").(*models.User)

	var req EmailActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.EmailID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "emailId is required",
		})
	}

	affected, err := mutate(store.NewEmailStore(config.DB), req.EmailID, user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update email",
		})
	}
	if affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Email not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// EmptyTrash handles POST /emptyTrash: permanently deletes every trashed
// email for the user.
func EmptyTrash(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	deleted, err := store.NewEmailStore(config.DB).EmptyTrash(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to empty trash",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"deleted": deleted,
	})
}
