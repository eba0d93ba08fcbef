package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"looma/ai"
	"looma/config"
	"looma/gmail"
	"looma/models"
	"looma/store"
	"looma/token"
	"looma/utils"
)

// summaryLabels filters the inbox listing to important mail only.
var summaryLabels = []string{"INBOX", "IMPORTANT"}

// MailSource lists and fetches mailbox messages.
type MailSource interface {
	ListRecent(ctx context.Context, maxResults int64, labelIDs []string) ([]string, error)
	FetchFull(ctx context.Context, id string) (*gmail.Message, error)
}

// Summarizer turns a batch of messages into per-message summaries.
type Summarizer interface {
	SummarizeBatch(ctx context.Context, msgs []*gmail.Message) ([]ai.SummaryResult, error)
}

// EmailWriter persists summarized emails.
type EmailWriter interface {
	InsertIfAbsent(email *models.Email) error
}

type summaryOutcome struct {
	// No message ids matched the label filter
	NoMessages bool
	// Ids existed but every fetch failed
	NoneProcessed bool
	Processed     int
}

// runSummaryPipeline drives one summarization pass: list ids, fetch the
// messages concurrently (failed fetches are skipped), summarize the batch
// in a single AI call, and fan the inserts out. Inserts are idempotent so
// a partially failed run can simply be retried.
func runSummaryPipeline(ctx context.Context, src MailSource, summarizer Summarizer, writer EmailWriter, userID uint, batchSize int) (*summaryOutcome, error) {
	ids, err := src.ListRecent(ctx, int64(batchSize), summaryLabels)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return &summaryOutcome{NoMessages: true}, nil
	}

	// Fetch concurrently, preserving the listing order
	fetched := make([]*gmail.Message, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			msg, err := src.FetchFull(ctx, id)
			if err != nil {
				utils.LogEvent("message_fetch_skipped", map[string]interface{}{
					"message_id": id,
					"error":      err.Error(),
				})
				return
			}
			fetched[i] = msg
		}(i, id)
	}
	wg.Wait()

	msgs := make([]*gmail.Message, 0, len(ids))
	for _, msg := range fetched {
		if msg != nil {
			msgs = append(msgs, msg)
		}
	}
	if len(msgs) == 0 {
		return &summaryOutcome{NoneProcessed: true}, nil
	}

	results, err := summarizer.SummarizeBatch(ctx, msgs)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*gmail.Message, len(msgs))
	for _, msg := range msgs {
		byID[msg.ID] = msg
	}

	var g errgroup.Group
	processed := 0
	for _, result := range results {
		msg, ok := byID[result.EmailID]
		if !ok {
			utils.LogEvent("summary_result_unmatched", map[string]interface{}{
				"email_id": result.EmailID,
			})
			continue
		}
		processed++

		record := &models.Email{
			EmailID:   msg.ID,
			UserID:    userID,
			FromEmail: msg.From,
			Subject:   msg.Subject,
			Summary:   ai.SummaryText(result),
			Date:      msg.Date,
		}
		g.Go(func() error {
			return writer.InsertIfAbsent(record)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &summaryOutcome{Processed: processed}, nil
}

// SummarizeEmails handles GET /summary.
func SummarizeEmails(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	tok, err := token.NewStore(config.AppConfig.TokenFile).Load()
	if err != nil {
		if errors.Is(err, token.ErrNotFound) || errors.Is(err, token.ErrInvalid) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Google authentication required. Please visit /auth to connect your account.",
			})
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load credentials", err)
	}

	ctx := c.UserContext()
	mail, err := gmail.NewClient(ctx, config.GoogleOAuth(), tok)
	if err != nil {
		utils.LogError("gmail_client", err, map[string]interface{}{"user_id": user.ID})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to connect to Gmail", err)
	}

	summarizer := ai.NewClient(config.AppConfig.AI.APIKey, config.AppConfig.AI.Model, config.AppConfig.AI.BaseURL)
	emails := store.NewEmailStore(config.DB)

	outcome, err := runSummaryPipeline(ctx, mail, summarizer, emails, user.ID, config.AppConfig.SummaryBatchSize)
	if err != nil {
		utils.LogError("summary_pipeline", err, map[string]interface{}{"user_id": user.ID})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Summarization failed", err)
	}

	switch {
	case outcome.NoMessages:
		return c.JSON(fiber.Map{"summary": "No emails found"})
	case outcome.NoneProcessed:
		return c.JSON(fiber.Map{"summary": "No emails could be processed"})
	}

	utils.LogEvent("summary_completed", map[string]interface{}{
		"user_id":   user.ID,
		"processed": outcome.Processed,
	})

	return c.JSON(fiber.Map{
		"success":   "Summarize successful",
		"processed": outcome.Processed,
	})
}
