package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"looma/gmail"
)

// SummaryEvent is one calendar-worthy event the AI extracted from an email.
type SummaryEvent struct {
	Name  string `json:"name"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	Venue string `json:"venue"`
}

// SummaryResult is one AI-produced record for a message in the batch. ID is
// the 1-based position within the batch; EmailID must match a fetched
// message id for the result to be usable.
type SummaryResult struct {
	ID      int            `json:"id"`
	EmailID string         `json:"emailId"`
	Summary []string       `json:"summary"`
	Events  []SummaryEvent `json:"events"`
	Links   []string       `json:"links"`
}

type batchResponse struct {
	Emails []SummaryResult `json:"emails"`
}

// ErrEmptyBatch indicates SummarizeBatch was called with no messages.
// Callers are expected to short-circuit before reaching the AI.
var ErrEmptyBatch = errors.New("no messages to summarize")

// SummarizeBatch analyzes a batch of messages with a single completion
// call. Batching keeps the external call volume at one request per
// user-triggered summarization regardless of batch size. The AI response
// is parsed strictly first, then leniently after stripping code-fence
// markup; if both parses fail, a synthesized fallback result per message
// is returned so the pipeline never fails on unparseable output.
func (c *Client) SummarizeBatch(ctx context.Context, msgs []*gmail.Message) ([]SummaryResult, error) {
	if len(msgs) == 0 {
		return nil, ErrEmptyBatch
	}

	content, err := c.Complete(ctx, BuildBatchPrompt(msgs))
	if err != nil {
		return nil, err
	}

	return ParseBatchResponse(content, msgs), nil
}

// BuildBatchPrompt embeds every message's id, sender, subject, date and
// body into one prompt with the exact output structure the pipeline
// expects back.
func BuildBatchPrompt(msgs []*gmail.Message) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `You are an AI assistant. Analyze the following %d emails and provide a JSON response with summaries for each email.

IMPORTANT: Return ONLY valid JSON without any markdown formatting, code blocks, or additional text.

For each email, provide the output in this exact JSON structure:
{
  "emails": [
    {
      "id": 1,
      "emailId": "actual_email_id",
      "summary": ["Bullet point 1", "Bullet point 2", "Bullet point 3"],
      "events": [
        {
          "name": "Event Name",
          "date": "YYYY-MM-DD",
          "time": "HH:MM",
          "venue": "Venue Name"
        }
      ],
      "links": ["https://example.com"]
    }
  ]
}

Requirements:
- Provide 4-6 meaningful bullet points for each email summary
- Exclude greetings, signatures, or irrelevant text
- If the mail has social media links like youtube, facebook, etc., omit them
- If there are no events or links, use empty arrays []
- Return ONLY the JSON object, no markdown, no explanations, no code blocks

Emails to analyze:`, len(msgs))

	for i, m := range msgs {
		fmt.Fprintf(&sb, "\nEmail ID: %d\nActual Email ID: %s\nFrom: %s\nSubject: %s\nDate: %s\nBody: %s\n---",
			i+1, m.ID, m.From, m.Subject, m.Date.Format("2006-01-02 15:04:05"), m.Body)
	}

	return sb.String()
}

// ParseBatchResponse applies the two-stage parse contract: strict JSON
// first, then one lenient retry after normalization, then fallback
// synthesis. Fallback triggers only on parse failure; a well-formed
// response with an empty emails array means the model produced nothing
// and yields an empty result set, not synthesized summaries.
func ParseBatchResponse(content string, msgs []*gmail.Message) []SummaryResult {
	var parsed batchResponse
	if err := json.Unmarshal([]byte(content), &parsed); err == nil {
		return parsed.Emails
	}

	cleaned := strings.TrimSpace(StripCodeFence(content))
	if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil {
		return parsed.Emails
	}

	return FallbackResults(msgs)
}

// StripCodeFence removes markdown code-block markup the model sometimes
// wraps its JSON in.
func StripCodeFence(content string) string {
	if strings.Contains(content, "```json") {
		content = strings.ReplaceAll(content, "```json", "")
		content = strings.ReplaceAll(content, "```", "")
		return content
	}
	if strings.Contains(content, "```") {
		return strings.ReplaceAll(content, "```", "")
	}
	return content
}

// FallbackResults synthesizes one result per input message from the data
// we already have, with empty events and links.
func FallbackResults(msgs []*gmail.Message) []SummaryResult {
	results := make([]SummaryResult, 0, len(msgs))
	for i, m := range msgs {
		results = append(results, SummaryResult{
			ID:      i + 1,
			EmailID: m.ID,
			Summary: []string{
				"Email from: " + m.From,
				"Subject: " + m.Subject,
				"Content preview: " + preview(m.Body, 100),
			},
			Events: []SummaryEvent{},
			Links:  []string{},
		})
	}
	return results
}

// SummaryText flattens one result into the human-readable text persisted
// alongside the email record.
func SummaryText(r SummaryResult) string {
	var sb strings.Builder

	sb.WriteString("Summary:\n")
	for _, s := range r.Summary {
		sb.WriteString("- " + s + "\n")
	}

	if len(r.Events) > 0 {
		sb.WriteString("\nEvents:\n")
		for _, e := range r.Events {
			fmt.Fprintf(&sb, "- %s: %s %s at %s\n", e.Name, e.Date, e.Time, e.Venue)
		}
	}

	if len(r.Links) > 0 {
		sb.WriteString("\nLinks:\n")
		for _, l := range r.Links {
			sb.WriteString("- " + l + "\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// preview truncates on a rune boundary so the persisted text stays valid
// UTF-8.
func preview(body string, limit int) string {
	if len(body) <= limit {
		return body
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + "..."
}
