package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/mail"
	"time"

	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Message is one fetched mailbox entry with its headers resolved and the
// plain-text body already decoded. It lives only for the duration of a
// summarization run.
type Message struct {
	ID      string    `json:"id"`
	From    string    `json:"from"`
	Subject string    `json:"subject"`
	Date    time.Time `json:"date"`
	Body    string    `json:"body"`
}

// Client wraps the Gmail API for a single credential. The token is passed
// in explicitly so concurrent requests for different users never share
// OAuth state.
type Client struct {
	svc    *gmailapi.Service
	userID string
}

func NewClient(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token) (*Client, error) {
	httpClient := cfg.Client(ctx, tok)
	svc, err := gmailapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{svc: svc, userID: "me"}, nil
}

// ListRecent returns the ids of the most recent messages matching the
// given labels, newest first.
func (c *Client) ListRecent(ctx context.Context, maxResults int64, labelIDs []string) ([]string, error) {
	call := c.svc.Users.Messages.List(c.userID).MaxResults(maxResults).Context(ctx)
	if len(labelIDs) > 0 {
		call = call.LabelIds(labelIDs...)
	}
	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	ids := make([]string, 0, len(res.Messages))
	for _, m := range res.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// FetchFull fetches one message in full format and resolves its headers
// and plain-text body. A fetch error for one id must not abort the batch;
// the caller skips the id and continues.
func (c *Client) FetchFull(ctx context.Context, id string) (*Message, error) {
	res, err := c.svc.Users.Messages.Get(c.userID, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message %s: %w", id, err)
	}
	if res.Payload == nil {
		return nil, fmt.Errorf("message %s has no payload", id)
	}

	msg := &Message{
		ID:      id,
		From:    "(Unknown Sender)",
		Subject: "(No Subject)",
		Date:    time.Now(),
	}
	for _, h := range res.Payload.Headers {
		switch h.Name {
		case "Subject":
			if h.Value != "" {
				msg.Subject = h.Value
			}
		case "From":
			if h.Value != "" {
				msg.From = h.Value
			}
		case "Date":
			if t, err := mail.ParseDate(h.Value); err == nil {
				msg.Date = t
			}
		}
	}

	msg.Body = extractBody(res.Payload)
	return msg, nil
}

// Send sends a raw RFC 822 message through the Gmail API.
func (c *Client) Send(ctx context.Context, raw []byte) error {
	encoded := base64.RawURLEncoding.EncodeToString(raw)
	_, err := c.svc.Users.Messages.Send(c.userID, &gmailapi.Message{Raw: encoded}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
