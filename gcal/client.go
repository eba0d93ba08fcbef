package gcal

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// EventTime carries either a full timestamp or an all-day date.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// Valid reports whether a timestamp or an all-day date is present.
func (t EventTime) Valid() bool {
	return t.DateTime != "" || t.Date != ""
}

// EventRequest is the payload for creating a calendar event.
type EventRequest struct {
	Summary     string    `json:"summary" validate:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Start       EventTime `json:"start"`
	End         EventTime `json:"end"`
}

// Event is one upcoming calendar entry as returned to the frontend.
type Event struct {
	ID       string  `json:"id"`
	Summary  string  `json:"summary"`
	Start    *string `json:"start"`
	End      *string `json:"end"`
	Location *string `json:"location"`
	HTMLLink *string `json:"htmlLink"`
	Status   string  `json:"status"`
}

// Client wraps the Google Calendar API for a single credential, threaded
// in explicitly the same way the Gmail client does it.
type Client struct {
	svc        *calendarapi.Service
	calendarID string
}

func NewClient(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token) (*Client, error) {
	httpClient := cfg.Client(ctx, tok)
	svc, err := calendarapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Client{svc: svc, calendarID: "primary"}, nil
}

// CreateEvent inserts one event into the primary calendar and returns its
// browser link.
func (c *Client) CreateEvent(ctx context.Context, req EventRequest) (string, error) {
	event := &calendarapi.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Location:    req.Location,
		Start: &calendarapi.EventDateTime{
			DateTime: req.Start.DateTime,
			Date:     req.Start.Date,
			TimeZone: req.Start.TimeZone,
		},
		End: &calendarapi.EventDateTime{
			DateTime: req.End.DateTime,
			Date:     req.End.Date,
			TimeZone: req.End.TimeZone,
		},
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}
	return created.HtmlLink, nil
}

// ListUpcoming returns up to 100 events from now on, recurring events
// expanded to single occurrences, ordered by start time ascending.
func (c *Client) ListUpcoming(ctx context.Context) ([]Event, error) {
	res, err := c.svc.Events.List(c.calendarID).
		TimeMin(time.Now().Format(time.RFC3339)).
		MaxResults(100).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]Event, 0, len(res.Items))
	for _, item := range res.Items {
		events = append(events, mapEvent(item))
	}
	return events, nil
}

func mapEvent(item *calendarapi.Event) Event {
	evt := Event{
		ID:      item.Id,
		Summary: item.Summary,
		Status:  item.Status,
	}
	if evt.Summary == "" {
		evt.Summary = "(No title)"
	}
	if item.Start != nil {
		evt.Start = eventTime(item.Start)
	}
	if item.End != nil {
		evt.End = eventTime(item.End)
	}
	if item.Location != "" {
		evt.Location = &item.Location
	}
	if item.HtmlLink != "" {
		evt.HTMLLink = &item.HtmlLink
	}
	return evt
}

// eventTime prefers the precise timestamp, falling back to the all-day
// date.
func eventTime(t *calendarapi.EventDateTime) *string {
	if t.DateTime != "" {
		return &t.DateTime
	}
	if t.Date != "" {
		return &t.Date
	}
	return nil
}
