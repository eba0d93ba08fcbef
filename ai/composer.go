package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Preferences describe the email the user wants generated.
type Preferences struct {
	Tone      string `json:"tone"`
	Purpose   string `json:"purpose" validate:"required"`
	KeyPoints string `json:"keyPoints"`
	Length    string `json:"length"`
}

var (
	subjectPattern = regexp.MustCompile(`(?i)Subject:\s*(.+)`)
	bodyPattern    = regexp.MustCompile(`(?is)Body:\s*(.+?)(?:\n\n---|\n\nNote:|$)`)
)

// ComposeEmail generates a subject and body from the given preferences
// with one completion call. Callers should fall back to FallbackEmail when
// this returns an error.
func (c *Client) ComposeEmail(ctx context.Context, prefs Preferences) (string, string, error) {
	prompt := buildComposePrompt(prefs)

	response, err := c.CompleteWithOptions(ctx, prompt, 1000, 0.7)
	if err != nil {
		return "", "", err
	}

	subject, body := parseComposeResponse(response, prefs)
	return subject, body, nil
}

func buildComposePrompt(prefs Preferences) string {
	keyPoints := prefs.KeyPoints
	if keyPoints == "" {
		keyPoints = "None specified"
	}

	return fmt.Sprintf(`You are an expert email writer. Generate a professional email based on the following requirements:

REQUIREMENTS:
- Tone: %s
- Purpose: %s
- Key Points: %s
- Length: %s

INSTRUCTIONS:
1. Generate both a subject line and email body
2. The tone should be %s
3. The email should be %s in length
4. Include the key points naturally in the content
5. Use appropriate greetings and closings for the %s tone
6. Make it professional and well-structured
7. Use placeholder [Recipient Name] for the recipient and [Your Name] for the sender

OUTPUT FORMAT:
Subject: [Your generated subject line]

Body:
[Your generated email body]

Please generate the email now:`,
		prefs.Tone, prefs.Purpose, keyPoints, prefs.Length,
		prefs.Tone, prefs.Length, prefs.Tone)
}

// parseComposeResponse extracts the Subject and Body sections, falling
// back to a capitalized purpose and the whole response when the model
// ignored the output format.
func parseComposeResponse(response string, prefs Preferences) (string, string) {
	var subject, body string

	if m := subjectPattern.FindStringSubmatch(response); m != nil {
		subject = strings.TrimSpace(m[1])
	} else {
		subject = capitalize(prefs.Purpose)
	}

	if m := bodyPattern.FindStringSubmatch(response); m != nil {
		body = strings.TrimSpace(m[1])
	} else {
		body = strings.TrimSpace(response)
	}

	return trimQuotes(subject), trimQuotes(body)
}

// FallbackEmail deterministically generates an email from the preferences
// when the AI is unavailable or its output is unusable.
func FallbackEmail(prefs Preferences) (string, string) {
	purpose := prefs.Purpose
	lowered := strings.ToLower(purpose)

	var subject string
	switch {
	case strings.Contains(lowered, "meeting"):
		subject = "Meeting Request - " + purpose
	case strings.Contains(lowered, "follow up"):
		subject = "Follow Up: " + purpose
	case strings.Contains(lowered, "thank"):
		subject = "Thank You - " + purpose
	default:
		subject = capitalize(purpose)
	}

	greetings := map[string]string{
		"professional": "Dear [Recipient Name],",
		"friendly":     "Hi there!",
		"formal":       "Dear Sir/Madam,",
		"casual":       "Hey!",
	}
	closings := map[string]string{
		"professional": "Best regards,\n[Your Name]",
		"friendly":     "Best,\n[Your Name]",
		"formal":       "Sincerely,\n[Your Name]",
		"casual":       "Thanks!\n[Your Name]",
	}

	greeting, ok := greetings[prefs.Tone]
	if !ok {
		greeting = greetings["professional"]
	}
	closing, ok := closings[prefs.Tone]
	if !ok {
		closing = closings["professional"]
	}

	var content string
	switch prefs.Length {
	case "short":
		content = "I hope this email finds you well. " + purpose
		if prefs.KeyPoints != "" {
			content += "\n\n" + prefs.KeyPoints
		}
		content += "\n\nPlease let me know if you have any questions."
	case "medium":
		content = "I hope this email finds you well.\n\n" + purpose
		if prefs.KeyPoints != "" {
			content += "\n\nKey points to consider:\n" + prefs.KeyPoints
		}
		content += "\n\nI would appreciate your feedback on this matter. Please feel free to reach out if you need any additional information."
	default:
		content = "I hope this email finds you well and that you're having a great day.\n\n" + purpose
		if prefs.KeyPoints != "" {
			content += "\n\nI wanted to highlight the following key points:\n" + prefs.KeyPoints
		}
		content += "\n\nI believe this would be beneficial for both parties and would love to discuss this further at your convenience. Please don't hesitate to reach out if you have any questions or would like to schedule a time to talk."
	}

	body := greeting + "\n\n" + content + "\n\n" + closing
	return subject, body
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func trimQuotes(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	s = strings.TrimPrefix(s, `'`)
	s = strings.TrimSuffix(s, `'`)
	return s
}
