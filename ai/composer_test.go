package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseComposeResponseWellFormed(t *testing.T) {
	response := "Subject: Budget review next steps\n\nBody:\nDear [Recipient Name],\n\nHere are the next steps.\n\nBest regards,\n[Your Name]"

	subject, body := parseComposeResponse(response, Preferences{Purpose: "budget review"})

	assert.Equal(t, "Budget review next steps", subject)
	assert.True(t, strings.HasPrefix(body, "Dear [Recipient Name],"))
	assert.Contains(t, body, "next steps")
}

func TestParseComposeResponseStripsQuotes(t *testing.T) {
	response := "Subject: \"Quoted subject\"\n\nBody:\nplain body"

	subject, body := parseComposeResponse(response, Preferences{Purpose: "x"})

	assert.Equal(t, "Quoted subject", subject)
	assert.Equal(t, "plain body", body)
}

func TestParseComposeResponseMissingSections(t *testing.T) {
	response := "The model just wrote prose without any structure."

	subject, body := parseComposeResponse(response, Preferences{Purpose: "schedule a call"})

	assert.Equal(t, "Schedule a call", subject)
	assert.Equal(t, response, body)
}

func TestParseComposeResponseTrailingNote(t *testing.T) {
	response := "Subject: Hi\n\nBody:\nactual content here\n\nNote: placeholders were used."

	_, body := parseComposeResponse(response, Preferences{Purpose: "x"})

	assert.Equal(t, "actual content here", body)
}

func TestFallbackEmailSubjects(t *testing.T) {
	cases := []struct {
		purpose string
		want    string
	}{
		{"meeting about roadmap", "Meeting Request - meeting about roadmap"},
		{"follow up on proposal", "Follow Up: follow up on proposal"},
		{"thank the team", "Thank You - thank the team"},
		{"introduce myself", "Introduce myself"},
	}

	for _, tc := range cases {
		subject, _ := FallbackEmail(Preferences{Purpose: tc.purpose})
		assert.Equal(t, tc.want, subject)
	}
}

func TestFallbackEmailTones(t *testing.T) {
	for tone, greeting := range map[string]string{
		"professional": "Dear [Recipient Name],",
		"friendly":     "Hi there!",
		"formal":       "Dear Sir/Madam,",
		"casual":       "Hey!",
	} {
		_, body := FallbackEmail(Preferences{Tone: tone, Purpose: "check in"})
		assert.True(t, strings.HasPrefix(body, greeting), "tone %q", tone)
	}

	// Unknown tone falls back to professional
	_, body := FallbackEmail(Preferences{Tone: "sarcastic", Purpose: "check in"})
	assert.True(t, strings.HasPrefix(body, "Dear [Recipient Name],"))
	assert.Contains(t, body, "Best regards,\n[Your Name]")
}

func TestFallbackEmailLengths(t *testing.T) {
	_, shortBody := FallbackEmail(Preferences{Purpose: "sync", Length: "short"})
	_, mediumBody := FallbackEmail(Preferences{Purpose: "sync", Length: "medium"})
	_, longBody := FallbackEmail(Preferences{Purpose: "sync", Length: "long"})

	assert.Less(t, len(shortBody), len(mediumBody))
	assert.Less(t, len(mediumBody), len(longBody))
	assert.Contains(t, mediumBody, "appreciate your feedback")
	assert.Contains(t, longBody, "discuss this further")
}

func TestFallbackEmailIncludesKeyPoints(t *testing.T) {
	_, body := FallbackEmail(Preferences{Purpose: "sync", Length: "medium", KeyPoints: "budget, headcount"})

	assert.Contains(t, body, "budget, headcount")
}
