package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, LooksLikeHTML("<p>hello</p>"))
	assert.True(t, LooksLikeHTML("before <div class=\"x\">after"))
	assert.False(t, LooksLikeHTML("plain text, 2 < 3 and nothing else"))
	assert.False(t, LooksLikeHTML(""))
}

func TestBuildMessagePlainText(t *testing.T) {
	raw, err := BuildMessage("to@example.com", "", "", "Hello", "just text")
	require.NoError(t, err)

	msg := string(raw)
	assert.Contains(t, msg, "To: to@example.com")
	assert.Contains(t, msg, "Subject: Hello")
	assert.Contains(t, msg, "Content-Type: text/plain")
	assert.NotContains(t, msg, "Cc:")
}

func TestBuildMessageHTMLWithCc(t *testing.T) {
	raw, err := BuildMessage("to@example.com", "cc@example.com", "bcc@example.com", "Hi", "<h1>Hi</h1>")
	require.NoError(t, err)

	msg := string(raw)
	assert.Contains(t, msg, "Cc: cc@example.com")
	assert.Contains(t, msg, "Content-Type: text/html")
}
