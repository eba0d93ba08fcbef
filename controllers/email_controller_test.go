package controller

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"looma/models"
)

func TestSummarySnippetShortSummary(t *testing.T) {
	assert.Equal(t, "a quick note...", summarySnippet("a quick note"))
}

func TestSummarySnippetTruncatesLongSummary(t *testing.T) {
	long := strings.Repeat("summary text ", 20)

	snippet := summarySnippet(long)

	assert.Equal(t, long[:100]+"...", snippet)
	assert.Len(t, snippet, 103)
}

func TestSummarySnippetKeepsRunesIntact(t *testing.T) {
	long := strings.Repeat("世", 40)

	snippet := summarySnippet(long)

	assert.True(t, utf8.ValidString(snippet))
	assert.Equal(t, strings.Repeat("世", 33)+"...", snippet)
}

func TestTrashedEmailsCarrySnippet(t *testing.T) {
	emails := []models.Email{
		{EmailID: "t1", Summary: strings.Repeat("old thread ", 20)},
		{EmailID: "t2", Summary: "short"},
	}

	out := trashedEmails(emails)

	require.Len(t, out, 2)
	assert.Equal(t, "t1", out[0].EmailID)
	assert.Equal(t, emails[0].Summary[:100]+"...", out[0].Snippet)
	assert.Equal(t, "short...", out[1].Snippet)

	raw, err := json.Marshal(out[0])
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "snippet")
	assert.Contains(t, decoded, "summary")
}
