package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"looma/ai"
	"looma/gmail"
	"looma/models"
)

type stubMailSource struct {
	ids     []string
	msgs    map[string]*gmail.Message
	failIDs map[string]bool
	listErr error
}

func (s *stubMailSource) ListRecent(ctx context.Context, maxResults int64, labelIDs []string) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if int64(len(s.ids)) > maxResults {
		return s.ids[:maxResults], nil
	}
	return s.ids, nil
}

func (s *stubMailSource) FetchFull(ctx context.Context, id string) (*gmail.Message, error) {
	if s.failIDs[id] {
		return nil, errors.New("fetch failed")
	}
	msg, ok := s.msgs[id]
	if !ok {
		return nil, errors.New("unknown id")
	}
	return msg, nil
}

type stubSummarizer struct {
	results []ai.SummaryResult
	err     error
	gotMsgs []*gmail.Message
}

func (s *stubSummarizer) SummarizeBatch(ctx context.Context, msgs []*gmail.Message) ([]ai.SummaryResult, error) {
	s.gotMsgs = msgs
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

type recordingWriter struct {
	mu      sync.Mutex
	records []*models.Email
}

func (w *recordingWriter) InsertIfAbsent(email *models.Email) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, email)
	return nil
}

func threeMessageSource() *stubMailSource {
	date := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &stubMailSource{
		ids: []string{"m1", "m2", "m3"},
		msgs: map[string]*gmail.Message{
			"m1": {ID: "m1", From: "a@example.com", Subject: "one", Date: date, Body: "body one"},
			"m2": {ID: "m2", From: "b@example.com", Subject: "two", Date: date, Body: "body two"},
			"m3": {ID: "m3", From: "c@example.com", Subject: "three", Date: date, Body: "body three"},
		},
		failIDs: map[string]bool{},
	}
}

func resultsFor(ids ...string) []ai.SummaryResult {
	results := make([]ai.SummaryResult, 0, len(ids))
	for i, id := range ids {
		results = append(results, ai.SummaryResult{
			ID:      i + 1,
			EmailID: id,
			Summary: []string{"point for " + id},
			Events:  []ai.SummaryEvent{},
			Links:   []string{},
		})
	}
	return results
}

func TestPipelineHappyPath(t *testing.T) {
	src := threeMessageSource()
	summarizer := &stubSummarizer{results: resultsFor("m1", "m2", "m3")}
	writer := &recordingWriter{}

	outcome, err := runSummaryPipeline(context.Background(), src, summarizer, writer, 7, 10)

	require.NoError(t, err)
	assert.Equal(t, 3, outcome.Processed)
	assert.Len(t, summarizer.gotMsgs, 3)

	require.Len(t, writer.records, 3)
	seen := map[string]bool{}
	for _, rec := range writer.records {
		assert.False(t, seen[rec.EmailID], "duplicate insert for %s", rec.EmailID)
		seen[rec.EmailID] = true
		assert.EqualValues(t, 7, rec.UserID)
		assert.Contains(t, rec.Summary, "point for "+rec.EmailID)
	}
}

func TestPipelineNoMessages(t *testing.T) {
	src := &stubMailSource{ids: nil}
	summarizer := &stubSummarizer{}
	writer := &recordingWriter{}

	outcome, err := runSummaryPipeline(context.Background(), src, summarizer, writer, 7, 10)

	require.NoError(t, err)
	assert.True(t, outcome.NoMessages)
	assert.Empty(t, writer.records)
	assert.Nil(t, summarizer.gotMsgs)
}

func TestPipelineSkipsFailedFetches(t *testing.T) {
	src := threeMessageSource()
	src.failIDs["m2"] = true
	summarizer := &stubSummarizer{results: resultsFor("m1", "m3")}
	writer := &recordingWriter{}

	outcome, err := runSummaryPipeline(context.Background(), src, summarizer, writer, 7, 10)

	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Processed)
	assert.Len(t, summarizer.gotMsgs, 2)
	assert.Len(t, writer.records, 2)
}

func TestPipelineAllFetchesFail(t *testing.T) {
	src := threeMessageSource()
	for _, id := range src.ids {
		src.failIDs[id] = true
	}
	summarizer := &stubSummarizer{}
	writer := &recordingWriter{}

	outcome, err := runSummaryPipeline(context.Background(), src, summarizer, writer, 7, 10)

	require.NoError(t, err)
	assert.True(t, outcome.NoneProcessed)
	assert.Empty(t, writer.records)
	assert.Nil(t, summarizer.gotMsgs)
}

func TestPipelineDropsUnmatchedResults(t *testing.T) {
	src := threeMessageSource()
	summarizer := &stubSummarizer{results: append(resultsFor("m1"), ai.SummaryResult{ID: 2, EmailID: "ghost"})}
	writer := &recordingWriter{}

	outcome, err := runSummaryPipeline(context.Background(), src, summarizer, writer, 7, 10)

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Processed)
	require.Len(t, writer.records, 1)
	assert.Equal(t, "m1", writer.records[0].EmailID)
}

func TestPipelineRespectsBatchSize(t *testing.T) {
	src := threeMessageSource()
	summarizer := &stubSummarizer{results: resultsFor("m1", "m2")}
	writer := &recordingWriter{}

	outcome, err := runSummaryPipeline(context.Background(), src, summarizer, writer, 7, 2)

	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Processed)
	assert.Len(t, summarizer.gotMsgs, 2)
}

func TestPipelinePropagatesListError(t *testing.T) {
	src := &stubMailSource{listErr: errors.New("gmail down")}
	writer := &recordingWriter{}

	_, err := runSummaryPipeline(context.Background(), src, &stubSummarizer{}, writer, 7, 10)

	assert.Error(t, err)
	assert.Empty(t, writer.records)
}

func TestPipelinePropagatesSummarizerError(t *testing.T) {
	src := threeMessageSource()
	writer := &recordingWriter{}

	_, err := runSummaryPipeline(context.Background(), src, &stubSummarizer{err: errors.New("provider unreachable")}, writer, 7, 10)

	assert.Error(t, err)
	assert.Empty(t, writer.records)
}
