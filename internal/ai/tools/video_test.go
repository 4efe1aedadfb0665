package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"mentor-backend/internal/integrations/exa"
	"mentor-backend/internal/integrations/yt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVideoSearcher struct {
	results []exa.Result
	err     error
}

func (f *fakeVideoSearcher) Search(ctx context.Context, params exa.SearchParams) ([]exa.Result, error) {
	return f.results, f.err
}

type fakeVideoMetadata struct {
	details       *yt.Details
	detailsErr    error
	captions      string
	captionsErr   error
	timestamps    []string
	timestampsErr error
}

func (f *fakeVideoMetadata) VideoData(ctx context.Context, videoURL string) (*yt.Details, error) {
	return f.details, f.detailsErr
}

func (f *fakeVideoMetadata) Captions(ctx context.Context, videoURL string) (string, error) {
	return f.captions, f.captionsErr
}

func (f *fakeVideoMetadata) Timestamps(ctx context.Context, videoURL string) ([]string, error) {
	return f.timestamps, f.timestampsErr
}

func TestYoutubeSearchExtractsVideoIDs(t *testing.T) {
	searcher := &fakeVideoSearcher{results: []exa.Result{
		{URL: "https://www.youtube.com/watch?v=abc123"},
		{URL: "https://youtu.be/def456"},
		{URL: "https://www.youtube.com/embed/ghi789"},
		{URL: "https://example.com/not-a-video"},
	}}
	tool := NewYoutubeSearch(searcher, nil, zap.NewNop())

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"go tutorials"}`))
	require.NoError(t, err)
	result := out.(YoutubeSearchResult)

	require.Len(t, result.Results, 3)
	assert.Equal(t, "abc123", result.Results[0].VideoID)
	assert.Equal(t, "def456", result.Results[1].VideoID)
	assert.Equal(t, "ghi789", result.Results[2].VideoID)
}

func TestYoutubeSearchEnrichesVideos(t *testing.T) {
	searcher := &fakeVideoSearcher{results: []exa.Result{
		{URL: "https://www.youtube.com/watch?v=abc123"},
	}}
	metadata := &fakeVideoMetadata{
		details:    &yt.Details{Title: "Go Concurrency Patterns"},
		captions:   "hello and welcome",
		timestamps: []string{"0:00 intro", "5:00 channels"},
	}
	tool := NewYoutubeSearch(searcher, metadata, zap.NewNop())

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"q"}`))
	require.NoError(t, err)
	result := out.(YoutubeSearchResult)

	require.Len(t, result.Results, 1)
	video := result.Results[0]
	require.NotNil(t, video.Details)
	assert.Equal(t, "Go Concurrency Patterns", video.Details.Title)
	assert.Equal(t, "hello and welcome", video.Captions)
	assert.Len(t, video.Timestamps, 2)
}

func TestYoutubeSearchPartialEnrichmentFailure(t *testing.T) {
	searcher := &fakeVideoSearcher{results: []exa.Result{
		{URL: "https://www.youtube.com/watch?v=abc123"},
	}}
	metadata := &fakeVideoMetadata{
		details:       &yt.Details{Title: "Kept"},
		captionsErr:   errors.New("captions service down"),
		timestampsErr: errors.New("timestamps service down"),
	}
	tool := NewYoutubeSearch(searcher, metadata, zap.NewNop())

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"q"}`))
	require.NoError(t, err)
	result := out.(YoutubeSearchResult)

	require.Len(t, result.Results, 1)
	video := result.Results[0]
	require.NotNil(t, video.Details)
	assert.Empty(t, video.Captions)
	assert.Empty(t, video.Timestamps)
}

func TestYoutubeSearchFailureIsExecutionError(t *testing.T) {
	searcher := &fakeVideoSearcher{err: errors.New("exa down")}
	tool := NewYoutubeSearch(searcher, nil, zap.NewNop())

	_, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"q"}`))
	assert.Error(t, err)
}
