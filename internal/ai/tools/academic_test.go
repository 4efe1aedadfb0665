package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"mentor-backend/internal/integrations/exa"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePaperSearcher struct {
	results    []exa.Result
	searchErr  error
	contents   map[string]*exa.Result
	lastParams exa.SearchParams
}

func (f *fakePaperSearcher) Search(ctx context.Context, params exa.SearchParams) ([]exa.Result, error) {
	f.lastParams = params
	return f.results, f.searchErr
}

func (f *fakePaperSearcher) Contents(ctx context.Context, url string) (*exa.Result, error) {
	if r, ok := f.contents[url]; ok {
		return r, nil
	}
	return nil, errors.New("no contents")
}

func TestAcademicSearchEnrichesResults(t *testing.T) {
	searcher := &fakePaperSearcher{
		results: []exa.Result{
			{Title: "Paper A", URL: "https://papers/a", Author: "Ada"},
			{Title: "Paper B", URL: "https://papers/b"},
		},
		contents: map[string]*exa.Result{
			"https://papers/a": {Summary: "summary A", Text: "full text A"},
			"https://papers/b": {Summary: "summary B", Text: "full text B"},
		},
	}
	tool := NewAcademicSearch(searcher, zap.NewNop())

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"distributed consensus"}`))
	require.NoError(t, err)
	result, ok := out.(AcademicSearchResult)
	require.True(t, ok)

	require.Len(t, result.Results, 2)
	assert.Equal(t, "Paper A", result.Results[0].Title)
	assert.Equal(t, "summary A", result.Results[0].Summary)
	assert.Equal(t, "full text B", result.Results[1].Text)

	assert.Equal(t, "distributed consensus", searcher.lastParams.Query)
	assert.Equal(t, "research paper", searcher.lastParams.Category)
	assert.Equal(t, 10, searcher.lastParams.NumResults)
}

func TestAcademicSearchToleratesEnrichmentFailure(t *testing.T) {
	searcher := &fakePaperSearcher{
		results: []exa.Result{
			{Title: "Enriched", URL: "https://papers/ok"},
			{Title: "Bare", URL: "https://papers/missing"},
		},
		contents: map[string]*exa.Result{
			"https://papers/ok": {Summary: "s", Text: "t"},
		},
	}
	tool := NewAcademicSearch(searcher, zap.NewNop())

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"q"}`))
	require.NoError(t, err)
	result := out.(AcademicSearchResult)

	require.Len(t, result.Results, 2)
	assert.Equal(t, "s", result.Results[0].Summary)
	assert.Empty(t, result.Results[1].Summary)
	assert.Empty(t, result.Results[1].Text)
}

func TestAcademicSearchTruncatesLongText(t *testing.T) {
	long := strings.Repeat("x", 5000)
	searcher := &fakePaperSearcher{
		results:  []exa.Result{{Title: "Long", URL: "https://papers/long"}},
		contents: map[string]*exa.Result{"https://papers/long": {Text: long}},
	}
	tool := NewAcademicSearch(searcher, zap.NewNop())

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"q"}`))
	require.NoError(t, err)
	result := out.(AcademicSearchResult)

	assert.Len(t, result.Results[0].Text, 2000)
}

func TestAcademicSearchFailureIsExecutionError(t *testing.T) {
	searcher := &fakePaperSearcher{searchErr: errors.New("exa down")}
	tool := NewAcademicSearch(searcher, zap.NewNop())

	_, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"q"}`))
	assert.Error(t, err)
}
