package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"mentor-backend/internal/integrations/exa"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"
)

// PaperSearcher is the slice of the Exa API the academic tool needs.
type PaperSearcher interface {
	Search(ctx context.Context, params exa.SearchParams) ([]exa.Result, error)
	Contents(ctx context.Context, url string) (*exa.Result, error)
}

// AcademicSearch finds research papers and enriches each hit with full text
// and a summary. Per-item enrichment failures leave those fields empty rather
// than dropping the item.
type AcademicSearch struct {
	searcher PaperSearcher
	logger   *zap.Logger
}

var _ Tool = (*AcademicSearch)(nil)

// NewAcademicSearch creates the academic search tool.
func NewAcademicSearch(searcher PaperSearcher, logger *zap.Logger) *AcademicSearch {
	return &AcademicSearch{searcher: searcher, logger: logger}
}

func (a *AcademicSearch) Name() string { return "academicSearch" }

func (a *AcademicSearch) Description() string {
	return "Search academic papers and research articles."
}

func (a *AcademicSearch) Schema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"query": {
				Type:        genai.TypeString,
				Description: "The search query for academic papers",
			},
		},
		Required: []string{"query"},
	}
}

type searchArgs struct {
	Query string `json:"query"`
}

// PaperResult is one enriched paper.
type PaperResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Author        string `json:"author,omitempty"`
	PublishedDate string `json:"publishedDate,omitempty"`
	Summary       string `json:"summary,omitempty"`
	Text          string `json:"text,omitempty"`
}

// AcademicSearchResult is the tool's output.
type AcademicSearchResult struct {
	Results []PaperResult `json:"results"`
}

func (a *AcademicSearch) Execute(ctx context.Context, raw json.RawMessage) (any, error) {
	var args searchArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("failed to decode academic search arguments: %w", err)
	}

	found, err := a.searcher.Search(ctx, exa.SearchParams{
		Query:         args.Query,
		Type:          "neural",
		UseAutoprompt: true,
		NumResults:    10,
		Category:      "research paper",
	})
	if err != nil {
		return nil, fmt.Errorf("academic search failed: %w", err)
	}

	results := make([]PaperResult, len(found))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range found {
		results[i] = PaperResult{
			Title:         item.Title,
			URL:           item.URL,
			Author:        item.Author,
			PublishedDate: item.PublishedDate,
		}
		g.Go(func() error {
			enriched, err := a.searcher.Contents(gctx, item.URL)
			if err != nil {
				// Enrichment is best-effort; the bare result stands.
				a.logger.Debug("paper enrichment failed", zap.String("url", item.URL), zap.Error(err))
				return nil
			}
			results[i].Summary = enriched.Summary
			results[i].Text = truncate(enriched.Text, 2000)
			return nil
		})
	}
	// Enrichment goroutines never return errors.
	_ = g.Wait()

	return AcademicSearchResult{Results: results}, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
