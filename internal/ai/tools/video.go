package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"mentor-backend/internal/integrations/exa"
	"mentor-backend/internal/integrations/yt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"
)

var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&?/]+)`)

// VideoSearcher is the slice of the Exa API the video tool needs.
type VideoSearcher interface {
	Search(ctx context.Context, params exa.SearchParams) ([]exa.Result, error)
}

// VideoMetadata fetches per-video enrichment; tests supply fakes.
type VideoMetadata interface {
	VideoData(ctx context.Context, videoURL string) (*yt.Details, error)
	Captions(ctx context.Context, videoURL string) (string, error)
	Timestamps(ctx context.Context, videoURL string) ([]string, error)
}

// YoutubeSearch finds videos and enriches each with metadata, captions and
// timestamps, fetched concurrently. A failed enrichment leaves those fields
// empty; the video itself is kept.
type YoutubeSearch struct {
	searcher VideoSearcher
	metadata VideoMetadata
	logger   *zap.Logger
}

var _ Tool = (*YoutubeSearch)(nil)

// NewYoutubeSearch creates the video search tool. metadata may be nil, in
// which case results are returned without enrichment.
func NewYoutubeSearch(searcher VideoSearcher, metadata VideoMetadata, logger *zap.Logger) *YoutubeSearch {
	return &YoutubeSearch{searcher: searcher, metadata: metadata, logger: logger}
}

func (y *YoutubeSearch) Name() string { return "youtubeSearch" }

func (y *YoutubeSearch) Description() string {
	return "Search YouTube videos and get detailed video information."
}

func (y *YoutubeSearch) Schema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"query": {
				Type:        genai.TypeString,
				Description: "The search query for YouTube videos",
			},
		},
		Required: []string{"query"},
	}
}

// VideoResult is one enriched video.
type VideoResult struct {
	VideoID    string      `json:"videoId"`
	URL        string      `json:"url"`
	Details    *yt.Details `json:"details,omitempty"`
	Captions   string      `json:"captions,omitempty"`
	Timestamps []string    `json:"timestamps,omitempty"`
}

// YoutubeSearchResult is the tool's output.
type YoutubeSearchResult struct {
	Results []VideoResult `json:"results"`
}

func (y *YoutubeSearch) Execute(ctx context.Context, raw json.RawMessage) (any, error) {
	var args searchArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("failed to decode youtube search arguments: %w", err)
	}

	found, err := y.searcher.Search(ctx, exa.SearchParams{
		Query:          args.Query,
		Type:           "neural",
		UseAutoprompt:  true,
		NumResults:     10,
		IncludeDomains: []string{"youtube.com"},
	})
	if err != nil {
		return nil, fmt.Errorf("youtube search failed: %w", err)
	}

	// Non-video URLs are dropped before enrichment.
	var results []VideoResult
	for _, item := range found {
		match := videoIDPattern.FindStringSubmatch(item.URL)
		if match == nil {
			continue
		}
		results = append(results, VideoResult{VideoID: match[1], URL: item.URL})
	}

	if y.metadata != nil {
		g, gctx := errgroup.WithContext(ctx)
		for i := range results {
			g.Go(func() error {
				y.enrich(gctx, &results[i])
				return nil
			})
		}
		_ = g.Wait()
	}

	return YoutubeSearchResult{Results: results}, nil
}

// enrich fetches the three metadata fields concurrently, tolerating failure
// of each independently.
func (y *YoutubeSearch) enrich(ctx context.Context, result *VideoResult) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		details, err := y.metadata.VideoData(gctx, result.URL)
		if err == nil {
			result.Details = details
		}
		return nil
	})
	g.Go(func() error {
		captions, err := y.metadata.Captions(gctx, result.URL)
		if err == nil {
			result.Captions = truncate(captions, 4000)
		}
		return nil
	})
	g.Go(func() error {
		timestamps, err := y.metadata.Timestamps(gctx, result.URL)
		if err == nil {
			result.Timestamps = timestamps
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		y.logger.Debug("video enrichment failed", zap.String("video_id", result.VideoID), zap.Error(err))
	}
}
