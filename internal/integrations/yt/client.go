// Package yt wraps the video metadata service used to enrich youtubeSearch
// results with details, captions and timestamps.
package yt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the video metadata endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a metadata client for the given base endpoint.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Details is oEmbed-style metadata for one video.
type Details struct {
	Title        string `json:"title,omitempty"`
	AuthorName   string `json:"author_name,omitempty"`
	AuthorURL    string `json:"author_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	ProviderName string `json:"provider_name,omitempty"`
	ProviderURL  string `json:"provider_url,omitempty"`
}

// VideoData fetches metadata for a video URL.
func (c *Client) VideoData(ctx context.Context, videoURL string) (*Details, error) {
	body, err := c.post(ctx, "/video-data", videoURL)
	if err != nil {
		return nil, err
	}
	var details Details
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, fmt.Errorf("failed to decode video data: %w", err)
	}
	return &details, nil
}

// Captions fetches the caption track for a video URL as plain text.
func (c *Client) Captions(ctx context.Context, videoURL string) (string, error) {
	body, err := c.post(ctx, "/video-captions", videoURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Timestamps fetches chapter timestamps for a video URL.
func (c *Client) Timestamps(ctx context.Context, videoURL string) ([]string, error) {
	body, err := c.post(ctx, "/video-timestamps", videoURL)
	if err != nil {
		return nil, err
	}
	var timestamps []string
	if err := json.Unmarshal(body, &timestamps); err != nil {
		return nil, fmt.Errorf("failed to decode video timestamps: %w", err)
	}
	return timestamps, nil
}

func (c *Client) post(ctx context.Context, path, videoURL string) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("video metadata endpoint is not configured")
	}

	payload, err := json.Marshal(map[string]string{"url": videoURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata endpoint returned status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
