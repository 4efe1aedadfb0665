// Package exa is a minimal client for the Exa neural search API, used by the
// academic and video search tools.
package exa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.exa.ai"

// Client talks to the Exa API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an Exa client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetBaseURL overrides the API endpoint; used in tests.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// SearchParams configures one search request.
type SearchParams struct {
	Query          string   `json:"query"`
	Type           string   `json:"type,omitempty"` // "neural"
	UseAutoprompt  bool     `json:"useAutoprompt,omitempty"`
	NumResults     int      `json:"numResults,omitempty"`
	IncludeDomains []string `json:"includeDomains,omitempty"`
	Category       string   `json:"category,omitempty"` // e.g. "research paper"
}

// Result is one found item.
type Result struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	PublishedDate string `json:"publishedDate"`
	Author        string `json:"author"`
	Text          string `json:"text"`
	Summary       string `json:"summary"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// Search runs a neural search.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("exa API key is not configured")
	}
	return c.post(ctx, "/search", params)
}

type contentsRequest struct {
	URLs    []string `json:"urls"`
	Text    bool     `json:"text"`
	Summary bool     `json:"summary"`
}

// Contents fetches full text and a generated summary for one result URL.
// Used for per-item enrichment.
func (c *Client) Contents(ctx context.Context, url string) (*Result, error) {
	results, err := c.post(ctx, "/contents", contentsRequest{URLs: []string{url}, Text: true, Summary: true})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("exa contents returned no results for %s", url)
	}
	return &results[0], nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal exa request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build exa request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exa request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("exa returned status %d: %s", resp.StatusCode, data)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode exa response: %w", err)
	}
	return parsed.Results, nil
}
