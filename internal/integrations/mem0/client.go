// Package mem0 is a minimal client for the mem0 personal memory API, used by
// the memoryManager tool. All operations are scoped to a user id so one
// identity can never read another's memories.
package mem0

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.mem0.ai"

// Client talks to the mem0 API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a mem0 client.
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

// Memory is one stored memory record.
type Memory struct {
	ID     string  `json:"id"`
	Memory string  `json:"memory"`
	Score  float64 `json:"score,omitempty"`
}

type addRequest struct {
	Messages []addMessage `json:"messages"`
	UserID   string       `json:"user_id"`
}

type addMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Add stores one memory for userID. Returns the created records; an empty
// slice means mem0 judged the content not worth remembering.
func (c *Client) Add(ctx context.Context, content, userID string) ([]Memory, error) {
	payload := addRequest{
		Messages: []addMessage{{Role: "user", Content: content}},
		UserID:   userID,
	}
	var out []Memory
	if err := c.post(ctx, "/v1/memories/", payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type searchRequest struct {
	Query   string         `json:"query"`
	Filters map[string]any `json:"filters"`
}

// Search returns memories of userID ranked by relevance to query.
func (c *Client) Search(ctx context.Context, query, userID string) ([]Memory, error) {
	payload := searchRequest{
		Query: query,
		Filters: map[string]any{
			"AND": []map[string]any{{"user_id": userID}},
		},
	}
	var out []Memory
	if err := c.post(ctx, "/v2/memories/search/", payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	if c.apiKey == "" {
		return fmt.Errorf("mem0 API key is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mem0 request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build mem0 request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mem0 request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mem0 returned status %d: %s", resp.StatusCode, data)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode mem0 response: %w", err)
	}
	return nil
}
