// Package maps wraps the Google Maps Time Zone API, used by the datetime tool
// to resolve a caller's timezone from geolocation.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/timezone/json"

// TimezoneClient resolves coordinates to an IANA timezone id.
type TimezoneClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewTimezoneClient creates a timezone lookup client.
func NewTimezoneClient(apiKey string) *TimezoneClient {
	return &TimezoneClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetBaseURL overrides the API endpoint; used in tests.
func (c *TimezoneClient) SetBaseURL(url string) {
	c.baseURL = url
}

type timezoneResponse struct {
	Status     string `json:"status"`
	TimeZoneID string `json:"timeZoneId"`
}

// TimezoneID returns the IANA timezone id for the given coordinates.
func (c *TimezoneClient) TimezoneID(ctx context.Context, latitude, longitude float64, at time.Time) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("maps API key is not configured")
	}

	query := url.Values{}
	query.Set("location", fmt.Sprintf("%f,%f", latitude, longitude))
	query.Set("timestamp", fmt.Sprintf("%d", at.Unix()))
	query.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build timezone request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("timezone request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("timezone API returned status %d", resp.StatusCode)
	}

	var parsed timezoneResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode timezone response: %w", err)
	}
	if parsed.Status != "OK" || parsed.TimeZoneID == "" {
		return "", fmt.Errorf("timezone lookup failed with status %q", parsed.Status)
	}

	return parsed.TimeZoneID, nil
}
