package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeResolver struct {
	tz  string
	err error
}

func (f *fakeResolver) TimezoneID(ctx context.Context, latitude, longitude float64, at time.Time) (string, error) {
	return f.tz, f.err
}

func executeDateTime(t *testing.T, tool *DateTime) DateTimeResult {
	t.Helper()
	out, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	result, ok := out.(DateTimeResult)
	require.True(t, ok)
	return result
}

func TestDateTimeResolvesCallerTimezone(t *testing.T) {
	tool := NewDateTime(&fakeResolver{tz: "America/New_York"}, &Geo{Latitude: 40.7, Longitude: -74}, zap.NewNop())
	tool.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	result := executeDateTime(t, tool)

	assert.Equal(t, "America/New_York", result.Timezone)
	assert.Equal(t, "2025-06-15T12:00:00Z", result.ISO)
	// New York is UTC-4 in June.
	assert.Equal(t, "Sunday, June 15, 2025", result.Formatted.Date)
	assert.Equal(t, "08:00:00 AM", result.Formatted.Time)
}

func TestDateTimeFallsBackToUTCOnLookupFailure(t *testing.T) {
	tool := NewDateTime(&fakeResolver{err: errors.New("quota exceeded")}, &Geo{Latitude: 1, Longitude: 1}, zap.NewNop())
	tool.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	result := executeDateTime(t, tool)

	assert.Equal(t, "UTC", result.Timezone)
	assert.Equal(t, "12:00:00 PM", result.Formatted.Time)
}

func TestDateTimeWithoutGeoUsesUTC(t *testing.T) {
	tool := NewDateTime(&fakeResolver{tz: "Asia/Tokyo"}, nil, zap.NewNop())
	tool.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	result := executeDateTime(t, tool)

	assert.Equal(t, "UTC", result.Timezone)
	assert.Equal(t, int64(1735787045000), result.Timestamp)
	assert.Equal(t, "Jan 2, 2025", result.Formatted.DateShort)
}

func TestDateTimeUnknownZoneIDFallsBack(t *testing.T) {
	tool := NewDateTime(&fakeResolver{tz: "Not/AZone"}, &Geo{}, zap.NewNop())

	result := executeDateTime(t, tool)
	assert.Equal(t, "UTC", result.Timezone)
}
