package tools

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Geo is the caller's approximate location, when the transport supplied one.
type Geo struct {
	Latitude  float64
	Longitude float64
}

// TimezoneResolver resolves coordinates to an IANA timezone id.
type TimezoneResolver interface {
	TimezoneID(ctx context.Context, latitude, longitude float64, at time.Time) (string, error)
}

// DateTime reports the current date and time in the caller's timezone,
// falling back to UTC when no geolocation is available or lookup fails.
// It never returns an error.
type DateTime struct {
	resolver TimezoneResolver
	geo      *Geo
	logger   *zap.Logger
	now      func() time.Time
}

var _ Tool = (*DateTime)(nil)

// NewDateTime creates the datetime tool for one request. geo may be nil.
func NewDateTime(resolver TimezoneResolver, geo *Geo, logger *zap.Logger) *DateTime {
	return &DateTime{
		resolver: resolver,
		geo:      geo,
		logger:   logger,
		now:      time.Now,
	}
}

func (d *DateTime) Name() string { return "datetime" }

func (d *DateTime) Description() string {
	return "Get the current date and time in the user's timezone"
}

func (d *DateTime) Schema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}}
}

// DateTimeResult is the tool's output.
type DateTimeResult struct {
	Timestamp int64             `json:"timestamp"`
	ISO       string            `json:"iso"`
	Timezone  string            `json:"timezone"`
	Formatted DateTimeFormatted `json:"formatted"`
}

// DateTimeFormatted carries locale-formatted renderings of the same instant.
type DateTimeFormatted struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	DateShort string `json:"dateShort"`
	TimeShort string `json:"timeShort"`
}

func (d *DateTime) Execute(ctx context.Context, _ json.RawMessage) (any, error) {
	now := d.now()

	timezone := "UTC"
	location := time.UTC

	if d.geo != nil && d.resolver != nil {
		tzID, err := d.resolver.TimezoneID(ctx, d.geo.Latitude, d.geo.Longitude, now)
		if err != nil {
			d.logger.Debug("timezone lookup failed, using UTC", zap.Error(err))
		} else if loc, err := time.LoadLocation(tzID); err != nil {
			d.logger.Debug("unknown timezone id, using UTC", zap.String("timezone", tzID))
		} else {
			timezone = tzID
			location = loc
		}
	}

	local := now.In(location)
	return DateTimeResult{
		Timestamp: now.UnixMilli(),
		ISO:       now.UTC().Format(time.RFC3339),
		Timezone:  timezone,
		Formatted: DateTimeFormatted{
			Date:      local.Format("Monday, January 2, 2006"),
			Time:      local.Format("03:04:05 PM"),
			DateShort: local.Format("Jan 2, 2006"),
			TimeShort: local.Format("03:04 PM"),
		},
	}, nil
}
