package httputil

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, 201, map[string]int{"count": 3})

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"count":3}`, rec.Body.String())
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, 404, "chat not found")

	assert.Equal(t, 404, rec.Code)
	assert.JSONEq(t, `{"error":"chat not found"}`, rec.Body.String())
}

func TestStreamWriterEventFormat(t *testing.T) {
	rec := httptest.NewRecorder()
	sw, err := NewStreamWriter(rec)
	require.NoError(t, err)

	require.NoError(t, sw.WriteEvent("text-delta", map[string]string{"text_delta": "hi"}))

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "event: text-delta\ndata: {\"text_delta\":\"hi\"}\n\n", rec.Body.String())
}
