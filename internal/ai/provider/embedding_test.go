package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiEmbedderDefaults(t *testing.T) {
	e := NewGeminiEmbedder(nil, "", 0)

	assert.Equal(t, "gemini-embedding-001", e.model)
	assert.Equal(t, 768, e.Dimensions())
}

func TestEmbedConfigShape(t *testing.T) {
	e := NewGeminiEmbedder(nil, "gemini-embedding-001", 768)

	cfg := e.embedConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "SEMANTIC_SIMILARITY", cfg.TaskType)
	require.NotNil(t, cfg.OutputDimensionality)
	assert.Equal(t, int32(768), *cfg.OutputDimensionality)
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	e := NewGeminiEmbedder(nil, "gemini-embedding-001", 768)

	embeddings, err := e.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, embeddings)
}
