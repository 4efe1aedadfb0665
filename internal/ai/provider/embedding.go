package provider

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiEmbedder implements EmbeddingModel using the GenAI embedding API.
type GeminiEmbedder struct {
	client     *genai.Client
	model      string
	taskType   string
	dimensions int
}

var _ EmbeddingModel = (*GeminiEmbedder)(nil)

// NewGeminiEmbedder creates an embedding endpoint. The dimensionality must
// match the chunk store's embedding column.
func NewGeminiEmbedder(client *genai.Client, model string, dimensions int) *GeminiEmbedder {
	if model == "" {
		model = "gemini-embedding-001"
	}
	if dimensions <= 0 {
		dimensions = 768
	}
	return &GeminiEmbedder{
		client:     client,
		model:      model,
		taskType:   "SEMANTIC_SIMILARITY",
		dimensions: dimensions,
	}
}

func (e *GeminiEmbedder) embedConfig() *genai.EmbedContentConfig {
	return &genai.EmbedContentConfig{
		TaskType:             e.taskType,
		OutputDimensionality: genai.Ptr(int32(e.dimensions)),
	}
}

// Embed generates an embedding for a single text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	result, err := e.client.Models.EmbedContent(ctx,
		e.model,
		contents,
		e.embedConfig(),
	)
	if err != nil {
		return nil, fmt.Errorf("GenAI embed failed: %w", err)
	}

	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	return result.Embeddings[0].Values, nil
}

// EmbedBatch generates embeddings for multiple texts.
// GenAI has native batch support.
func (e *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := e.client.Models.EmbedContent(ctx,
		e.model,
		contents,
		e.embedConfig(),
	)
	if err != nil {
		return nil, fmt.Errorf("GenAI batch embed failed: %w", err)
	}

	embeddings := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		embeddings[i] = emb.Values
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimensionality.
func (e *GeminiEmbedder) Dimensions() int {
	return e.dimensions
}
