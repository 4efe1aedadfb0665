// Package rag implements the retrieval middleware: it decides whether a user
// turn needs retrieved context and, if so, supplies it before the model call.
// Retrieval is an optimization, not a correctness requirement, so every
// failure degrades to pass-through.
package rag

import (
	"context"
	"fmt"
	"time"

	"mentor-backend/internal/ai/provider"
	"mentor-backend/internal/models"

	"go.uber.org/zap"
)

const contextPreamble = "Here is some relevant information that you can use to answer the question:"

// Classification outcomes for the latest user turn. Only questions trigger
// retrieval.
const (
	classQuestion  = "question"
	classStatement = "statement"
	classOther     = "other"
)

// ChunkGetter is the chunk-store collaborator interface.
type ChunkGetter interface {
	GetChunksByFilePaths(ctx context.Context, filePaths []string) ([]models.Chunk, error)
}

// Middleware intercepts outgoing model requests and splices retrieved chunks
// into the latest user turn.
type Middleware struct {
	small    provider.LanguageModel
	embedder provider.EmbeddingModel
	chunks   ChunkGetter
	topK     int
	timeout  time.Duration
	logger   *zap.Logger
}

// NewMiddleware wires the retrieval pipeline. small is the fast auxiliary
// model used for classification and hypothetical answers.
func NewMiddleware(small provider.LanguageModel, embedder provider.EmbeddingModel, chunks ChunkGetter, topK int, timeout time.Duration, logger *zap.Logger) *Middleware {
	if topK <= 0 {
		topK = 10
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Middleware{
		small:    small,
		embedder: embedder,
		chunks:   chunks,
		topK:     topK,
		timeout:  timeout,
		logger:   logger,
	}
}

// Apply runs the retrieval pipeline for one outgoing request. userEmail scopes
// chunk access to the requesting identity; selectedPaths are the user's file
// selection. The original request is returned unchanged whenever retrieval is
// not applicable or any step fails.
func (m *Middleware) Apply(ctx context.Context, req provider.GenerateRequest, userEmail string, selectedPaths []string) provider.GenerateRequest {
	if userEmail == "" || len(selectedPaths) == 0 {
		return req
	}

	recent := lastMessage(req.Messages)
	if recent == nil || recent.Role != models.RoleUser {
		return req
	}
	question := recent.Text()
	if question == "" {
		return req
	}

	classification, ok := m.classify(ctx, question)
	if !ok || classification != classQuestion {
		return req
	}

	embedding, ok := m.hypotheticalEmbedding(ctx, question)
	if !ok {
		return req
	}

	scoped := make([]string, 0, len(selectedPaths))
	for _, path := range selectedPaths {
		scoped = append(scoped, fmt.Sprintf("%s/%s", userEmail, path))
	}

	fetchCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	chunks, err := m.chunks.GetChunksByFilePaths(fetchCtx, scoped)
	if err != nil {
		m.logger.Warn("chunk fetch failed, skipping retrieval", zap.Error(err))
		return req
	}
	if len(chunks) == 0 {
		return req
	}

	top := RankTopK(embedding, chunks, m.topK)
	if len(top) == 0 {
		return req
	}

	return spliceContext(req, top)
}

// classify tags the user turn as question, statement or other.
func (m *Middleware) classify(ctx context.Context, text string) (string, bool) {
	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	classification, err := m.small.GenerateEnum(callCtx,
		"classify the user message as a question, statement, or other",
		text,
		[]string{classQuestion, classStatement, classOther},
	)
	if err != nil {
		m.logger.Warn("classification failed, skipping retrieval", zap.Error(err))
		return "", false
	}
	return classification, true
}

// hypotheticalEmbedding synthesizes a candidate answer to the question and
// embeds it. Embedding the hypothetical answer rather than the bare question
// improves retrieval recall.
func (m *Middleware) hypotheticalEmbedding(ctx context.Context, question string) ([]float32, bool) {
	genCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	answer, err := m.small.Generate(genCtx, "Answer the users question:", question)
	if err != nil {
		m.logger.Warn("hypothetical answer generation failed, skipping retrieval", zap.Error(err))
		return nil, false
	}

	embedCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	embedding, err := m.embedder.Embed(embedCtx, answer)
	if err != nil {
		m.logger.Warn("embedding failed, skipping retrieval", zap.Error(err))
		return nil, false
	}
	return embedding, true
}

// spliceContext appends the retrieved chunk texts to the latest user message,
// preserving the original question text first. The input request is not
// mutated.
func spliceContext(req provider.GenerateRequest, chunks []models.Chunk) provider.GenerateRequest {
	messages := make([]models.ChatMessage, len(req.Messages))
	copy(messages, req.Messages)

	last := messages[len(messages)-1]
	parts := make([]models.Part, 0, len(last.Parts)+len(chunks)+1)
	parts = append(parts, last.Parts...)
	parts = append(parts, models.TextPart(contextPreamble))
	for _, chunk := range chunks {
		parts = append(parts, models.TextPart(chunk.Content))
	}
	last.Parts = parts
	messages[len(messages)-1] = last

	req.Messages = messages
	return req
}

func lastMessage(messages []models.ChatMessage) *models.ChatMessage {
	if len(messages) == 0 {
		return nil
	}
	return &messages[len(messages)-1]
}
