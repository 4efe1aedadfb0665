// Package provider defines the collaborator interfaces for language model and
// embedding endpoints, plus the stream event vocabulary the orchestrator
// consumes. Concrete implementations live alongside (gemini.go); tests supply
// fakes.
package provider

import (
	"context"
	"encoding/json"

	"mentor-backend/internal/models"

	"google.golang.org/genai"
)

// ToolChoice controls whether the model may, must, or must not call tools.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceRequired ToolChoice = "required"
	ToolChoiceNone     ToolChoice = "none"
)

// ToolDeclaration describes one callable tool to the model.
type ToolDeclaration struct {
	Name        string
	Description string
	Parameters  *genai.Schema
}

// GenerateRequest is one outgoing model call: the accumulated transcript plus
// the active tool declarations.
type GenerateRequest struct {
	System     string
	Messages   []models.ChatMessage
	Tools      []ToolDeclaration
	ToolChoice ToolChoice
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID   string
	Name string
	Args json.RawMessage
}

// Stream event types.
const (
	EventTextDelta      = "text-delta"
	EventReasoningDelta = "reasoning-delta"
	EventToolCall       = "tool-call"
	EventFinish         = "finish"
	EventError          = "error"
)

// Finish reasons.
const (
	FinishReasonStop      = "stop"
	FinishReasonToolCalls = "tool-calls"
)

// StreamEvent is one incremental unit of model output.
type StreamEvent struct {
	Type           string
	TextDelta      string
	ReasoningDelta string
	ToolCall       *ToolCall
	FinishReason   string
	Err            error
}

// LanguageModel is the contract a generation endpoint must satisfy.
type LanguageModel interface {
	// Stream sends the request and emits incremental output. The returned
	// channel is closed after a terminal EventFinish or EventError event.
	Stream(ctx context.Context, req GenerateRequest) (<-chan StreamEvent, error)

	// Generate performs a one-shot text completion.
	Generate(ctx context.Context, system, prompt string) (string, error)

	// GenerateObject performs a completion constrained to schema-conformant JSON.
	GenerateObject(ctx context.Context, system, prompt string, schema *genai.Schema) (json.RawMessage, error)

	// GenerateEnum performs a completion constrained to exactly one of values.
	GenerateEnum(ctx context.Context, system, prompt string, values []string) (string, error)
}

// EmbeddingModel is the contract an embedding endpoint must satisfy.
type EmbeddingModel interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}
