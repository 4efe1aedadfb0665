package orchestrator

import "encoding/json"

// Event types surfaced to the turn's consumer, in emission order: zero or
// more deltas and tool events, then exactly one finish or error event.
const (
	EventTextDelta      = "text-delta"
	EventReasoningDelta = "reasoning-delta"
	EventToolCall       = "tool-call"
	EventToolResult     = "tool-result"
	EventFinish         = "finish"
	EventError          = "error"
)

// Event is one incremental unit of turn output pushed to the caller.
type Event struct {
	Type string `json:"type"`

	TextDelta      string `json:"text_delta,omitempty"`
	ReasoningDelta string `json:"reasoning_delta,omitempty"`

	ToolCallID string          `json:"tool_call_id,omitempty"`
	ToolName   string          `json:"tool_name,omitempty"`
	Args       json.RawMessage `json:"args,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	IsError    bool            `json:"is_error,omitempty"`

	FinishReason string `json:"finish_reason,omitempty"`

	// Message carries a generic, non-leaking error description on EventError.
	Message string `json:"message,omitempty"`
}
