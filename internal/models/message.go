package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Part types. A message's content is an ordered list of parts.
const (
	PartTypeText       = "text"
	PartTypeReasoning  = "reasoning"
	PartTypeToolCall   = "tool-call"
	PartTypeToolResult = "tool-result"
)

// Part is one structured segment of a chat message. Exactly one group of
// fields is populated depending on Type.
type Part struct {
	Type string `json:"type"`

	// PartTypeText
	Text string `json:"text,omitempty"`

	// PartTypeReasoning
	Reasoning string `json:"reasoning,omitempty"`

	// PartTypeToolCall / PartTypeToolResult, paired by ToolCallID.
	ToolCallID string          `json:"tool_call_id,omitempty"`
	ToolName   string          `json:"tool_name,omitempty"`
	Args       json.RawMessage `json:"args,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	IsError    bool            `json:"is_error,omitempty"`
}

// TextPart builds a plain text part.
func TextPart(text string) Part {
	return Part{Type: PartTypeText, Text: text}
}

// ReasoningPart builds a reasoning trace part.
func ReasoningPart(reasoning string) Part {
	return Part{Type: PartTypeReasoning, Reasoning: reasoning}
}

// ChatMessage is the in-flight representation of a message during a turn,
// before it is serialized into a Message row.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Parts     []Part    `json:"parts"`
	CreatedAt time.Time `json:"created_at"`
}

// Text concatenates the message's plain text parts.
func (m ChatMessage) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if p.Type == PartTypeText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// MostRecentUserMessage returns the latest user message in the transcript, or
// nil if the transcript contains none.
func MostRecentUserMessage(messages []ChatMessage) *ChatMessage {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return &messages[i]
		}
	}
	return nil
}

// ToRow converts an in-flight message to its persisted form.
func (m ChatMessage) ToRow(chatID uuid.UUID) (Message, error) {
	content, err := json.Marshal(m.Parts)
	if err != nil {
		return Message{}, err
	}
	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return Message{
		ID:        m.ID,
		ChatID:    chatID,
		Role:      m.Role,
		Content:   content,
		CreatedAt: createdAt,
	}, nil
}
