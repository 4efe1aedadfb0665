package orchestrator

import "mentor-backend/internal/models"

// Sanitize filters a turn's raw response messages into the persistable form:
// tool-call parts without a matching tool-result are dropped, empty text
// parts are dropped, the reasoning trace is attached to the final assistant
// message, and messages left with no parts are removed entirely.
func Sanitize(messages []models.ChatMessage, reasoning string) []models.ChatMessage {
	resultIDs := make(map[string]struct{})
	for _, msg := range messages {
		if msg.Role != models.RoleTool {
			continue
		}
		for _, part := range msg.Parts {
			if part.Type == models.PartTypeToolResult {
				resultIDs[part.ToolCallID] = struct{}{}
			}
		}
	}

	lastAssistant := -1
	for i, msg := range messages {
		if msg.Role == models.RoleAssistant {
			lastAssistant = i
		}
	}

	out := make([]models.ChatMessage, 0, len(messages))
	for i, msg := range messages {
		parts := make([]models.Part, 0, len(msg.Parts))
		for _, part := range msg.Parts {
			switch part.Type {
			case models.PartTypeToolCall:
				if _, ok := resultIDs[part.ToolCallID]; ok {
					parts = append(parts, part)
				}
			case models.PartTypeText:
				if part.Text != "" {
					parts = append(parts, part)
				}
			default:
				parts = append(parts, part)
			}
		}

		if i == lastAssistant && reasoning != "" {
			parts = append(parts, models.ReasoningPart(reasoning))
		}

		if len(parts) == 0 {
			continue
		}
		msg.Parts = parts
		out = append(out, msg)
	}

	return out
}
