package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"mentor-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiModel implements LanguageModel on top of the Google GenAI API.
type GeminiModel struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

var _ LanguageModel = (*GeminiModel)(nil)

// NewGeminiClient creates the shared GenAI client.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return client, nil
}

// NewGeminiModel wraps one named Gemini model behind the LanguageModel contract.
func NewGeminiModel(client *genai.Client, model string, logger *zap.Logger) *GeminiModel {
	return &GeminiModel{client: client, model: model, logger: logger}
}

func (m *GeminiModel) buildConfig(req GenerateRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			})
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	switch req.ToolChoice {
	case ToolChoiceRequired:
		config.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAny},
		}
	case ToolChoiceNone:
		config.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeNone},
		}
	}
	return config
}

// toContents converts the transcript into GenAI contents. Tool results ride in
// user-role contents as function responses, per the GenAI transcript format.
func toContents(messages []models.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := genai.RoleUser
		if msg.Role == models.RoleAssistant {
			role = genai.RoleModel
		}
		var parts []*genai.Part
		for _, p := range msg.Parts {
			switch p.Type {
			case models.PartTypeText:
				if p.Text != "" {
					parts = append(parts, &genai.Part{Text: p.Text})
				}
			case models.PartTypeToolCall:
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   p.ToolCallID,
					Name: p.ToolName,
					Args: jsonToMap(p.Args),
				}})
			case models.PartTypeToolResult:
				parts = append(parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
					ID:       p.ToolCallID,
					Name:     p.ToolName,
					Response: jsonToMap(p.Result),
				}})
			}
			// Reasoning parts are an output artifact and are not replayed.
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, &genai.Content{Role: string(role), Parts: parts})
	}
	return contents
}

// jsonToMap decodes a JSON object, wrapping non-object payloads so the
// provider always receives a map.
func jsonToMap(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj
	}
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return map[string]any{"result": v}
	}
	return map[string]any{"result": string(raw)}
}

// Stream implements LanguageModel.
func (m *GeminiModel) Stream(ctx context.Context, req GenerateRequest) (<-chan StreamEvent, error) {
	contents := toContents(req.Messages)
	if len(contents) == 0 {
		return nil, fmt.Errorf("empty transcript")
	}
	config := m.buildConfig(req)

	events := make(chan StreamEvent)
	go func() {
		defer close(events)

		sawToolCall := false
		for resp, err := range m.client.Models.GenerateContentStream(ctx, m.model, contents, config) {
			if err != nil {
				m.logger.Warn("gemini stream failed", zap.String("model", m.model), zap.Error(err))
				events <- StreamEvent{Type: EventError, Err: err}
				return
			}
			if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				continue
			}
			for _, part := range resp.Candidates[0].Content.Parts {
				switch {
				case part.FunctionCall != nil:
					sawToolCall = true
					call := &ToolCall{
						ID:   part.FunctionCall.ID,
						Name: part.FunctionCall.Name,
					}
					if call.ID == "" {
						call.ID = uuid.New().String()
					}
					if args, err := json.Marshal(part.FunctionCall.Args); err == nil {
						call.Args = args
					} else {
						call.Args = json.RawMessage("{}")
					}
					events <- StreamEvent{Type: EventToolCall, ToolCall: call}
				case part.Thought && part.Text != "":
					events <- StreamEvent{Type: EventReasoningDelta, ReasoningDelta: part.Text}
				case part.Text != "":
					events <- StreamEvent{Type: EventTextDelta, TextDelta: part.Text}
				}
			}
		}

		reason := FinishReasonStop
		if sawToolCall {
			reason = FinishReasonToolCalls
		}
		events <- StreamEvent{Type: EventFinish, FinishReason: reason}
	}()

	return events, nil
}

// Generate implements LanguageModel.
func (m *GeminiModel) Generate(ctx context.Context, system, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	resp, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	return resp.Text(), nil
}

// GenerateObject implements LanguageModel.
func (m *GeminiModel) GenerateObject(ctx context.Context, system, prompt string, schema *genai.Schema) (json.RawMessage, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	resp, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("gemini object generation failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("gemini object generation returned empty output")
	}
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("gemini object generation returned invalid JSON")
	}
	return json.RawMessage(text), nil
}

// GenerateEnum implements LanguageModel.
func (m *GeminiModel) GenerateEnum(ctx context.Context, system, prompt string, values []string) (string, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "text/x.enum",
		ResponseSchema:   &genai.Schema{Type: genai.TypeString, Enum: values},
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	resp, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini enum generation failed: %w", err)
	}
	out := strings.TrimSpace(resp.Text())
	for _, v := range values {
		if strings.EqualFold(out, v) {
			return v, nil
		}
	}
	return "", fmt.Errorf("gemini enum generation returned %q, not one of the allowed values", out)
}
