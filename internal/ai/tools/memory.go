package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"mentor-backend/internal/integrations/mem0"

	"google.golang.org/genai"
)

// MemoryStore is the slice of the mem0 API the tool needs; tests supply fakes.
type MemoryStore interface {
	Add(ctx context.Context, content, userID string) ([]mem0.Memory, error)
	Search(ctx context.Context, query, userID string) ([]mem0.Memory, error)
}

// MemoryManager stores and retrieves personal memories scoped to the caller's
// identity. Missing required arguments are user errors encoded in the result,
// never returned as execution errors.
type MemoryManager struct {
	store  MemoryStore
	userID string
}

var _ Tool = (*MemoryManager)(nil)

// NewMemoryManager creates the memory tool bound to one user.
func NewMemoryManager(store MemoryStore, userID string) *MemoryManager {
	return &MemoryManager{store: store, userID: userID}
}

func (m *MemoryManager) Name() string { return "memoryManager" }

func (m *MemoryManager) Description() string {
	return "Manage personal memories with add and search operations."
}

func (m *MemoryManager) Schema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"action": {
				Type:        genai.TypeString,
				Enum:        []string{"add", "search"},
				Description: "The memory operation to perform",
			},
			"content": {
				Type:        genai.TypeString,
				Description: "The memory content for add operation",
			},
			"query": {
				Type:        genai.TypeString,
				Description: "The search query for search operations",
			},
		},
		Required: []string{"action"},
	}
}

type memoryArgs struct {
	Action  string `json:"action"`
	Content string `json:"content"`
	Query   string `json:"query"`
}

// MemoryResult is the tool's output.
type MemoryResult struct {
	Success bool         `json:"success"`
	Action  string       `json:"action"`
	Message string       `json:"message,omitempty"`
	Memory  *mem0.Memory `json:"memory,omitempty"`
	Result  *mem0.Memory `json:"result,omitempty"`
}

func (m *MemoryManager) Execute(ctx context.Context, raw json.RawMessage) (any, error) {
	var args memoryArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("failed to decode memory arguments: %w", err)
	}

	switch args.Action {
	case "add":
		if args.Content == "" {
			return MemoryResult{
				Success: false,
				Action:  "add",
				Message: "Content is required for add operation",
			}, nil
		}
		memories, err := m.store.Add(ctx, args.Content, m.userID)
		if err != nil {
			return nil, fmt.Errorf("memory add failed: %w", err)
		}
		if len(memories) == 0 {
			return MemoryResult{Success: false, Action: "add", Message: "No memory added"}, nil
		}
		return MemoryResult{Success: true, Action: "add", Memory: &memories[0]}, nil

	case "search":
		if args.Query == "" {
			return MemoryResult{
				Success: false,
				Action:  "search",
				Message: "Query is required for search operation",
			}, nil
		}
		memories, err := m.store.Search(ctx, args.Query, m.userID)
		if err != nil {
			return nil, fmt.Errorf("memory search failed: %w", err)
		}
		if len(memories) == 0 {
			return MemoryResult{Success: false, Action: "search", Message: "No results found for the search query"}, nil
		}
		return MemoryResult{Success: true, Action: "search", Result: &memories[0]}, nil

	default:
		return MemoryResult{
			Success: false,
			Action:  args.Action,
			Message: fmt.Sprintf("Unknown action %q, expected add or search", args.Action),
		}, nil
	}
}
