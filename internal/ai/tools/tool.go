// Package tools defines the callable capabilities exposed to the model: each
// tool declares a typed argument schema, validated before execution, and an
// asynchronous execution contract. Tools share no mutable state between
// invocations beyond an explicitly passed identity.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mentor-backend/internal/ai/provider"

	"google.golang.org/genai"
)

// ErrNoSuchTool is returned when the model asks for a capability that does not
// exist. This failure class is never repaired.
var ErrNoSuchTool = errors.New("no such tool")

// ValidationError reports arguments that do not conform to a tool's schema.
// It is a distinct failure class from execution failure: validation errors are
// eligible for one repair attempt.
type ValidationError struct {
	Tool   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %q: %s", e.Tool, e.Reason)
}

// Tool is one independently invocable capability.
type Tool interface {
	Name() string
	Description() string
	// Schema declares the argument structure. A nil schema means the tool
	// takes no arguments.
	Schema() *genai.Schema
	// Execute runs the tool. Expected user-level failures (missing optional
	// context, empty results) are encoded in the result value; returned
	// errors indicate execution failure.
	Execute(ctx context.Context, args json.RawMessage) (any, error)
}

// Find returns the named tool from the active set.
func Find(active []Tool, name string) (Tool, error) {
	for _, t := range active {
		if t.Name() == name {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoSuchTool, name)
}

// Declarations builds the provider-facing declarations for an active tool set.
func Declarations(active []Tool) []provider.ToolDeclaration {
	decls := make([]provider.ToolDeclaration, 0, len(active))
	for _, t := range active {
		decls = append(decls, provider.ToolDeclaration{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Schema(),
		})
	}
	return decls
}

// ValidateArgs checks raw arguments against a tool's declared schema. A nil
// schema accepts anything. Returns *ValidationError on mismatch.
func ValidateArgs(toolName string, schema *genai.Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return &ValidationError{Tool: toolName, Reason: fmt.Sprintf("arguments are not a JSON object: %v", err)}
	}

	for _, required := range schema.Required {
		v, ok := args[required]
		if !ok || v == nil {
			return &ValidationError{Tool: toolName, Reason: fmt.Sprintf("missing required field %q", required)}
		}
	}

	for key, value := range args {
		propSchema, declared := schema.Properties[key]
		if !declared {
			// Extra fields are tolerated; the tool ignores them.
			continue
		}
		if value == nil {
			continue
		}
		if err := checkValue(propSchema, value); err != nil {
			return &ValidationError{Tool: toolName, Reason: fmt.Sprintf("field %q: %v", key, err)}
		}
	}

	return nil
}

func checkValue(schema *genai.Schema, value any) error {
	if schema == nil {
		return nil
	}
	switch schema.Type {
	case genai.TypeString:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		if len(schema.Enum) > 0 {
			for _, allowed := range schema.Enum {
				if s == allowed {
					return nil
				}
			}
			return fmt.Errorf("value %q is not one of %v", s, schema.Enum)
		}
	case genai.TypeNumber, genai.TypeInteger:
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("expected number, got %T", value)
		}
	case genai.TypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", value)
		}
	case genai.TypeArray:
		items, ok := value.([]any)
		if !ok {
			return fmt.Errorf("expected array, got %T", value)
		}
		for i, item := range items {
			if err := checkValue(schema.Items, item); err != nil {
				return fmt.Errorf("item %d: %v", i, err)
			}
		}
	case genai.TypeObject:
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("expected object, got %T", value)
		}
	}
	return nil
}
