package tools

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestFindReturnsNoSuchTool(t *testing.T) {
	active := []Tool{NewMemoryManager(nil, "u")}

	tool, err := Find(active, "memoryManager")
	require.NoError(t, err)
	assert.Equal(t, "memoryManager", tool.Name())

	_, err = Find(active, "teleport")
	assert.ErrorIs(t, err, ErrNoSuchTool)
}

func TestDeclarationsCoverActiveSet(t *testing.T) {
	active := []Tool{NewMemoryManager(nil, "u"), NewDateTime(nil, nil, nil)}

	decls := Declarations(active)

	require.Len(t, decls, 2)
	assert.Equal(t, "memoryManager", decls[0].Name)
	assert.Equal(t, "datetime", decls[1].Name)
	assert.NotNil(t, decls[0].Parameters)
}

func TestValidateArgs(t *testing.T) {
	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"action": {Type: genai.TypeString, Enum: []string{"add", "search"}},
			"count":  {Type: genai.TypeInteger},
			"tags":   {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		},
		Required: []string{"action"},
	}

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"action":"add"}`, false},
		{"valid with extras", `{"action":"search","unknown":"ignored"}`, false},
		{"valid array", `{"action":"add","tags":["a","b"]}`, false},
		{"missing required", `{}`, true},
		{"null required", `{"action":null}`, true},
		{"enum violation", `{"action":"delete"}`, true},
		{"wrong type", `{"action":"add","count":"three"}`, true},
		{"bad array item", `{"action":"add","tags":[1]}`, true},
		{"not an object", `"just a string"`, true},
		{"empty treated as object", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArgs("test", schema, json.RawMessage(tt.raw))
			if tt.wantErr {
				var validationErr *ValidationError
				require.Error(t, err)
				assert.True(t, errors.As(err, &validationErr))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateArgsNilSchemaAcceptsAnything(t *testing.T) {
	assert.NoError(t, ValidateArgs("test", nil, json.RawMessage(`not even json`)))
}
