package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"mentor-backend/internal/integrations/mem0"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemoryStore struct {
	added    []mem0.Memory
	found    []mem0.Memory
	err      error
	lastUser string
}

func (f *fakeMemoryStore) Add(ctx context.Context, content, userID string) ([]mem0.Memory, error) {
	f.lastUser = userID
	return f.added, f.err
}

func (f *fakeMemoryStore) Search(ctx context.Context, query, userID string) ([]mem0.Memory, error) {
	f.lastUser = userID
	return f.found, f.err
}

func executeMemory(t *testing.T, store MemoryStore, args string) MemoryResult {
	t.Helper()
	tool := NewMemoryManager(store, "user-1")
	out, err := tool.Execute(context.Background(), json.RawMessage(args))
	require.NoError(t, err)
	result, ok := out.(MemoryResult)
	require.True(t, ok)
	return result
}

func TestMemoryAdd(t *testing.T) {
	store := &fakeMemoryStore{added: []mem0.Memory{{ID: "m1", Memory: "likes Go"}}}

	result := executeMemory(t, store, `{"action":"add","content":"likes Go"}`)

	assert.True(t, result.Success)
	require.NotNil(t, result.Memory)
	assert.Equal(t, "m1", result.Memory.ID)
	assert.Equal(t, "user-1", store.lastUser)
}

func TestMemoryAddWithoutContentIsUserError(t *testing.T) {
	result := executeMemory(t, &fakeMemoryStore{}, `{"action":"add"}`)

	assert.False(t, result.Success)
	assert.Equal(t, "Content is required for add operation", result.Message)
}

func TestMemorySearch(t *testing.T) {
	store := &fakeMemoryStore{found: []mem0.Memory{{ID: "m2", Memory: "uses pgx", Score: 0.9}}}

	result := executeMemory(t, store, `{"action":"search","query":"database"}`)

	assert.True(t, result.Success)
	require.NotNil(t, result.Result)
	assert.Equal(t, "m2", result.Result.ID)
}

func TestMemorySearchWithoutQueryIsUserError(t *testing.T) {
	result := executeMemory(t, &fakeMemoryStore{}, `{"action":"search"}`)

	assert.False(t, result.Success)
	assert.Equal(t, "Query is required for search operation", result.Message)
}

func TestMemorySearchNoResults(t *testing.T) {
	result := executeMemory(t, &fakeMemoryStore{}, `{"action":"search","query":"nothing"}`)

	assert.False(t, result.Success)
	assert.Equal(t, "No results found for the search query", result.Message)
}

func TestMemoryAddNothingStored(t *testing.T) {
	result := executeMemory(t, &fakeMemoryStore{}, `{"action":"add","content":"x"}`)

	assert.False(t, result.Success)
	assert.Equal(t, "No memory added", result.Message)
}

func TestMemoryStoreFailureIsExecutionError(t *testing.T) {
	store := &fakeMemoryStore{err: errors.New("mem0 unreachable")}
	tool := NewMemoryManager(store, "user-1")

	_, err := tool.Execute(context.Background(), json.RawMessage(`{"action":"add","content":"x"}`))
	assert.Error(t, err)
}

func TestMemoryUnknownAction(t *testing.T) {
	result := executeMemory(t, &fakeMemoryStore{}, `{"action":"wipe"}`)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "wipe")
}
