package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"mentor-backend/internal/ai/orchestrator"
	"mentor-backend/internal/ai/provider"
	"mentor-backend/internal/auth"
	"mentor-backend/internal/config"
	"mentor-backend/internal/models"
	"mentor-backend/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// memStore is an in-memory store.Store for service tests.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	chats    map[uuid.UUID]*models.Chat
	messages map[uuid.UUID][]models.Message
	votes    map[uuid.UUID][]models.Vote
	chunks   map[string]models.Chunk
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*models.User),
		chats:    make(map[uuid.UUID]*models.Chat),
		messages: make(map[uuid.UUID][]models.Message),
		votes:    make(map[uuid.UUID][]models.Vote),
		chunks:   make(map[string]models.Chunk),
	}
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (m *memStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.Email] = user
	return nil
}

func (m *memStore) CreateChat(ctx context.Context, arg store.CreateChatParams) (*models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat := &models.Chat{
		ID:         arg.ID,
		UserID:     arg.UserID,
		Title:      arg.Title,
		Visibility: models.VisibilityPrivate,
		CreatedAt:  arg.CreatedAt,
	}
	m.chats[arg.ID] = chat
	return chat, nil
}

func (m *memStore) GetChatByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.chats[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListChatsByUser(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Chat
	for _, c := range m.chats {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) UpdateChatVisibility(ctx context.Context, id uuid.UUID, visibility string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Visibility = visibility
	return nil
}

func (m *memStore) DeleteChat(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chats, id)
	delete(m.messages, id)
	delete(m.votes, id)
	return nil
}

func (m *memStore) AppendMessages(ctx context.Context, messages []models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range messages {
		m.messages[msg.ChatID] = append(m.messages[msg.ChatID], msg)
	}
	return nil
}

func (m *memStore) GetMessagesByChatID(ctx context.Context, chatID uuid.UUID) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Message(nil), m.messages[chatID]...), nil
}

func (m *memStore) UpsertVote(ctx context.Context, vote models.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	votes := m.votes[vote.ChatID]
	for i, v := range votes {
		if v.MessageID == vote.MessageID {
			votes[i] = vote
			return nil
		}
	}
	m.votes[vote.ChatID] = append(votes, vote)
	return nil
}

func (m *memStore) ListVotesByChatID(ctx context.Context, chatID uuid.UUID) ([]models.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Vote(nil), m.votes[chatID]...), nil
}

func (m *memStore) InsertChunks(ctx context.Context, chunks []models.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		m.chunks[c.ID] = c
	}
	return nil
}

func (m *memStore) GetChunksByFilePaths(ctx context.Context, filePaths []string) ([]models.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Chunk
	for _, c := range m.chunks {
		for _, p := range filePaths {
			if c.FilePath == p {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (m *memStore) ListFilePathsByPrefix(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]struct{})
	var out []string
	for _, c := range m.chunks {
		if strings.HasPrefix(c.FilePath, prefix) {
			if _, ok := seen[c.FilePath]; !ok {
				seen[c.FilePath] = struct{}{}
				out = append(out, c.FilePath)
			}
		}
	}
	return out, nil
}

func (m *memStore) DeleteChunksByFilePath(ctx context.Context, filePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.chunks {
		if c.FilePath == filePath {
			delete(m.chunks, id)
		}
	}
	return nil
}

// cannedModel answers every stream with fixed text and every one-shot call
// with fixed values.
type cannedModel struct {
	streamText string
	generated  string
	enum       string
	object     json.RawMessage
	objectErr  error
}

func (c *cannedModel) Stream(ctx context.Context, req provider.GenerateRequest) (<-chan provider.StreamEvent, error) {
	out := make(chan provider.StreamEvent, 4)
	out <- provider.StreamEvent{Type: provider.EventTextDelta, TextDelta: c.streamText}
	out <- provider.StreamEvent{Type: provider.EventFinish, FinishReason: provider.FinishReasonStop}
	close(out)
	return out, nil
}

func (c *cannedModel) Generate(ctx context.Context, system, prompt string) (string, error) {
	return c.generated, nil
}

func (c *cannedModel) GenerateObject(ctx context.Context, system, prompt string, schema *genai.Schema) (json.RawMessage, error) {
	return c.object, c.objectErr
}

func (c *cannedModel) GenerateEnum(ctx context.Context, system, prompt string, values []string) (string, error) {
	if c.enum != "" {
		return c.enum, nil
	}
	return "other", nil
}

func testConfig() *config.Config {
	return &config.Config{
		DefaultChatModel: "chat-model-large",
		SmallModel:       "chat-model-small",
		TitleModel:       "title-model",
		MaxSteps:         5,
		ToolTimeout:      time.Second,
		AuxTimeout:       time.Second,
		RetrievalK:       10,
	}
}

func newTestChatService(t *testing.T, st store.Store, model *cannedModel) *ChatService {
	t.Helper()
	registry := provider.NewRegistry("chat-model-large")
	registry.Register("chat-model-large", model)
	registry.Register("chat-model-small", model)
	registry.Register("title-model", model)

	orch := orchestrator.New(model, orchestrator.Config{MaxSteps: 5, ToolTimeout: time.Second}, zap.NewNop())
	return NewChatService(st, registry, orch, nil, Integrations{}, testConfig(), zap.NewNop())
}

func turnRequest(chatID uuid.UUID, text string) models.TurnRequest {
	return models.TurnRequest{
		ID: chatID,
		Messages: []models.ChatMessage{{
			ID:        uuid.New(),
			Role:      models.RoleUser,
			Parts:     []models.Part{models.TextPart(text)},
			CreatedAt: time.Now(),
		}},
		Group: "chat",
	}
}

func TestRunTurnCreatesChatAndPersists(t *testing.T) {
	st := newMemStore()
	model := &cannedModel{streamText: "here is my answer", generated: "Generated Title"}
	svc := newTestChatService(t, st, model)

	session := auth.Session{UserID: uuid.New(), Email: "user@example.com"}
	chatID := uuid.New()

	run, err := svc.RunTurn(context.Background(), TurnInput{
		Session: session,
		Request: turnRequest(chatID, "what is a goroutine?"),
	})
	require.NoError(t, err)

	for range run.Events() {
	}
	_, _, err = run.Wait()
	require.NoError(t, err)

	chat, err := st.GetChatByID(context.Background(), chatID)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, chat.UserID)
	assert.Equal(t, "Generated Title", chat.Title)
	assert.Equal(t, models.VisibilityPrivate, chat.Visibility)

	// Persistence runs detached; wait for both messages to land.
	require.Eventually(t, func() bool {
		msgs, _ := st.GetMessagesByChatID(context.Background(), chatID)
		return len(msgs) == 2
	}, 2*time.Second, 10*time.Millisecond)

	msgs, _ := st.GetMessagesByChatID(context.Background(), chatID)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)
}

func TestRunTurnRejectsForeignChat(t *testing.T) {
	st := newMemStore()
	owner := uuid.New()
	chatID := uuid.New()
	_, err := st.CreateChat(context.Background(), store.CreateChatParams{ID: chatID, UserID: owner, Title: "t"})
	require.NoError(t, err)

	svc := newTestChatService(t, st, &cannedModel{streamText: "x"})
	_, err = svc.RunTurn(context.Background(), TurnInput{
		Session: auth.Session{UserID: uuid.New(), Email: "intruder@example.com"},
		Request: turnRequest(chatID, "hi"),
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRunTurnRequiresUserMessage(t *testing.T) {
	svc := newTestChatService(t, newMemStore(), &cannedModel{})

	req := models.TurnRequest{ID: uuid.New(), Messages: []models.ChatMessage{{
		ID:    uuid.New(),
		Role:  models.RoleAssistant,
		Parts: []models.Part{models.TextPart("previous answer")},
	}}}
	_, err := svc.RunTurn(context.Background(), TurnInput{
		Session: auth.Session{UserID: uuid.New(), Email: "u@example.com"},
		Request: req,
	})
	assert.ErrorIs(t, err, ErrNoUserMessage)
}

func TestGetChatVisibility(t *testing.T) {
	st := newMemStore()
	owner := uuid.New()
	stranger := uuid.New()
	chatID := uuid.New()
	_, err := st.CreateChat(context.Background(), store.CreateChatParams{ID: chatID, UserID: owner, Title: "t"})
	require.NoError(t, err)

	svc := newTestChatService(t, st, &cannedModel{})

	_, err = svc.GetChat(context.Background(), chatID, owner)
	assert.NoError(t, err)

	_, err = svc.GetChat(context.Background(), chatID, stranger)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, st.UpdateChatVisibility(context.Background(), chatID, models.VisibilityPublic))
	_, err = svc.GetChat(context.Background(), chatID, stranger)
	assert.NoError(t, err)
}

func TestGetChatNotFound(t *testing.T) {
	svc := newTestChatService(t, newMemStore(), &cannedModel{})
	_, err := svc.GetChat(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestDeleteChatOwnerOnly(t *testing.T) {
	st := newMemStore()
	owner := uuid.New()
	chatID := uuid.New()
	_, err := st.CreateChat(context.Background(), store.CreateChatParams{ID: chatID, UserID: owner, Title: "t"})
	require.NoError(t, err)

	svc := newTestChatService(t, st, &cannedModel{})

	assert.ErrorIs(t, svc.DeleteChat(context.Background(), chatID, uuid.New()), ErrForbidden)
	assert.NoError(t, svc.DeleteChat(context.Background(), chatID, owner))

	_, err = st.GetChatByID(context.Background(), chatID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateVisibilityValidatesValue(t *testing.T) {
	st := newMemStore()
	owner := uuid.New()
	chatID := uuid.New()
	_, err := st.CreateChat(context.Background(), store.CreateChatParams{ID: chatID, UserID: owner, Title: "t"})
	require.NoError(t, err)

	svc := newTestChatService(t, st, &cannedModel{})

	assert.ErrorIs(t, svc.UpdateVisibility(context.Background(), chatID, owner, "unlisted"), ErrBadVisibility)
	assert.NoError(t, svc.UpdateVisibility(context.Background(), chatID, owner, models.VisibilityPublic))
}

func TestVoteUpsertsFeedback(t *testing.T) {
	st := newMemStore()
	owner := uuid.New()
	chatID := uuid.New()
	messageID := uuid.New()
	_, err := st.CreateChat(context.Background(), store.CreateChatParams{ID: chatID, UserID: owner, Title: "t"})
	require.NoError(t, err)

	svc := newTestChatService(t, st, &cannedModel{})

	assert.ErrorIs(t, svc.Vote(context.Background(), owner, models.VoteRequest{ChatID: chatID, MessageID: messageID, Type: "sideways"}), ErrInvalidVote)

	require.NoError(t, svc.Vote(context.Background(), owner, models.VoteRequest{ChatID: chatID, MessageID: messageID, Type: "up"}))
	require.NoError(t, svc.Vote(context.Background(), owner, models.VoteRequest{ChatID: chatID, MessageID: messageID, Type: "down"}))

	votes, err := svc.ListVotes(context.Background(), chatID, owner)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.False(t, votes[0].IsUpvoted)
}

func TestSuggestQuestions(t *testing.T) {
	model := &cannedModel{object: json.RawMessage(`{"questions":["What about channels?","How does select work?","When to use mutexes?"]}`)}
	svc := newTestChatService(t, newMemStore(), model)

	questions, err := svc.SuggestQuestions(context.Background(), []models.ChatMessage{{
		ID:    uuid.New(),
		Role:  models.RoleUser,
		Parts: []models.Part{models.TextPart("tell me about goroutines")},
	}})
	require.NoError(t, err)
	assert.Len(t, questions, 3)
}

func TestSuggestQuestionsEmptyTranscript(t *testing.T) {
	svc := newTestChatService(t, newMemStore(), &cannedModel{})
	_, err := svc.SuggestQuestions(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}

func TestSuggestQuestionsModelFailure(t *testing.T) {
	model := &cannedModel{objectErr: errors.New("model down")}
	svc := newTestChatService(t, newMemStore(), model)

	_, err := svc.SuggestQuestions(context.Background(), []models.ChatMessage{{
		ID:    uuid.New(),
		Role:  models.RoleUser,
		Parts: []models.Part{models.TextPart("hello")},
	}})
	assert.Error(t, err)
}
