package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"mentor-backend/internal/ai/groups"
	"mentor-backend/internal/ai/orchestrator"
	"mentor-backend/internal/ai/provider"
	"mentor-backend/internal/ai/rag"
	"mentor-backend/internal/ai/tools"
	"mentor-backend/internal/auth"
	"mentor-backend/internal/config"
	"mentor-backend/internal/models"
	"mentor-backend/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Custom errors for chat service
var (
	ErrChatNotFound    = errors.New("chat not found")
	ErrForbidden       = errors.New("not allowed to access this chat")
	ErrNoUserMessage   = errors.New("request contains no user message")
	ErrInvalidVote     = errors.New("vote type must be up or down")
	ErrBadVisibility   = errors.New("visibility must be private or public")
	ErrEmptyTranscript = errors.New("transcript is empty")
)

// Integrations bundles the optional external clients the tool set is built
// from. Any field may be nil; the corresponding capability degrades.
type Integrations struct {
	Papers   tools.PaperSearcher
	Videos   tools.VideoSearcher
	Metadata tools.VideoMetadata
	Memory   tools.MemoryStore
	Timezone tools.TimezoneResolver
}

type ChatService struct {
	store        store.Store
	registry     *provider.Registry
	orchestrator *orchestrator.Orchestrator
	retrieval    *rag.Middleware
	integrations Integrations
	cfg          *config.Config
	logger       *zap.Logger
	locks        *chatLocks
}

func NewChatService(
	s store.Store,
	registry *provider.Registry,
	orch *orchestrator.Orchestrator,
	retrieval *rag.Middleware,
	integrations Integrations,
	cfg *config.Config,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		store:        s,
		registry:     registry,
		orchestrator: orch,
		retrieval:    retrieval,
		integrations: integrations,
		cfg:          cfg,
		logger:       logger,
		locks:        newChatLocks(),
	}
}

// TurnInput is one user turn as received by the transport layer.
type TurnInput struct {
	Session auth.Session
	Request models.TurnRequest
	// Geo is the caller's approximate location from transport headers; may be nil.
	Geo *tools.Geo
}

// RunTurn executes one conversation turn. It ensures the chat row exists
// (creating it with a generated title on first contact), persists the user
// message before generation starts, then launches the orchestrated loop. The
// returned Run streams events to the caller; response persistence happens in
// the background once the loop completes, even if the client disconnects.
func (s *ChatService) RunTurn(ctx context.Context, input TurnInput) (*orchestrator.Run, error) {
	req := input.Request
	userMsg := models.MostRecentUserMessage(req.Messages)
	if userMsg == nil {
		return nil, ErrNoUserMessage
	}

	unlock := s.locks.Lock(req.ID)
	run, err := s.runTurnLocked(ctx, input, userMsg)
	if err != nil {
		unlock()
		return nil, err
	}

	// Persist the response after the loop finishes. Detached from the request
	// context so a dropped connection cannot lose the turn.
	go func() {
		defer unlock()
		s.persistResponse(context.WithoutCancel(ctx), req.ID, run)
	}()

	return run, nil
}

func (s *ChatService) runTurnLocked(ctx context.Context, input TurnInput, userMsg *models.ChatMessage) (*orchestrator.Run, error) {
	req := input.Request
	session := input.Session

	chat, err := s.store.GetChatByID(ctx, req.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		chat, err = s.createChat(ctx, req.ID, session.UserID, *userMsg)
		if err != nil {
			return nil, fmt.Errorf("creating chat failed: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("loading chat failed: %w", err)
	case chat.UserID != session.UserID:
		return nil, ErrForbidden
	}

	// The user message is durable before generation starts; a crashed turn
	// still leaves the question in the history.
	row, err := userMsg.ToRow(chat.ID)
	if err != nil {
		return nil, fmt.Errorf("encoding user message failed: %w", err)
	}
	if err := s.store.AppendMessages(ctx, []models.Message{row}); err != nil {
		return nil, fmt.Errorf("persisting user message failed: %w", err)
	}

	model, err := s.registry.Resolve(req.SelectedChatModel)
	if err != nil {
		return nil, fmt.Errorf("resolving model failed: %w", err)
	}

	profile := groups.Resolve(groups.GroupID(req.Group))
	system := profile.SystemPrompt
	if profile.ToolInstructions != "" {
		system = profile.ToolInstructions
	}

	var transform orchestrator.Transform
	if s.retrieval != nil {
		email := session.Email
		paths := req.SelectedFilePaths
		transform = func(ctx context.Context, r provider.GenerateRequest) provider.GenerateRequest {
			return s.retrieval.Apply(ctx, r, email, paths)
		}
	}

	return s.orchestrator.Run(ctx, orchestrator.RunInput{
		Model:       model,
		System:      system,
		Messages:    req.Messages,
		Tools:       s.buildTools(profile, session, input.Geo),
		RequireTool: profile.RequireTool,
		Transform:   transform,
	}), nil
}

// buildTools assembles the profile's tool set from the configured
// integrations. Tools whose backing client is missing are skipped so the
// model never sees a capability that cannot execute.
func (s *ChatService) buildTools(profile groups.Profile, session auth.Session, geo *tools.Geo) []tools.Tool {
	var active []tools.Tool
	for _, name := range profile.Tools {
		switch name {
		case groups.ToolAcademicSearch:
			if s.integrations.Papers != nil {
				active = append(active, tools.NewAcademicSearch(s.integrations.Papers, s.logger))
			}
		case groups.ToolYoutubeSearch:
			if s.integrations.Videos != nil {
				active = append(active, tools.NewYoutubeSearch(s.integrations.Videos, s.integrations.Metadata, s.logger))
			}
		case groups.ToolDateTime:
			active = append(active, tools.NewDateTime(s.integrations.Timezone, geo, s.logger))
		case groups.ToolMemoryManager:
			if s.integrations.Memory != nil {
				active = append(active, tools.NewMemoryManager(s.integrations.Memory, session.UserID.String()))
			}
		}
	}
	return active
}

func (s *ChatService) createChat(ctx context.Context, id, userID uuid.UUID, userMsg models.ChatMessage) (*models.Chat, error) {
	title := s.generateTitle(ctx, userMsg)
	return s.store.CreateChat(ctx, store.CreateChatParams{
		ID:        id,
		UserID:    userID,
		Title:     title,
		CreatedAt: time.Now(),
	})
}

// generateTitle summarizes the opening message into a chat title. Falls back
// to truncated message text when the title model is unavailable.
func (s *ChatService) generateTitle(ctx context.Context, userMsg models.ChatMessage) string {
	fallback := strings.TrimSpace(userMsg.Text())
	if len(fallback) > 60 {
		fallback = fallback[:60]
	}
	if fallback == "" {
		fallback = "New chat"
	}

	model, err := s.registry.Resolve(s.cfg.TitleModel)
	if err != nil {
		return fallback
	}

	titleCtx, cancel := context.WithTimeout(ctx, s.cfg.AuxTimeout)
	defer cancel()

	title, err := model.Generate(titleCtx, groups.TitlePrompt, userMsg.Text())
	if err != nil {
		s.logger.Warn("title generation failed", zap.Error(err))
		return fallback
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return fallback
	}
	return title
}

// persistResponse waits for the turn to finish, sanitizes its raw response
// messages and appends the survivors to the chat.
func (s *ChatService) persistResponse(ctx context.Context, chatID uuid.UUID, run *orchestrator.Run) {
	raw, reasoning, runErr := run.Wait()
	if runErr != nil {
		s.logger.Warn("turn ended with error", zap.String("chat_id", chatID.String()), zap.Error(runErr))
	}

	sanitized := orchestrator.Sanitize(raw, reasoning)
	if len(sanitized) == 0 {
		return
	}

	rows := make([]models.Message, 0, len(sanitized))
	for _, msg := range sanitized {
		row, err := msg.ToRow(chatID)
		if err != nil {
			s.logger.Error("encoding response message failed", zap.String("chat_id", chatID.String()), zap.Error(err))
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return
	}

	persistCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := s.store.AppendMessages(persistCtx, rows); err != nil {
		s.logger.Error("persisting response messages failed", zap.String("chat_id", chatID.String()), zap.Error(err))
	}
}

// GetChat returns a chat with its message history. Private chats are visible
// only to their owner; public chats to any authenticated user.
func (s *ChatService) GetChat(ctx context.Context, chatID, userID uuid.UUID) (*models.ChatResponse, error) {
	chat, err := s.store.GetChatByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("loading chat failed: %w", err)
	}
	if chat.Visibility != models.VisibilityPublic && chat.UserID != userID {
		return nil, ErrForbidden
	}

	rows, err := s.store.GetMessagesByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("loading messages failed: %w", err)
	}

	messages := make([]models.ChatMessage, 0, len(rows))
	for _, row := range rows {
		var parts []models.Part
		if err := json.Unmarshal(row.Content, &parts); err != nil {
			s.logger.Warn("skipping undecodable message", zap.String("message_id", row.ID.String()), zap.Error(err))
			continue
		}
		messages = append(messages, models.ChatMessage{
			ID:        row.ID,
			Role:      row.Role,
			Parts:     parts,
			CreatedAt: row.CreatedAt,
		})
	}

	return &models.ChatResponse{
		ID:         chat.ID,
		UserID:     chat.UserID,
		Title:      chat.Title,
		Visibility: chat.Visibility,
		CreatedAt:  chat.CreatedAt,
		Messages:   messages,
	}, nil
}

// History lists the caller's chats, newest first.
func (s *ChatService) History(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	chats, err := s.store.ListChatsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing chats failed: %w", err)
	}
	return chats, nil
}

// DeleteChat removes a chat and everything under it. Owner only.
func (s *ChatService) DeleteChat(ctx context.Context, chatID, userID uuid.UUID) error {
	chat, err := s.store.GetChatByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrChatNotFound
		}
		return fmt.Errorf("loading chat failed: %w", err)
	}
	if chat.UserID != userID {
		return ErrForbidden
	}
	if err := s.store.DeleteChat(ctx, chatID); err != nil {
		return fmt.Errorf("deleting chat failed: %w", err)
	}
	return nil
}

// UpdateVisibility flips a chat between private and public. Owner only.
func (s *ChatService) UpdateVisibility(ctx context.Context, chatID, userID uuid.UUID, visibility string) error {
	if visibility != models.VisibilityPrivate && visibility != models.VisibilityPublic {
		return ErrBadVisibility
	}
	chat, err := s.store.GetChatByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrChatNotFound
		}
		return fmt.Errorf("loading chat failed: %w", err)
	}
	if chat.UserID != userID {
		return ErrForbidden
	}
	if err := s.store.UpdateChatVisibility(ctx, chatID, visibility); err != nil {
		return fmt.Errorf("updating visibility failed: %w", err)
	}
	return nil
}

// Vote records up/down feedback on one assistant message. Owner only; a
// repeat vote on the same message overwrites the previous one.
func (s *ChatService) Vote(ctx context.Context, userID uuid.UUID, req models.VoteRequest) error {
	if req.Type != "up" && req.Type != "down" {
		return ErrInvalidVote
	}
	chat, err := s.store.GetChatByID(ctx, req.ChatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrChatNotFound
		}
		return fmt.Errorf("loading chat failed: %w", err)
	}
	if chat.UserID != userID {
		return ErrForbidden
	}
	return s.store.UpsertVote(ctx, models.Vote{
		ChatID:    req.ChatID,
		MessageID: req.MessageID,
		IsUpvoted: req.Type == "up",
	})
}

// ListVotes returns the votes for a chat, subject to the same visibility rule
// as GetChat.
func (s *ChatService) ListVotes(ctx context.Context, chatID, userID uuid.UUID) ([]models.Vote, error) {
	chat, err := s.store.GetChatByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("loading chat failed: %w", err)
	}
	if chat.Visibility != models.VisibilityPublic && chat.UserID != userID {
		return nil, ErrForbidden
	}
	return s.store.ListVotesByChatID(ctx, chatID)
}

// suggestionsSchema constrains the suggestion model to a bare list of
// question strings.
var suggestionsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"questions": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"questions"},
}

// SuggestQuestions generates follow-up questions for a transcript.
func (s *ChatService) SuggestQuestions(ctx context.Context, messages []models.ChatMessage) ([]string, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyTranscript
	}

	model, err := s.registry.Resolve(s.cfg.SmallModel)
	if err != nil {
		return nil, fmt.Errorf("resolving model failed: %w", err)
	}

	var transcript strings.Builder
	for _, msg := range messages {
		text := msg.Text()
		if text == "" {
			continue
		}
		fmt.Fprintf(&transcript, "%s: %s\n", msg.Role, text)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.AuxTimeout)
	defer cancel()

	raw, err := model.GenerateObject(genCtx, groups.SuggestionsPrompt, transcript.String(), suggestionsSchema)
	if err != nil {
		return nil, fmt.Errorf("generating suggestions failed: %w", err)
	}

	var out struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding suggestions failed: %w", err)
	}
	return out.Questions, nil
}
