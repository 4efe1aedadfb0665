package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"mentor-backend/internal/ai/orchestrator"
	"mentor-backend/internal/ai/tools"
	"mentor-backend/internal/auth"
	"mentor-backend/internal/models"
	"mentor-backend/internal/services"
	"mentor-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatService defines the interface expected from the chat service.
type ChatService interface {
	RunTurn(ctx context.Context, input services.TurnInput) (*orchestrator.Run, error)
	GetChat(ctx context.Context, chatID, userID uuid.UUID) (*models.ChatResponse, error)
	History(ctx context.Context, userID uuid.UUID) ([]models.Chat, error)
	DeleteChat(ctx context.Context, chatID, userID uuid.UUID) error
	UpdateVisibility(ctx context.Context, chatID, userID uuid.UUID, visibility string) error
	Vote(ctx context.Context, userID uuid.UUID, req models.VoteRequest) error
	ListVotes(ctx context.Context, chatID, userID uuid.UUID) ([]models.Vote, error)
	SuggestQuestions(ctx context.Context, messages []models.ChatMessage) ([]string, error)
}

type ChatHandler struct {
	chatService ChatService
	logger      *zap.Logger
}

func NewChatHandler(chatSvc ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatSvc,
		logger:      logger,
	}
}

// geoFromRequest reads the optional geolocation headers the edge proxy sets.
func geoFromRequest(r *http.Request) *tools.Geo {
	latHeader := r.Header.Get("X-Geo-Latitude")
	lngHeader := r.Header.Get("X-Geo-Longitude")
	if latHeader == "" || lngHeader == "" {
		return nil
	}
	lat, err := strconv.ParseFloat(latHeader, 64)
	if err != nil {
		return nil
	}
	lng, err := strconv.ParseFloat(lngHeader, 64)
	if err != nil {
		return nil
	}
	return &tools.Geo{Latitude: lat, Longitude: lng}
}

// HandleTurn handles POST /v1/chat: runs one conversation turn and streams
// the model output back as server-sent events.
func (h *ChatHandler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if req.ID == uuid.Nil {
		httputil.RespondError(w, http.StatusBadRequest, "Chat id is required")
		return
	}

	run, err := h.chatService.RunTurn(r.Context(), services.TurnInput{
		Session: session,
		Request: req,
		Geo:     geoFromRequest(r),
	})
	if err != nil {
		h.logger.Warn("turn rejected", zap.String("chat_id", req.ID.String()), zap.Error(err))
		switch {
		case errors.Is(err, services.ErrNoUserMessage):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrForbidden):
			httputil.RespondError(w, http.StatusForbidden, err.Error())
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to start turn")
		}
		return
	}

	stream, err := httputil.NewStreamWriter(w)
	if err != nil {
		// The turn keeps running; persistence does not depend on this stream.
		h.logger.Error("streaming unsupported by response writer", zap.Error(err))
		return
	}

	for event := range run.Events() {
		if err := stream.WriteEvent(event.Type, event); err != nil {
			// Client went away. Drain so the turn finishes and persists.
			for range run.Events() {
			}
			return
		}
	}
}

// HandleGetChat handles GET /v1/chat/{chatID}.
func (h *ChatHandler) HandleGetChat(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	chatID, err := uuid.Parse(chi.URLParam(r, "chatID"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid chat id")
		return
	}

	chat, err := h.chatService.GetChat(r.Context(), chatID, session.UserID)
	if err != nil {
		h.respondChatError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, chat)
}

// HandleHistory handles GET /v1/history.
func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	chats, err := h.chatService.History(r.Context(), session.UserID)
	if err != nil {
		h.logger.Error("listing history failed", zap.Error(err))
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list chats")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.HistoryResponse{Chats: chats})
}

// HandleDeleteChat handles DELETE /v1/chat/{chatID}.
func (h *ChatHandler) HandleDeleteChat(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	chatID, err := uuid.Parse(chi.URLParam(r, "chatID"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid chat id")
		return
	}

	if err := h.chatService.DeleteChat(r.Context(), chatID, session.UserID); err != nil {
		h.respondChatError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleUpdateVisibility handles PATCH /v1/chat/{chatID}/visibility.
func (h *ChatHandler) HandleUpdateVisibility(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	chatID, err := uuid.Parse(chi.URLParam(r, "chatID"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid chat id")
		return
	}

	var req models.UpdateVisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.chatService.UpdateVisibility(r.Context(), chatID, session.UserID, req.Visibility); err != nil {
		if errors.Is(err, services.ErrBadVisibility) {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondChatError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"visibility": req.Visibility})
}

// HandleVote handles PATCH /v1/vote.
func (h *ChatHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.chatService.Vote(r.Context(), session.UserID, req); err != nil {
		if errors.Is(err, services.ErrInvalidVote) {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondChatError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// HandleListVotes handles GET /v1/chat/{chatID}/votes.
func (h *ChatHandler) HandleListVotes(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	chatID, err := uuid.Parse(chi.URLParam(r, "chatID"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid chat id")
		return
	}

	votes, err := h.chatService.ListVotes(r.Context(), chatID, session.UserID)
	if err != nil {
		h.respondChatError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, votes)
}

// HandleSuggestions handles POST /v1/suggestions.
func (h *ChatHandler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.SessionFromContext(r.Context()); !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.SuggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	questions, err := h.chatService.SuggestQuestions(r.Context(), req.Messages)
	if err != nil {
		if errors.Is(err, services.ErrEmptyTranscript) {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("generating suggestions failed", zap.Error(err))
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to generate suggestions")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.SuggestionsResponse{Questions: questions})
}

// respondChatError maps chat service errors to HTTP status codes.
func (h *ChatHandler) respondChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrChatNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	default:
		h.logger.Error("chat operation failed", zap.Error(err))
		httputil.RespondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
