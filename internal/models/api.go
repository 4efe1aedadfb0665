package models

import (
	"time"

	"github.com/google/uuid"
)

// --- Request Structs ---

// SignupRequest defines the expected body for the signup endpoint.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest defines the expected body for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TurnRequest is the body of POST /v1/chat: one user turn against a
// conversation, plus the client's view of the transcript so far.
type TurnRequest struct {
	ID                uuid.UUID     `json:"id"`
	Messages          []ChatMessage `json:"messages"`
	Group             string        `json:"group"`
	SelectedChatModel string        `json:"selectedChatModel"`
	SelectedFilePaths []string      `json:"selectedFilePaths"`
}

// UpdateVisibilityRequest changes a chat between private and public.
type UpdateVisibilityRequest struct {
	Visibility string `json:"visibility"`
}

// VoteRequest records feedback on an assistant message.
type VoteRequest struct {
	ChatID    uuid.UUID `json:"chat_id"`
	MessageID uuid.UUID `json:"message_id"`
	Type      string    `json:"type"` // "up" | "down"
}

// SuggestionsRequest asks for follow-up questions for a transcript.
type SuggestionsRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// --- Response Structs ---

// UserResponse defines the user information returned by the API.
// Avoid returning sensitive info like HashedPassword.
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// AuthResponse defines the response body for successful authentication.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// ChatResponse is a conversation with its full message history.
type ChatResponse struct {
	ID         uuid.UUID     `json:"id"`
	UserID     uuid.UUID     `json:"user_id"`
	Title      string        `json:"title"`
	Visibility string        `json:"visibility"`
	CreatedAt  time.Time     `json:"created_at"`
	Messages   []ChatMessage `json:"messages"`
}

// HistoryResponse lists the caller's chats, newest first.
type HistoryResponse struct {
	Chats []Chat `json:"chats"`
}

// SuggestionsResponse carries generated follow-up questions.
type SuggestionsResponse struct {
	Questions []string `json:"questions"`
}

// FileUploadResponse reports the outcome of an upload.
type FileUploadResponse struct {
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
}

// FileListResponse lists the caller's uploaded filenames.
type FileListResponse struct {
	Filenames []string `json:"filenames"`
}
