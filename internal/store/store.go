package store

import (
	"context"
	"errors"
	"time"

	db_models "mentor-backend/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a specific record is not found.
var ErrNotFound = errors.New("record not found")

// CreateChatParams contains parameters for creating a chat.
type CreateChatParams struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	CreatedAt time.Time
}

// Store defines the interface for database operations.
// This allows for mocking in tests and potential DB backend switching.
type Store interface {
	// User operations
	GetUserByEmail(ctx context.Context, email string) (*db_models.User, error)
	CreateUser(ctx context.Context, user *db_models.User) error

	// Chat operations
	CreateChat(ctx context.Context, arg CreateChatParams) (*db_models.Chat, error)
	GetChatByID(ctx context.Context, id uuid.UUID) (*db_models.Chat, error)
	ListChatsByUser(ctx context.Context, userID uuid.UUID) ([]db_models.Chat, error)
	UpdateChatVisibility(ctx context.Context, id uuid.UUID, visibility string) error
	DeleteChat(ctx context.Context, id uuid.UUID) error

	// Message operations. The message log is append-only per chat.
	AppendMessages(ctx context.Context, messages []db_models.Message) error
	GetMessagesByChatID(ctx context.Context, chatID uuid.UUID) ([]db_models.Message, error)

	// Vote operations
	UpsertVote(ctx context.Context, vote db_models.Vote) error
	ListVotesByChatID(ctx context.Context, chatID uuid.UUID) ([]db_models.Vote, error)

	// Chunk operations
	InsertChunks(ctx context.Context, chunks []db_models.Chunk) error
	GetChunksByFilePaths(ctx context.Context, filePaths []string) ([]db_models.Chunk, error)
	ListFilePathsByPrefix(ctx context.Context, prefix string) ([]string, error)
	DeleteChunksByFilePath(ctx context.Context, filePath string) error
}
