package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents a user in the database.
type User struct {
	ID             uuid.UUID `db:"id"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Chat visibility values.
const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
)

// Chat represents a conversation in the database. Chats are created lazily on
// the first user turn; the title is generated from that turn.
type Chat struct {
	ID         uuid.UUID `db:"id"`
	UserID     uuid.UUID `db:"user_id"`
	Title      string    `db:"title"`
	Visibility string    `db:"visibility"` // "private" | "public"
	CreatedAt  time.Time `db:"created_at"`
}

// Message represents a persisted message row. Content holds the JSON-encoded
// ordered part list (see Part in message.go).
type Message struct {
	ID        uuid.UUID       `db:"id"`
	ChatID    uuid.UUID       `db:"chat_id"`
	Role      string          `db:"role"` // "user" | "assistant" | "tool"
	Content   json.RawMessage `db:"content"`
	CreatedAt time.Time       `db:"created_at"`
}

// Chunk is one embedded slice of an uploaded file. Chunks are created at upload
// time and only ever read back by the retrieval middleware; they are deleted
// when the owning file is deleted.
type Chunk struct {
	ID        string    `db:"id"`        // "<email>/<filename>/<index>"
	FilePath  string    `db:"file_path"` // "<email>/<filename>"
	Content   string    `db:"content"`
	Embedding []float32 `db:"embedding"`
}

// Vote records user feedback on a single assistant message.
type Vote struct {
	ChatID    uuid.UUID `db:"chat_id"`
	MessageID uuid.UUID `db:"message_id"`
	IsUpvoted bool      `db:"is_upvoted"`
}
