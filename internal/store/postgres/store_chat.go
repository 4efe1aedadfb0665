package postgres

import (
	"context"
	"errors"
	"fmt"

	db_models "mentor-backend/internal/models"
	"mentor-backend/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// CreateChat inserts a new chat record.
func (s *PostgresStore) CreateChat(ctx context.Context, arg store.CreateChatParams) (*db_models.Chat, error) {
	query := `
		INSERT INTO chats (id, user_id, title, visibility, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, title, visibility, created_at`

	chat := &db_models.Chat{}
	err := s.db.QueryRow(ctx, query,
		arg.ID,
		arg.UserID,
		arg.Title,
		db_models.VisibilityPrivate,
		arg.CreatedAt,
	).Scan(
		&chat.ID,
		&chat.UserID,
		&chat.Title,
		&chat.Visibility,
		&chat.CreatedAt,
	)
	if err != nil {
		s.logger.Error("failed to create chat", zap.String("chat_id", arg.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("database error creating chat: %w", err)
	}

	return chat, nil
}

// GetChatByID retrieves a chat by id. Returns store.ErrNotFound when missing.
func (s *PostgresStore) GetChatByID(ctx context.Context, id uuid.UUID) (*db_models.Chat, error) {
	query := `
		SELECT id, user_id, title, visibility, created_at
		FROM chats
		WHERE id = $1`

	chat := &db_models.Chat{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&chat.ID,
		&chat.UserID,
		&chat.Title,
		&chat.Visibility,
		&chat.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error fetching chat: %w", err)
	}

	return chat, nil
}

// ListChatsByUser returns the user's chats, newest first.
func (s *PostgresStore) ListChatsByUser(ctx context.Context, userID uuid.UUID) ([]db_models.Chat, error) {
	query := `
		SELECT id, user_id, title, visibility, created_at
		FROM chats
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("database error listing chats: %w", err)
	}
	defer rows.Close()

	var chats []db_models.Chat
	for rows.Next() {
		var chat db_models.Chat
		if err := rows.Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.Visibility, &chat.CreatedAt); err != nil {
			return nil, fmt.Errorf("database error scanning chat: %w", err)
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating chats: %w", err)
	}

	return chats, nil
}

// UpdateChatVisibility switches a chat between private and public.
func (s *PostgresStore) UpdateChatVisibility(ctx context.Context, id uuid.UUID, visibility string) error {
	tag, err := s.db.Exec(ctx, `UPDATE chats SET visibility = $2 WHERE id = $1`, id, visibility)
	if err != nil {
		return fmt.Errorf("database error updating chat visibility: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteChat removes a chat along with its messages and votes.
func (s *PostgresStore) DeleteChat(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("database error starting delete transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM votes WHERE chat_id = $1`, id); err != nil {
		return fmt.Errorf("database error deleting votes: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE chat_id = $1`, id); err != nil {
		return fmt.Errorf("database error deleting messages: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM chats WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("database error deleting chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	return tx.Commit(ctx)
}

// AppendMessages inserts messages into the append-only message log.
func (s *PostgresStore) AppendMessages(ctx context.Context, messages []db_models.Message) error {
	if len(messages) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, msg := range messages {
		batch.Queue(`
			INSERT INTO messages (id, chat_id, role, content, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			msg.ID, msg.ChatID, msg.Role, msg.Content, msg.CreatedAt,
		)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range messages {
		if _, err := results.Exec(); err != nil {
			s.logger.Error("failed to append message batch", zap.Error(err))
			return fmt.Errorf("database error appending messages: %w", err)
		}
	}

	return nil
}

// GetMessagesByChatID returns a chat's messages in creation order.
func (s *PostgresStore) GetMessagesByChatID(ctx context.Context, chatID uuid.UUID) ([]db_models.Message, error) {
	query := `
		SELECT id, chat_id, role, content, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC`

	rows, err := s.db.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("database error listing messages: %w", err)
	}
	defer rows.Close()

	var messages []db_models.Message
	for rows.Next() {
		var msg db_models.Message
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("database error scanning message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating messages: %w", err)
	}

	return messages, nil
}

// UpsertVote records feedback on a message, replacing any previous vote.
func (s *PostgresStore) UpsertVote(ctx context.Context, vote db_models.Vote) error {
	query := `
		INSERT INTO votes (chat_id, message_id, is_upvoted)
		VALUES ($1, $2, $3)
		ON CONFLICT (chat_id, message_id) DO UPDATE SET is_upvoted = EXCLUDED.is_upvoted`

	if _, err := s.db.Exec(ctx, query, vote.ChatID, vote.MessageID, vote.IsUpvoted); err != nil {
		return fmt.Errorf("database error upserting vote: %w", err)
	}
	return nil
}

// ListVotesByChatID returns all votes recorded against a chat's messages.
func (s *PostgresStore) ListVotesByChatID(ctx context.Context, chatID uuid.UUID) ([]db_models.Vote, error) {
	rows, err := s.db.Query(ctx, `SELECT chat_id, message_id, is_upvoted FROM votes WHERE chat_id = $1`, chatID)
	if err != nil {
		return nil, fmt.Errorf("database error listing votes: %w", err)
	}
	defer rows.Close()

	var votes []db_models.Vote
	for rows.Next() {
		var vote db_models.Vote
		if err := rows.Scan(&vote.ChatID, &vote.MessageID, &vote.IsUpvoted); err != nil {
			return nil, fmt.Errorf("database error scanning vote: %w", err)
		}
		votes = append(votes, vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating votes: %w", err)
	}

	return votes, nil
}
