package postgres

import (
	"context"
	"errors"
	"fmt"

	db_models "mentor-backend/internal/models"
	"mentor-backend/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Compile-time check to ensure PostgresStore implements store.Store
var _ store.Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresStore(db *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// GetUserByEmail retrieves a user by their email address.
// Returns store.ErrNotFound if the user does not exist.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*db_models.User, error) {
	query := `
		SELECT id, email, hashed_password, created_at, updated_at
		FROM users
		WHERE email = $1`

	user := &db_models.User{}
	err := s.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		s.logger.Error("failed to query user by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("database error fetching user by email: %w", err)
	}

	return user, nil
}

// CreateUser inserts a new user record into the database.
func (s *PostgresStore) CreateUser(ctx context.Context, user *db_models.User) error {
	query := `
		INSERT INTO users (id, email, hashed_password)
		VALUES ($1, $2, $3)`
	// created_at and updated_at have database defaults (NOW())

	_, err := s.db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.HashedPassword,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// "23505" is unique_violation (duplicate email)
			s.logger.Error("postgres error creating user",
				zap.String("email", user.Email),
				zap.String("code", pgErr.Code),
				zap.String("detail", pgErr.Detail))
		}
		return fmt.Errorf("database error creating user: %w", err)
	}

	return nil
}
