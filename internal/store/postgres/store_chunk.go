package postgres

import (
	"context"
	"fmt"

	db_models "mentor-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// InsertChunks stores embedded file chunks. Re-uploading a file replaces its
// chunks, so inserts upsert on the chunk id.
func (s *PostgresStore) InsertChunks(ctx context.Context, chunks []db_models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		batch.Queue(`
			INSERT INTO chunks (id, file_path, content, embedding)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content, embedding = EXCLUDED.embedding`,
			chunk.ID, chunk.FilePath, chunk.Content, chunk.Embedding,
		)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range chunks {
		if _, err := results.Exec(); err != nil {
			s.logger.Error("failed to insert chunk batch", zap.Error(err))
			return fmt.Errorf("database error inserting chunks: %w", err)
		}
	}

	return nil
}

// GetChunksByFilePaths returns all chunks belonging to the given file paths.
func (s *PostgresStore) GetChunksByFilePaths(ctx context.Context, filePaths []string) ([]db_models.Chunk, error) {
	if len(filePaths) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, file_path, content, embedding
		FROM chunks
		WHERE file_path = ANY($1)`

	rows, err := s.db.Query(ctx, query, filePaths)
	if err != nil {
		return nil, fmt.Errorf("database error fetching chunks: %w", err)
	}
	defer rows.Close()

	var chunks []db_models.Chunk
	for rows.Next() {
		var chunk db_models.Chunk
		if err := rows.Scan(&chunk.ID, &chunk.FilePath, &chunk.Content, &chunk.Embedding); err != nil {
			return nil, fmt.Errorf("database error scanning chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating chunks: %w", err)
	}

	return chunks, nil
}

// ListFilePathsByPrefix returns the distinct file paths under a prefix,
// typically "<email>/".
func (s *PostgresStore) ListFilePathsByPrefix(ctx context.Context, prefix string) ([]string, error) {
	query := `
		SELECT DISTINCT file_path
		FROM chunks
		WHERE file_path LIKE $1 || '%'
		ORDER BY file_path`

	rows, err := s.db.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("database error listing file paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("database error scanning file path: %w", err)
		}
		paths = append(paths, path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating file paths: %w", err)
	}

	return paths, nil
}

// DeleteChunksByFilePath removes every chunk of one file.
func (s *PostgresStore) DeleteChunksByFilePath(ctx context.Context, filePath string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM chunks WHERE file_path = $1`, filePath); err != nil {
		return fmt.Errorf("database error deleting chunks: %w", err)
	}
	return nil
}
