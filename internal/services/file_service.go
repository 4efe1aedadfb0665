package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mentor-backend/internal/ai/provider"
	"mentor-backend/internal/models"
	"mentor-backend/internal/store"
	"mentor-backend/internal/textsplit"

	"go.uber.org/zap"
)

// Custom errors for file service
var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrInvalidFilename = errors.New("filename must not be empty or contain '/'")
	ErrFileNotFound    = errors.New("file not found")
)

// FileService manages the per-user knowledge base: uploaded files split into
// embedded chunks, keyed under "<email>/<filename>".
type FileService struct {
	store    store.Store
	embedder provider.EmbeddingModel
	splitter *textsplit.Splitter
	logger   *zap.Logger
}

func NewFileService(s store.Store, embedder provider.EmbeddingModel, logger *zap.Logger) *FileService {
	return &FileService{
		store:    s,
		embedder: embedder,
		splitter: textsplit.New(),
		logger:   logger,
	}
}

// Upload splits content into chunks, embeds them in one batch and stores the
// result. Re-uploading the same filename replaces its chunks.
func (s *FileService) Upload(ctx context.Context, userEmail, filename string, content []byte) (*models.FileUploadResponse, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" || strings.Contains(filename, "/") {
		return nil, ErrInvalidFilename
	}

	chunks := s.splitter.Split(string(content))
	if len(chunks) == 0 {
		return nil, ErrEmptyFile
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks failed: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: %d chunks, %d embeddings", len(chunks), len(embeddings))
	}

	filePath := fmt.Sprintf("%s/%s", userEmail, filename)

	// Replace rather than accumulate when the same file is uploaded again.
	if err := s.store.DeleteChunksByFilePath(ctx, filePath); err != nil {
		return nil, fmt.Errorf("clearing previous chunks failed: %w", err)
	}

	rows := make([]models.Chunk, len(chunks))
	for i, chunk := range chunks {
		rows[i] = models.Chunk{
			ID:        fmt.Sprintf("%s/%d", filePath, i),
			FilePath:  filePath,
			Content:   chunk,
			Embedding: embeddings[i],
		}
	}
	if err := s.store.InsertChunks(ctx, rows); err != nil {
		return nil, fmt.Errorf("storing chunks failed: %w", err)
	}

	s.logger.Info("file indexed",
		zap.String("file_path", filePath),
		zap.Int("chunks", len(rows)))

	return &models.FileUploadResponse{
		Filename:   filename,
		ChunkCount: len(rows),
	}, nil
}

// List returns the caller's uploaded filenames. The email prefix is an
// internal storage detail; clients see and select bare filenames, and the
// retrieval layer re-scopes them to the caller.
func (s *FileService) List(ctx context.Context, userEmail string) ([]string, error) {
	paths, err := s.store.ListFilePathsByPrefix(ctx, userEmail+"/")
	if err != nil {
		return nil, fmt.Errorf("listing files failed: %w", err)
	}
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = strings.TrimPrefix(p, userEmail+"/")
	}
	return names, nil
}

// Delete removes a file's chunks. Only the caller's own files are reachable;
// the path is always rebuilt from the authenticated email.
func (s *FileService) Delete(ctx context.Context, userEmail, filename string) error {
	filename = strings.TrimSpace(filename)
	if filename == "" || strings.Contains(filename, "/") {
		return ErrInvalidFilename
	}
	filePath := fmt.Sprintf("%s/%s", userEmail, filename)

	paths, err := s.store.ListFilePathsByPrefix(ctx, filePath)
	if err != nil {
		return fmt.Errorf("checking file failed: %w", err)
	}
	found := false
	for _, p := range paths {
		if p == filePath {
			found = true
			break
		}
	}
	if !found {
		return ErrFileNotFound
	}

	if err := s.store.DeleteChunksByFilePath(ctx, filePath); err != nil {
		return fmt.Errorf("deleting chunks failed: %w", err)
	}
	return nil
}
