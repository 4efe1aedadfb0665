package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"mentor-backend/internal/auth"
	"mentor-backend/internal/models"
	"mentor-backend/internal/services"
	"mentor-backend/pkg/httputil"

	"go.uber.org/zap"
)

// maxUploadBytes caps the accepted file size.
const maxUploadBytes = 10 << 20

// FileService defines the interface expected from the file service.
type FileService interface {
	Upload(ctx context.Context, userEmail, filename string, content []byte) (*models.FileUploadResponse, error)
	List(ctx context.Context, userEmail string) ([]string, error)
	Delete(ctx context.Context, userEmail, filename string) error
}

type FileHandler struct {
	fileService FileService
	logger      *zap.Logger
}

func NewFileHandler(fileSvc FileService, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileSvc,
		logger:      logger,
	}
}

// HandleUpload handles POST /v1/files/upload?filename=... with the raw file
// body as the request body.
func (h *FileHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		httputil.RespondError(w, http.StatusBadRequest, "filename query parameter is required")
		return
	}

	content, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	defer r.Body.Close()

	resp, err := h.fileService.Upload(r.Context(), session.Email, filename, content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidFilename), errors.Is(err, services.ErrEmptyFile):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("file upload failed", zap.String("filename", filename), zap.Error(err))
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to index file")
		}
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, resp)
}

// HandleList handles GET /v1/files/list.
func (h *FileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	names, err := h.fileService.List(r.Context(), session.Email)
	if err != nil {
		h.logger.Error("listing files failed", zap.Error(err))
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list files")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.FileListResponse{Filenames: names})
}

// HandleDelete handles DELETE /v1/files/delete?filename=...
func (h *FileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		httputil.RespondError(w, http.StatusBadRequest, "filename query parameter is required")
		return
	}

	if err := h.fileService.Delete(r.Context(), session.Email, filename); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidFilename):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrFileNotFound):
			httputil.RespondError(w, http.StatusNotFound, err.Error())
		default:
			h.logger.Error("file delete failed", zap.String("filename", filename), zap.Error(err))
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to delete file")
		}
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
