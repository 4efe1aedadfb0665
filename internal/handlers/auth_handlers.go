package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"mentor-backend/internal/models"
	"mentor-backend/internal/services"
	"mentor-backend/pkg/httputil"

	"go.uber.org/zap"
)

// AuthService defines the interface expected from the auth service.
// This promotes loose coupling and testability.
type AuthService interface {
	Signup(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
}

type AuthHandler struct {
	authService AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authSvc AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authSvc,
		logger:      logger,
	}
}

// HandleSignup handles the POST /v1/auth/signup request.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if req.Email == "" || req.Password == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.authService.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("signup failed", zap.String("email", req.Email), zap.Error(err))
		switch {
		case errors.Is(err, services.ErrUserAlreadyExists):
			httputil.RespondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, services.ErrValidation):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "Signup failed due to an internal error")
		}
		return
	}

	resp := models.UserResponse{
		ID:    user.ID,
		Email: user.Email,
	}
	httputil.RespondJSON(w, http.StatusCreated, resp)
}

// HandleLogin handles the POST /v1/auth/login request.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if req.Email == "" || req.Password == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("login failed", zap.String("email", req.Email), zap.Error(err))
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			httputil.RespondError(w, http.StatusUnauthorized, err.Error())
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "Login failed due to an internal error")
		}
		return
	}

	resp := models.AuthResponse{
		AccessToken: token,
		User: models.UserResponse{
			ID:    user.ID,
			Email: user.Email,
		},
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}
