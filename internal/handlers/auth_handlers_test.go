package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mentor-backend/internal/models"
	"mentor-backend/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubAuthService struct {
	signupErr error
	loginErr  error
	user      *models.User
	token     string
}

func (s *stubAuthService) Signup(ctx context.Context, email, password string) (*models.User, error) {
	if s.signupErr != nil {
		return nil, s.signupErr
	}
	return s.user, nil
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	if s.loginErr != nil {
		return "", nil, s.loginErr
	}
	return s.token, s.user, nil
}

func TestHandleSignup(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "u@example.com"}

	tests := []struct {
		name       string
		body       string
		service    *stubAuthService
		wantStatus int
	}{
		{"created", `{"email":"u@example.com","password":"pw"}`, &stubAuthService{user: user}, http.StatusCreated},
		{"bad json", `{`, &stubAuthService{user: user}, http.StatusBadRequest},
		{"missing fields", `{"email":""}`, &stubAuthService{user: user}, http.StatusBadRequest},
		{"duplicate", `{"email":"u@example.com","password":"pw"}`, &stubAuthService{signupErr: services.ErrUserAlreadyExists}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(tt.service, zap.NewNop())
			req := httptest.NewRequest(http.MethodPost, "/v1/auth/signup", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.HandleSignup(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandleLogin(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "u@example.com"}

	tests := []struct {
		name       string
		body       string
		service    *stubAuthService
		wantStatus int
	}{
		{"ok", `{"email":"u@example.com","password":"pw"}`, &stubAuthService{user: user, token: "jwt"}, http.StatusOK},
		{"bad credentials", `{"email":"u@example.com","password":"pw"}`, &stubAuthService{loginErr: services.ErrInvalidCredentials}, http.StatusUnauthorized},
		{"missing fields", `{}`, &stubAuthService{}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(tt.service, zap.NewNop())
			req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.HandleLogin(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
