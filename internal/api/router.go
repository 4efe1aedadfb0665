package api

import (
	"net/http"

	"mentor-backend/internal/config"
	"mentor-backend/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	AuthHandler *handlers.AuthHandler
	ChatHandler *handlers.ChatHandler
	FileHandler *handlers.FileHandler
	Config      *config.Config
	Logger      *zap.Logger
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// No blanket timeout: POST /v1/chat streams for the duration of a turn.

	// --- CORS Configuration ---
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173", "https://*.vercel.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Geo-Latitude", "X-Geo-Longitude"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Public Routes (No JWT Required) ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/v1/auth", func(r chi.Router) {
		if deps.AuthHandler == nil {
			panic("AuthHandler dependency is nil in router setup")
		}
		r.Post("/signup", deps.AuthHandler.HandleSignup)
		r.Post("/login", deps.AuthHandler.HandleLogin)
	})

	// --- Authenticated Routes (JWT Required) ---
	r.Route("/v1", func(r chi.Router) {
		r.Use(JwtAuthMiddleware(deps.Config.JWTSecret, deps.Logger))

		if deps.ChatHandler != nil {
			r.Post("/chat", deps.ChatHandler.HandleTurn)
			r.Get("/history", deps.ChatHandler.HandleHistory)
			r.Patch("/vote", deps.ChatHandler.HandleVote)
			r.Post("/suggestions", deps.ChatHandler.HandleSuggestions)

			r.Route("/chat/{chatID}", func(r chi.Router) {
				r.Get("/", deps.ChatHandler.HandleGetChat)
				r.Delete("/", deps.ChatHandler.HandleDeleteChat)
				r.Patch("/visibility", deps.ChatHandler.HandleUpdateVisibility)
				r.Get("/votes", deps.ChatHandler.HandleListVotes)
			})
		} else {
			deps.Logger.Warn("ChatHandler dependency is nil, skipping /v1/chat routes")
		}

		if deps.FileHandler != nil {
			r.Route("/files", func(r chi.Router) {
				r.Get("/list", deps.FileHandler.HandleList)
				r.Post("/upload", deps.FileHandler.HandleUpload)
				r.Delete("/delete", deps.FileHandler.HandleDelete)
			})
		} else {
			deps.Logger.Warn("FileHandler dependency is nil, skipping /v1/files routes")
		}
	})

	return r
}
