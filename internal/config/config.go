package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	DatabaseURL     string
	HTTPPort        string
	JWTSecret       string
	TokenExpiration time.Duration

	// External capability endpoints.
	GeminiAPIKey     string
	ExaAPIKey        string
	Mem0APIKey       string
	GoogleMapsAPIKey string
	YTEndpoint       string // metadata service for video enrichment

	// Model selection. These are registry ids, not provider model names.
	DefaultChatModel string
	SmallModel       string
	TitleModel       string
	EmbeddingModel   string

	// Orchestration limits.
	MaxSteps    int
	ToolTimeout time.Duration
	AuxTimeout  time.Duration // classification / hypothetical answer / embedding calls
	RetrievalK  int
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development). Missing .env is fine,
	// production supplies real environment variables.
	_ = godotenv.Load()

	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	geminiKey := getEnv("GEMINI_API_KEY", "")
	if geminiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}

	tokenExpHours := getEnvInt("JWT_EXPIRATION_HOURS", 24)

	cfg := &Config{
		DatabaseURL:     dbURL,
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		JWTSecret:       getEnv("JWT_SECRET", "default-super-secret-key"), // CHANGE THIS IN PRODUCTION!
		TokenExpiration: time.Hour * time.Duration(tokenExpHours),

		GeminiAPIKey:     geminiKey,
		ExaAPIKey:        getEnv("EXA_API_KEY", ""),
		Mem0APIKey:       getEnv("MEM0_API_KEY", ""),
		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		YTEndpoint:       getEnv("YT_ENDPOINT", ""),

		DefaultChatModel: getEnv("DEFAULT_CHAT_MODEL", "chat-model-large"),
		SmallModel:       getEnv("SMALL_MODEL", "chat-model-small"),
		TitleModel:       getEnv("TITLE_MODEL", "title-model"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "gemini-embedding-001"),

		MaxSteps:    getEnvInt("MAX_STEPS", 5),
		ToolTimeout: time.Duration(getEnvInt("TOOL_TIMEOUT_SECONDS", 30)) * time.Second,
		AuxTimeout:  time.Duration(getEnvInt("AUX_TIMEOUT_SECONDS", 15)) * time.Second,
		RetrievalK:  getEnvInt("RETRIEVAL_TOP_K", 10),
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable or returns a default value.
func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
