package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	Auth   AuthConfig
	SMTP   SMTPConfig
	Keys   APIKeys
	Ai     AIConfig
	ML     MLConfig
	Stream StreamConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	AuditLogFilePath   string
	WsLogFilePath      string
	CorsAllowedOrigins string
	UploadDir          string
	NatsURL            string
	RedisURL           string
}

type AuthConfig struct {
	JWTSecret string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type APIKeys struct {
	GoogleGemini string
	HuggingFace  string
}

type AIConfig struct {
	ChatProvider     string // "gemini", "ollama" or "huggingface"
	ChatModel        string
	ChatSystemPrompt string
	DraftProvider    string
	DraftModel       string
	GeminiBaseURL    string
	OllamaBaseURL    string
	HFBaseURL        string
}

type MLConfig struct {
	BaseURL string
}

type StreamConfig struct {
	RevealStep     int
	RevealInterval time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			AuditLogFilePath:   getEnv("AUDIT_LOG_FILE_PATH", "logs/audit.log"),
			WsLogFilePath:      getEnv("WS_LOG_FILE_PATH", "logs/ws.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "LegalAI"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFace:  getEnv("HF_API_KEY", ""),
		},
		Ai: AIConfig{
			ChatProvider:     getEnv("CHAT_PROVIDER", "gemini"),
			ChatModel:        getEnv("CHAT_MODEL", "gemini-1.5-flash"),
			ChatSystemPrompt: getEnv("CHAT_SYSTEM_PROMPT", ""),
			DraftProvider:    getEnv("DRAFT_PROVIDER", "gemini"),
			DraftModel:       getEnv("DRAFT_MODEL", "gemini-1.5-flash"),
			GeminiBaseURL:    getEnv("GEMINI_BASE_URL", ""),
			OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HFBaseURL:        getEnv("HF_BASE_URL", ""),
		},
		ML: MLConfig{
			BaseURL: getEnv("ML_SERVICE_URL", "http://127.0.0.1:5000"),
		},
		Stream: StreamConfig{
			RevealStep:     getEnvAsInt("CHAT_REVEAL_STEP", 3),
			RevealInterval: getEnvAsDuration("CHAT_REVEAL_INTERVAL", 20*time.Millisecond),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
