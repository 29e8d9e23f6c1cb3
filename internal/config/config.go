package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Session  SessionConfig
	Search   SearchConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	OpenAIAPIKey    string
	OpenAIBaseURL   string // optional override for proxies/gateways
	EmbedModel      string
	EmbedDimensions int
	DecisionModel   string
	AnswerModel     string
	RequestTimeoutS int
}

type SessionConfig struct {
	TTLHours int
}

type SearchConfig struct {
	PreferredKind string // chunk kind boosted during re-ranking, "" disables
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
			EmbedModel:      getEnv("EMBED_MODEL", "text-embedding-3-small"),
			EmbedDimensions: getEnvAsInt("EMBED_DIMENSIONS", 1536),
			DecisionModel:   getEnv("DECISION_MODEL", "gpt-4o-mini"),
			AnswerModel:     getEnv("ANSWER_MODEL", "gpt-4o"),
			RequestTimeoutS: getEnvAsInt("LLM_REQUEST_TIMEOUT_S", 30),
		},
		Session: SessionConfig{
			TTLHours: getEnvAsInt("SESSION_TTL_HOURS", 6),
		},
		Search: SearchConfig{
			PreferredKind: getEnv("SEARCH_PREFERRED_KIND", "tabular"),
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
