package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Retrieval RetrievalConfig
	Cache     CacheConfig
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

type APIKeys struct {
	GoogleGemini string
	HuggingFace  string
	TurnTopic    string // Turn-completed event topic
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama" or "huggingface"
	FastModel         string
	DeepModel         string
	EmbedTimeout      time.Duration
	GenTimeout        time.Duration
}

type RetrievalConfig struct {
	SemanticWeight float64
	KeywordWeight  float64
	DualMatchBonus float64
	TopK           int
	MaxResults     int
	RouteThreshold float64
}

type CacheConfig struct {
	TTL time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			TurnTopic:    getEnv("TURN_COMPLETED_TOPIC_NAME", "TURN_COMPLETED"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			FastModel:         getEnv("LLM_FAST_MODEL", "gemma3:4b"),
			DeepModel:         getEnv("LLM_DEEP_MODEL", "gemma3:27b"),
			EmbedTimeout:      getEnvAsDuration("EMBED_TIMEOUT", 10*time.Second),
			GenTimeout:        getEnvAsDuration("GENERATION_TIMEOUT", 60*time.Second),
		},
		Retrieval: RetrievalConfig{
			SemanticWeight: getEnvAsFloat("SEARCH_SEMANTIC_WEIGHT", 0.7),
			KeywordWeight:  getEnvAsFloat("SEARCH_KEYWORD_WEIGHT", 0.3),
			DualMatchBonus: getEnvAsFloat("SEARCH_DUAL_MATCH_BONUS", 0.1),
			TopK:           getEnvAsInt("SEARCH_TOP_K", 10),
			MaxResults:     getEnvAsInt("SEARCH_MAX_RESULTS", 5),
			RouteThreshold: getEnvAsFloat("ROUTE_THRESHOLD", 0.5),
		},
		Cache: CacheConfig{
			TTL: getEnvAsDuration("RESPONSE_CACHE_TTL", 6*time.Hour),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
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
