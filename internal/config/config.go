package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Provider ProviderConfig
	Ai       AIConfig
	Curation CurationConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	SessionTTLMinutes  int
}

type ProviderConfig struct {
	ImageSearchBaseURL  string
	ImageSearchLicense  string
	ImageSearchPageSize int
}

type AIConfig struct {
	EnrichProvider string // "ollama"
	OllamaBaseURL  string
	OllamaModel    string
}

// CurationConfig exposes the engine's tuning constants. The defaults were
// carried over from production behavior; none of them is known to be optimal.
type CurationConfig struct {
	SlotCount         int
	PrefetchThreshold int
	EnrichTimeoutMs   int
	MaxKeywords       int
	MaxKeptTitles     int
	BaseWeight        float64
	KeptWeight        float64
	AcceptedWeight    float64
	ColorPreseed      float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionTTLMinutes:  getEnvAsInt("SESSION_TTL_MINUTES", 60),
		},
		Provider: ProviderConfig{
			ImageSearchBaseURL:  getEnv("IMAGE_SEARCH_BASE_URL", "https://api.openverse.org/v1"),
			ImageSearchLicense:  getEnv("IMAGE_SEARCH_LICENSE", "cc0,by,by-sa"),
			ImageSearchPageSize: getEnvAsInt("IMAGE_SEARCH_PAGE_SIZE", 20),
		},
		Ai: AIConfig{
			EnrichProvider: getEnv("ENRICH_PROVIDER", "ollama"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:    getEnv("OLLAMA_MODEL", "llama3"),
		},
		Curation: CurationConfig{
			SlotCount:         getEnvAsInt("CURATION_SLOT_COUNT", 3),
			PrefetchThreshold: getEnvAsInt("CURATION_PREFETCH_THRESHOLD", 3),
			EnrichTimeoutMs:   getEnvAsInt("CURATION_ENRICH_TIMEOUT_MS", 3500),
			MaxKeywords:       getEnvAsInt("CURATION_MAX_KEYWORDS", 12),
			MaxKeptTitles:     getEnvAsInt("CURATION_MAX_KEPT_TITLES", 5),
			BaseWeight:        getEnvAsFloat("CURATION_BASE_WEIGHT", 1.0),
			KeptWeight:        getEnvAsFloat("CURATION_KEPT_WEIGHT", 1.4),
			AcceptedWeight:    getEnvAsFloat("CURATION_ACCEPTED_WEIGHT", 1.8),
			ColorPreseed:      getEnvAsFloat("CURATION_COLOR_PRESEED", 0.6),
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
