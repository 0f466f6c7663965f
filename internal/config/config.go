package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Quota     QuotaConfig
	Providers ProviderConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JWTSecret string
}

type RateLimitConfig struct {
	Backend   string // "memory" or "redis"
	PerMinute int
}

type Limits struct {
	Daily   int
	Monthly int
}

// QuotaConfig holds the free-tier limits handed to every new user.
type QuotaConfig struct {
	Image Limits
	Video Limits
	Music Limits
}

type ProviderConfig struct {
	GoogleGemini     string
	GeminiImageModel string
	VideoURL         string
	MusicURL         string
	APIKey           string
	Timeout          time.Duration
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
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		RateLimit: RateLimitConfig{
			Backend:   strings.ToLower(getEnv("RATE_LIMIT_BACKEND", "memory")),
			PerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 5),
		},
		Quota: QuotaConfig{
			Image: Limits{
				Daily:   getEnvAsInt("QUOTA_IMAGE_DAILY", 10),
				Monthly: getEnvAsInt("QUOTA_IMAGE_MONTHLY", 250),
			},
			Video: Limits{
				Daily:   getEnvAsInt("QUOTA_VIDEO_DAILY", 2),
				Monthly: getEnvAsInt("QUOTA_VIDEO_MONTHLY", 20),
			},
			Music: Limits{
				Daily:   getEnvAsInt("QUOTA_MUSIC_DAILY", 3),
				Monthly: getEnvAsInt("QUOTA_MUSIC_MONTHLY", 30),
			},
		},
		Providers: ProviderConfig{
			GoogleGemini:     getEnv("GOOGLE_GEMINI_API_KEY", ""),
			GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", ""),
			VideoURL:         getEnv("VIDEO_PROVIDER_URL", ""),
			MusicURL:         getEnv("MUSIC_PROVIDER_URL", ""),
			APIKey:           getEnv("PROVIDER_API_KEY", ""),
			Timeout:          time.Duration(getEnvAsInt("PROVIDER_TIMEOUT_SECONDS", 120)) * time.Second,
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
