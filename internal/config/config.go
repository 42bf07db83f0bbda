package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Gateway GatewayConfig
	Polling PollingConfig
	Storage StorageConfig
	Tracing TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	HubLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type GatewayConfig struct {
	BaseURL        string
	GraphQLPath    string
	UploadPath     string
	RequestTimeout time.Duration
	RateLimit      float64 // requests per second, 0 disables pacing
	RateBurst      int
}

type PollingConfig struct {
	Interval      time.Duration
	Ceiling       time.Duration
	SilentTimeout bool
}

type StorageConfig struct {
	Driver     string // "memory" or "redis"
	SessionTTL time.Duration
	// ProjectCacheTTL is how long a project list is served without a refresh.
	ProjectCacheTTL time.Duration
	// IdleTTL closes a tab workspace nobody touched for this long.
	IdleTTL time.Duration
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/console.log"),
			HubLogFilePath:     getEnv("HUB_LOG_FILE_PATH", "logs/hub.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Gateway: GatewayConfig{
			BaseURL:        getEnv("GATEWAY_BASE_URL", "http://localhost:8080"),
			GraphQLPath:    getEnv("GATEWAY_GRAPHQL_PATH", "/graphql"),
			UploadPath:     getEnv("GATEWAY_UPLOAD_PATH", "/upload-documento"),
			RequestTimeout: getEnvAsDuration("GATEWAY_REQUEST_TIMEOUT", 15*time.Second),
			RateLimit:      getEnvAsFloat("GATEWAY_RATE_LIMIT", 0),
			RateBurst:      getEnvAsInt("GATEWAY_RATE_BURST", 5),
		},
		Polling: PollingConfig{
			Interval:      getEnvAsDuration("POLL_INTERVAL", 3*time.Second),
			Ceiling:       getEnvAsDuration("POLL_CEILING", 60*time.Second),
			SilentTimeout: getEnvAsBool("POLL_SILENT_TIMEOUT", false),
		},
		Storage: StorageConfig{
			Driver:          getEnv("STORAGE_DRIVER", "memory"),
			SessionTTL:      getEnvAsDuration("SESSION_TTL", 12*time.Hour),
			ProjectCacheTTL: getEnvAsDuration("PROJECT_CACHE_TTL", 30*time.Second),
			IdleTTL:         getEnvAsDuration("WORKSPACE_IDLE_TTL", 2*time.Hour),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
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

// getEnvAsDuration accepts Go durations ("3s") and bare integers as seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
