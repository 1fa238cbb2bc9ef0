// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment  string
	ServerPort   string
	JWTSecretKey string

	// Database. "sqlite" keeps everything in a local file; "postgres" reads
	// DatabaseURL.
	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	// OpenAI-compatible completion endpoint.
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	DefaultChatModel string

	// Object storage for post cover images. Optional: uploads are disabled
	// when the bucket is empty.
	GCSBucket          string
	GCSCredentialsFile string

	FeaturedPostCount int
}

// Load reads configuration from environment variables or a .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		Environment:        env,
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		JWTSecretKey:       getEnv("JWT_SECRET_KEY", ""),
		DBDriver:           strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		SQLitePath:         getEnv("SQLITE_PATH", "inkwell.db"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		DefaultChatModel:   getEnv("DEFAULT_CHAT_MODEL", "gpt-3.5-turbo"),
		GCSBucket:          getEnv("GCS_BUCKET", ""),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		FeaturedPostCount:  getEnvAsInt("FEATURED_POST_COUNT", 3),
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if cfg.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
		if cfg.DBDriver == "postgres" && cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt returns the value of an environment variable as int or a default.
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("Invalid integer for %s; using default %d", key, defaultValue)
	}
	return defaultValue
}
