package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	ServerPort string
	JWTSecret  string

	// External similarity / embedding services. Empty URL means the service
	// is not configured and the engine runs on local strategies only.
	SimilarityURL     string
	SimilarityTimeout time.Duration
	EmbeddingURL      string

	// RecsAlwaysRegenerate forces a fresh generation on every read instead
	// of serving the 24h cache. One runtime switch, same code path.
	RecsAlwaysRegenerate bool

	CleanupGraceHours int
	CleanupInterval   time.Duration
}

var GlobalConfig *Config

func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	env := getEnv("ENV", "development")

	var dbHost, dbUser, dbPassword, dbName, dbSSLMode string
	if env == "production" {
		dbHost = getEnv("DB_HOST", "")
		dbUser = getEnv("DB_USER", "")
		dbPassword = getEnv("DB_PASSWORD", "")
		dbName = getEnv("DB_NAME", "")
		dbSSLMode = getEnv("DB_SSLMODE", "require")
	} else {
		dbHost = getEnv("DB_HOST", "localhost")
		dbUser = getEnv("DB_USER", "postgres")
		dbPassword = getEnv("DB_PASSWORD", "password")
		dbName = getEnv("DB_NAME", "music_sales")
		dbSSLMode = getEnv("DB_SSLMODE", "disable")
	}

	GlobalConfig = &Config{
		DBHost:     dbHost,
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     dbUser,
		DBPassword: dbPassword,
		DBName:     dbName,
		DBSSLMode:  dbSSLMode,

		ServerPort: getEnv("SERVER_PORT", "8080"),
		JWTSecret:  getEnv("JWT_SECRET", "default-jwt-secret-change-in-production"),

		SimilarityURL:     getEnv("SIMILARITY_SERVICE_URL", ""),
		SimilarityTimeout: time.Duration(getEnvInt("SIMILARITY_TIMEOUT_MS", 3000, 100, 30000)) * time.Millisecond,
		EmbeddingURL:      getEnv("EMBEDDING_SERVICE_URL", ""),

		RecsAlwaysRegenerate: getEnv("RECS_ALWAYS_REGENERATE", "false") == "true",

		CleanupGraceHours: getEnvInt("CLEANUP_GRACE_HOURS", 48, 1, 24*14),
		CleanupInterval:   time.Duration(getEnvInt("CLEANUP_INTERVAL_MINUTES", 60, 1, 24*60)) * time.Minute,
	}

	if GlobalConfig.SimilarityURL == "" {
		log.Warn("Similarity service URL not set, recommendations will use local strategies only")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt parses an integer env var. Missing, unparsable or non-positive
// values fall back to the default; parsed positive values are clamped to
// [min, max].
func getEnvInt(key string, defaultValue, min, max int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return defaultValue
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
