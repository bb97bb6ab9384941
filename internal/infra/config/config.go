package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env  string
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Embedding provider (Ollama-compatible /api/embed endpoint).
	EmbedderURL     string
	EmbeddingModel  string
	EmbedderTimeout int // seconds
	VectorDimension int

	// Vector index (Qdrant REST).
	QdrantURL        string
	QdrantCollection string
	QdrantDistance   string
	QdrantTimeout    int // seconds

	// Topic classification: "keyword", "hybrid" or "semantic".
	ClassifierMode    string
	SemanticThreshold float64
	MaxSemanticTopics int

	// Bulk indexing.
	IndexBatchSize   int
	EmbedRatePerSec  int
	MaxRetryAttempts int
	MaxBatchSplits   int

	// Profile refresh worker.
	ProfileRefreshMinutes int
}

func Load() *Config {
	return &Config{
		Env:        getEnv("ENV", "development"),
		Port:       getEnv("PORT", "9020"),
		DBHost:     getEnv("DB_HOST", "news-db"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "news_user"),
		DBPassword: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "news_password"),
		DBName:     getEnv("DB_NAME", "news_db"),

		EmbedderURL:     getEnv("EMBEDDER_URL", "http://localhost:11434"),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "bge-m3"),
		EmbedderTimeout: getEnvInt("EMBEDDER_TIMEOUT", 30),
		VectorDimension: getEnvInt("VECTOR_DIMENSION", 768),

		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "khabar_articles"),
		QdrantDistance:   getEnv("QDRANT_DISTANCE", "Cosine"),
		QdrantTimeout:    getEnvInt("QDRANT_TIMEOUT", 10),

		ClassifierMode:    getEnv("CLASSIFIER_MODE", "hybrid"),
		SemanticThreshold: getEnvFloat("CLASSIFIER_SEMANTIC_THRESHOLD", 0.38),
		MaxSemanticTopics: getEnvInt("CLASSIFIER_MAX_SEMANTIC_TOPICS", 3),

		IndexBatchSize:   getEnvInt("INDEX_BATCH_SIZE", 32),
		EmbedRatePerSec:  getEnvInt("EMBED_RATE_PER_SEC", 8),
		MaxRetryAttempts: getEnvInt("INDEX_MAX_RETRY_ATTEMPTS", 4),
		MaxBatchSplits:   getEnvInt("INDEX_MAX_BATCH_SPLITS", 3),

		ProfileRefreshMinutes: getEnvInt("PROFILE_REFRESH_MINUTES", 60),
	}
}

// Validate rejects configurations that would only fail later at runtime.
func (c *Config) Validate() error {
	if c.VectorDimension <= 0 {
		return fmt.Errorf("vector dimension must be positive, got %d", c.VectorDimension)
	}
	switch c.ClassifierMode {
	case "keyword", "hybrid", "semantic":
	default:
		return fmt.Errorf("unknown classifier mode %q", c.ClassifierMode)
	}
	if c.IndexBatchSize <= 0 {
		return fmt.Errorf("index batch size must be positive, got %d", c.IndexBatchSize)
	}
	return nil
}

// DSN builds the Postgres connection string for the structured stores.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
