package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const GeminiAPIKeyEnv = "GEMINI_API_KEY"

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Gemini   GeminiConfig
	Upload   UploadConfig
	Analysis AnalysisConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	MaxBodySize int
	ReadTimeout time.Duration
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// GeminiConfig deliberately has no API key field: the key is looked up on
// every request through GeminiAPIKey.
type GeminiConfig struct {
	Model          string
	Timeout        time.Duration
	ClientCacheTTL time.Duration
}

type UploadConfig struct {
	MaxFileSize       int64
	ChunkThreshold    int64
	ChunkSize         int
	EncodeConcurrency int
}

type AnalysisConfig struct {
	StrictSchema bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "3000"),
			Env:         getEnv("ENV", "development"),
			MaxBodySize: getEnvAsInt("MAX_BODY_SIZE", 50*1024*1024),
			ReadTimeout: getEnvAsDuration("READ_TIMEOUT", "2m"),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "interview_analyzer"),
		},
		Gemini: GeminiConfig{
			Model:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout:        getEnvAsDuration("GEMINI_TIMEOUT", "5m"),
			ClientCacheTTL: getEnvAsDuration("GEMINI_CLIENT_CACHE_TTL", "30m"),
		},
		Upload: UploadConfig{
			MaxFileSize:       getEnvAsInt64("MAX_FILE_SIZE", 50*1024*1024),
			ChunkThreshold:    getEnvAsInt64("CHUNK_THRESHOLD", 10*1024*1024),
			ChunkSize:         getEnvAsInt("CHUNK_SIZE", 1024*1024),
			EncodeConcurrency: getEnvAsInt("ENCODE_CONCURRENCY", 4),
		},
		Analysis: AnalysisConfig{
			StrictSchema: getEnvAsBool("STRICT_SCHEMA", false),
		},
	}
}

// GeminiAPIKey reads the credential from the process environment. It is
// called per request so a missing key surfaces on the request, not at startup.
func GeminiAPIKey() string {
	return os.Getenv(GeminiAPIKeyEnv)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// WriteTimeout leaves room for the model call on top of reading the upload.
func (c *Config) WriteTimeout() time.Duration {
	return c.Gemini.Timeout + 30*time.Second
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
