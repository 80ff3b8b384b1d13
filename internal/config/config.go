package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	BaseURL         string
	DatabaseType    string // sqlite, postgres or mysql
	DatabaseURL     string
	DatabasePath    string
	SessionDuration time.Duration
	CSRFSecret      string
	UploadMaxSize   int64
	StaticFilesPath string
	TemplatesPath   string
	MigrationsPath  string
	QuestionBank    string

	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string
	AppleClientID        string
	AppleClientSecret    string

	SESRegion    string
	EmailFrom    string
	EmailName    string
	EmailEnabled bool

	COSSecretID  string
	COSSecretKey string
	COSBucketURL string
	COSDomain    string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	godotenv.Load()

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		BaseURL:         getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseType:    getEnv("DB_TYPE", "sqlite"),
		DatabaseURL:     getEnv("DB_URL", ""),
		DatabasePath:    getEnv("DB_PATH", "./gamehub.db"),
		SessionDuration: getDuration("SESSION_DURATION", 24*time.Hour),
		CSRFSecret:      getEnv("CSRF_SECRET", ""),
		UploadMaxSize:   getInt64("UPLOAD_MAX_SIZE", 5*1024*1024),
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		TemplatesPath:   getEnv("TEMPLATES_PATH", "./internal/templates"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		QuestionBank:    getEnv("QUESTION_BANK_PATH", "./config/questions.yaml"),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		FacebookClientID:     getEnv("FACEBOOK_CLIENT_ID", ""),
		FacebookClientSecret: getEnv("FACEBOOK_CLIENT_SECRET", ""),
		AppleClientID:        getEnv("APPLE_CLIENT_ID", ""),
		AppleClientSecret:    getEnv("APPLE_CLIENT_SECRET", ""),

		SESRegion:    getEnv("SES_REGION", "us-east-1"),
		EmailFrom:    getEnv("EMAIL_FROM", ""),
		EmailName:    getEnv("EMAIL_NAME", "Game Hub"),
		EmailEnabled: getEnv("EMAIL_FROM", "") != "",

		COSSecretID:  getEnv("COS_SECRET_ID", ""),
		COSSecretKey: getEnv("COS_SECRET_KEY", ""),
		COSBucketURL: getEnv("COS_BUCKET_URL", ""),
		COSDomain:    getEnv("COS_DOMAIN", ""),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
