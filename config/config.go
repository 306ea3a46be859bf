package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultOrchestratorTimeout bounds a single analysis call to the orchestrator
	DefaultOrchestratorTimeout = 5 * time.Minute
)

type Config struct {
	ServerPort  string
	Environment string
	LogLevel    string
	// Database (first configured wins: Postgres, Turso, local SQLite)
	DatabaseURL      string
	TursoDatabaseURL string
	TursoAuthToken   string
	DBPath           string
	// AI orchestrator
	OrchestratorURL     string
	OrchestratorTimeout time.Duration
	// Email (Resend)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	EmailTestMode bool // When true, emails are logged instead of sent
	// Telephony
	TelephonyAPIURL             string
	TelephonyInsecureSkipVerify bool
	TelephonyTimeout            time.Duration
	// Cloudflare R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	FileURLExpiry     time.Duration
	// Other
	AllowedOrigins []string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		ServerPort:                  getEnv("SERVER_PORT", "8080"),
		Environment:                 getEnv("ENVIRONMENT", "development"),
		LogLevel:                    getEnv("LOG_LEVEL", ""),
		DatabaseURL:                 getEnv("DATABASE_URL", ""),
		TursoDatabaseURL:            getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:              os.Getenv("TURSO_AUTH_TOKEN"),
		DBPath:                      getEnv("DB_PATH", "db/app.db"),
		OrchestratorURL:             strings.TrimRight(getEnv("ORCHESTRATOR_URL", "http://localhost:8000"), "/"),
		OrchestratorTimeout:         getEnvDuration("ORCHESTRATOR_TIMEOUT", DefaultOrchestratorTimeout),
		ResendAPIKey:                os.Getenv("RESEND_API_KEY"),
		EmailFrom:                   getEnv("EMAIL_FROM", "onboarding@resend.dev"),
		EmailFromName:               getEnv("EMAIL_FROM_NAME", "Case Flow"),
		EmailTestMode:               getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		TelephonyAPIURL:             strings.TrimRight(getEnv("TELEPHONY_API_URL", "https://api.simplylaw.us"), "/"),
		TelephonyInsecureSkipVerify: getEnvBool("TELEPHONY_INSECURE_SKIP_VERIFY", false),
		TelephonyTimeout:            getEnvDuration("TELEPHONY_TIMEOUT", 30*time.Second),
		R2AccountID:                 getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:               os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:           os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:                getEnv("R2_BUCKET_NAME", ""),
		FileURLExpiry:               getEnvDuration("FILE_URL_EXPIRY", 15*time.Minute),
		AllowedOrigins:              strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// IsProduction reports whether the app runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// R2Configured reports whether all Cloudflare R2 credentials are present
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Printf("Using default value for %s: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("[WARNING] Invalid duration for %s (%q), using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
