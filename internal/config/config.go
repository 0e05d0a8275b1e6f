package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store driver names accepted by STORE_DRIVER.
const (
	StoreDriverMemory = "memory"
	StoreDriverMongo  = "mongo"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App        AppConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Classifier ClassifierConfig
	SMS        SMSConfig
	Email      EmailConfig
	Auth       AuthConfig
	Intake     IntakeConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// MongoConfig holds document store connection values.
type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	CacheTTLSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// ClassifierConfig points at the text-understanding provider. An empty
// APIKey disables the remote call entirely; classification then always
// uses the rule-based fallback.
type ClassifierConfig struct {
	APIKey         string
	Model          string
	Endpoint       string
	TimeoutSeconds int
}

// SMSConfig holds the SMS gateway credentials and the shared secret
// expected on provider-A webhook deliveries.
type SMSConfig struct {
	APIKey        string
	ProjectID     string
	PhoneID       string
	BaseURL       string
	WebhookSecret string
}

// EmailConfig holds outbound email settings.
type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// IntakeConfig tunes the dedup core.
type IntakeConfig struct {
	// StoreDriver selects the ticket store implementation at startup:
	// "memory" or "mongo".
	StoreDriver string
	// FingerprintPrecision is the coordinate quantization in decimal
	// degrees used by the fingerprint engine.
	FingerprintPrecision int
	// StoreRetries bounds how often a failing store operation is
	// retried before surfacing a store-unavailable error.
	StoreRetries int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	storeDriver := getEnv("STORE_DRIVER", StoreDriverMemory)
	if storeDriver != StoreDriverMemory && storeDriver != StoreDriverMongo {
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: want %q or %q", storeDriver, StoreDriverMemory, StoreDriverMongo)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "civic-report-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "municipal_issues"),
		},
		Redis: RedisConfig{
			Addr:            getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:        os.Getenv("REDIS_PASSWORD"),
			DB:              redisDB,
			CacheTTLSeconds: getEnvAsInt("REDIS_CACHE_TTL_SECONDS", 60),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Classifier: ClassifierConfig{
			APIKey:         os.Getenv("CLASSIFIER_API_KEY"),
			Model:          getEnv("CLASSIFIER_MODEL", "gemini-2.5-flash"),
			Endpoint:       os.Getenv("CLASSIFIER_ENDPOINT"),
			TimeoutSeconds: getEnvAsInt("CLASSIFIER_TIMEOUT_SECONDS", 10),
		},
		SMS: SMSConfig{
			APIKey:        os.Getenv("SMS_API_KEY"),
			ProjectID:     os.Getenv("SMS_PROJECT_ID"),
			PhoneID:       os.Getenv("SMS_PHONE_ID"),
			BaseURL:       getEnv("SMS_BASE_URL", "https://api.telerivet.com/v1"),
			WebhookSecret: os.Getenv("SMS_WEBHOOK_SECRET"),
		},
		Email: EmailConfig{
			SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
			FromEmail:      getEnv("FROM_EMAIL", "noreply@example.com"),
			FromName:       getEnv("FROM_NAME", "Civic Report Service"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Intake: IntakeConfig{
			StoreDriver:          storeDriver,
			FingerprintPrecision: getEnvAsInt("FINGERPRINT_PRECISION", 3),
			StoreRetries:         getEnvAsInt("INTAKE_STORE_RETRIES", 3),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the classifier call timeout duration.
func (c ClassifierConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns the ticket cache entry lifetime.
func (r RedisConfig) CacheTTL() time.Duration {
	if r.CacheTTLSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(r.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
