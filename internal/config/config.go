package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Auth     AuthConfig
	Provider ProviderConfig
	Credits  CreditsConfig
	Partners PartnersConfig
	Webhook  WebhookConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// AuthConfig holds JWT configuration for issuing and verifying the
// HS256 session tokens.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// ProviderConfig holds the generation provider configuration.
// Models are tried in order until one responds.
type ProviderConfig struct {
	Enabled    bool
	BaseURL    string
	APIKey     string
	Models     []string
	Timeout    time.Duration
	MaxTokens  int
	MaxRetries int
}

// CreditsConfig holds the credit ledger policy.
type CreditsConfig struct {
	StartingBalance     int
	MonthlyAllotment    int
	LowBalanceThreshold int
	GenerationTimeout   time.Duration
}

// PartnersConfig holds affiliate identifiers for booking-link
// enrichment. These are configuration, not logic.
type PartnersConfig struct {
	HotelAffiliateID    string
	FlightAffiliateID   string
	ActivityAffiliateID string
}

// WebhookConfig holds the shared secret for the payment webhook.
type WebhookConfig struct {
	Secret string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "voyago"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "voyago-api"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getDurationEnv("JWT_TOKEN_TTL", 72*time.Hour),
		},
		Provider: ProviderConfig{
			Enabled:    getBoolEnv("PROVIDER_ENABLED", true),
			BaseURL:    getEnv("PROVIDER_BASE_URL", "https://api.openai.com/v1"),
			APIKey:     getEnv("PROVIDER_API_KEY", ""),
			Models:     getListEnv("PROVIDER_MODELS", []string{"gpt-4o-mini", "gpt-3.5-turbo"}),
			Timeout:    getDurationEnv("PROVIDER_TIMEOUT", 20*time.Second),
			MaxTokens:  getIntEnv("PROVIDER_MAX_TOKENS", 4096),
			MaxRetries: getIntEnv("PROVIDER_MAX_RETRIES", 2),
		},
		Credits: CreditsConfig{
			StartingBalance:     getIntEnv("CREDITS_STARTING_BALANCE", 30),
			MonthlyAllotment:    getIntEnv("CREDITS_MONTHLY_ALLOTMENT", 30),
			LowBalanceThreshold: getIntEnv("CREDITS_LOW_BALANCE_THRESHOLD", 3),
			GenerationTimeout:   getDurationEnv("GENERATION_TIMEOUT", 45*time.Second),
		},
		Partners: PartnersConfig{
			HotelAffiliateID:    getEnv("PARTNER_HOTEL_AFFILIATE_ID", "voyago"),
			FlightAffiliateID:   getEnv("PARTNER_FLIGHT_AFFILIATE_ID", "voyago"),
			ActivityAffiliateID: getEnv("PARTNER_ACTIVITY_AFFILIATE_ID", "voyago"),
		},
		Webhook: WebhookConfig{
			Secret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
