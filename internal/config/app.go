package config

import (
	"agent-market/internal/logger"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// AppConfig holds all application configuration
type AppConfig struct {
	Server    ServerConfig
	Database  DatabaseConfig
	LLM       LLMConfig
	Webhook   WebhookConfig
	Auth      AuthConfig
	Admin     AdminConfig
	Seed      SeedConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Driver       string // "postgres" or "memory"
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
}

// LLMConfig holds the chat-completion provider configuration
type LLMConfig struct {
	Provider            string // "openrouter" or "genkit"
	APIKey              string
	BaseURL             string
	Model               string
	DefaultSystemPrompt string
	Temperature         float64
	HistoryLimit        int
	Referer             string
	Title               string
}

// WebhookConfig holds settings for calls to agent-defined webhooks
type WebhookConfig struct {
	Timeout time.Duration
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret       []byte
	TokenExpiration time.Duration
}

// AdminConfig holds the credentials that unlock the admin panel
type AdminConfig struct {
	Email        string
	Password     string
	PasswordHash string
}

// SeedConfig controls startup data seeding
type SeedConfig struct {
	AgentsPath string
	DemoUser   bool
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// LoadConfig loads and validates application configuration from environment
func LoadConfig() (*AppConfig, error) {
	config := &AppConfig{}

	config.Server = ServerConfig{
		Port:           getEnvOrDefault("SERVER_PORT", "8080"),
		AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
	}

	config.Database = DatabaseConfig{
		Driver:       getEnvOrDefault("DB_DRIVER", "postgres"),
		Host:         getEnvOrDefault("DB_HOST", "postgres"),
		Port:         getEnvOrDefault("DB_PORT", "5432"),
		User:         getEnvOrDefault("DB_USER", "postgres"),
		Password:     getEnvOrDefault("DB_PASSWORD", "postgres"),
		Name:         getEnvOrDefault("DB_NAME", "agentmarket"),
		SSLMode:      getEnvOrDefault("DB_SSLMODE", "disable"),
		MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
	}
	if config.Database.Driver != "postgres" && config.Database.Driver != "memory" {
		return nil, fmt.Errorf("DB_DRIVER must be postgres or memory, got %q", config.Database.Driver)
	}

	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if apiKey == "" {
		logger.Log.Warn("LLM_API_KEY not set, chat-completion provider disabled")
	}

	config.LLM = LLMConfig{
		Provider:            strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "openrouter")),
		APIKey:              apiKey,
		BaseURL:             getEnvOrDefault("LLM_BASE_URL", "https://openrouter.ai/api/v1"),
		Model:               getEnvOrDefault("LLM_MODEL", "meta-llama/llama-3.3-8b-instruct:free"),
		DefaultSystemPrompt: getEnvOrDefault("LLM_SYSTEM_PROMPT", "You are a helpful AI assistant."),
		Temperature:         getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		HistoryLimit:        getEnvAsInt("LLM_HISTORY_LIMIT", 20),
		Referer:             getEnvOrDefault("LLM_HTTP_REFERER", "http://localhost:3000"),
		Title:               getEnvOrDefault("LLM_APP_TITLE", "Agent Market"),
	}

	if config.LLM.Provider != "openrouter" && config.LLM.Provider != "genkit" {
		return nil, fmt.Errorf("LLM_PROVIDER must be openrouter or genkit, got %q", config.LLM.Provider)
	}

	config.Webhook = WebhookConfig{
		Timeout: getEnvAsDuration("WEBHOOK_TIMEOUT", 15*time.Second),
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable must be set")
	}
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters (current length: %d)", len(jwtSecret))
	}

	config.Auth = AuthConfig{
		JWTSecret:       []byte(jwtSecret),
		TokenExpiration: getEnvAsDuration("JWT_TOKEN_EXPIRATION", 24*time.Hour),
	}

	config.Admin = AdminConfig{
		Email:        getEnvOrDefault("ADMIN_EMAIL", "admin@agentmarket.local"),
		Password:     os.Getenv("ADMIN_PASSWORD"),
		PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
	}
	if config.Admin.Password == "" && config.Admin.PasswordHash == "" {
		logger.Log.Warn("ADMIN_PASSWORD and ADMIN_PASSWORD_HASH not set, admin login disabled")
	}

	config.Seed = SeedConfig{
		AgentsPath: os.Getenv("AGENTS_SEED_PATH"),
		DemoUser:   getEnvAsBool("SEED_DEMO_USER", true),
	}

	config.Telemetry = TelemetryConfig{
		Enabled:      getEnvAsBool("OTEL_ENABLED", false),
		OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		ServiceName:  getEnvOrDefault("OTEL_SERVICE_NAME", "agent-market"),
	}

	return config, nil
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedactedDSN is GetDSN with the password masked, for logging
func (c *DatabaseConfig) RedactedDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=*** dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid integer value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid float value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid boolean value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid duration value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
