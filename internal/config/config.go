package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	MetricsEnabled bool

	// Gemini backend
	GeminiAPIKey      string
	GeminiModel       string
	ChatTemperature   float32
	TurnTimeout       time.Duration
	ExtractionTimeout time.Duration

	ExtractionQueueSize int
	SessionIdleTTL      time.Duration

	// Operator settings seeded into the settings store at boot
	GoogleSheetID  string
	InstagramToken string

	CORSAllowedOrigins []string
	SimulatorRateLimit float64
	SimulatorRateBurst int

	// SendGrid new-lead alerts
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	LeadAlertEmail    string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", getEnv("API_KEY", "")),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		ChatTemperature:   float32(getEnvAsFloat("CHAT_TEMPERATURE", 0.7)),
		TurnTimeout:       getEnvAsDuration("TURN_TIMEOUT", 30*time.Second),
		ExtractionTimeout: getEnvAsDuration("EXTRACTION_TIMEOUT", 30*time.Second),

		ExtractionQueueSize: getEnvAsInt("EXTRACTION_QUEUE_SIZE", 128),
		SessionIdleTTL:      getEnvAsDuration("SESSION_IDLE_TTL", 30*time.Minute),

		GoogleSheetID:  getEnv("GOOGLE_SHEET_ID", ""),
		InstagramToken: getEnv("INSTAGRAM_TOKEN", ""),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		SimulatorRateLimit: getEnvAsFloat("SIMULATOR_RATE_LIMIT", 1),
		SimulatorRateBurst: getEnvAsInt("SIMULATOR_RATE_BURST", 5),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Adarsh Realtor Assistant"),
		LeadAlertEmail:    getEnv("LEAD_ALERT_EMAIL", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}
