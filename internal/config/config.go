package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string

	// Notification channel: "whatsapp", "email" or "stub".
	NotifyChannel           string
	WhatsAppBridgeURL       string
	WhatsAppRetryAttempts   int
	WhatsAppRetryBaseDelay  time.Duration
	NotifyTimeout           time.Duration
	SendGridAPIKey          string
	SendGridFromEmail       string
	SendGridFromName        string
	NotificationSubjectLine string

	AdminJWTSecret string

	RemindersEnabled bool
	ReminderLead     time.Duration
	ReminderInterval time.Duration
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		NotifyChannel:           strings.ToLower(strings.TrimSpace(getEnv("NOTIFY_CHANNEL", "whatsapp"))),
		WhatsAppBridgeURL:       getEnv("WHATSAPP_BRIDGE_URL", ""),
		WhatsAppRetryAttempts:   getEnvAsInt("WHATSAPP_RETRY_MAX_ATTEMPTS", 3),
		WhatsAppRetryBaseDelay:  getEnvAsDuration("WHATSAPP_RETRY_BASE_DELAY", 500*time.Millisecond),
		NotifyTimeout:           getEnvAsDuration("NOTIFY_TIMEOUT", 10*time.Second),
		SendGridAPIKey:          getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:       getEnv("SENDGRID_FROM_EMAIL", "bookings@agendia.app"),
		SendGridFromName:        getEnv("SENDGRID_FROM_NAME", "Agendia"),
		NotificationSubjectLine: getEnv("NOTIFICATION_SUBJECT", "Appointment update"),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		RemindersEnabled: getEnvAsBool("REMINDERS_ENABLED", true),
		ReminderLead:     getEnvAsDuration("REMINDER_LEAD", 2*time.Hour),
		ReminderInterval: getEnvAsDuration("REMINDER_INTERVAL", 5*time.Minute),
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
