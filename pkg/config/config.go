package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	// Selection store (versioned JSON file)
	SelectionPath string

	// Mailbox access
	MailboxBackend     string // "gmail", "imap" or "toolcall"
	GoogleClientID     string
	GoogleClientSecret string
	GoogleTokenFile    string
	IMAPAddr           string
	IMAPUsername       string
	IMAPPassword       string
	SMTPAddr           string

	// Tool-call transport
	ToolCallWS   string
	ToolCallPort string

	// Summarization service
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	OpenAITemperature float64
	SummaryLang       string

	// Digest pipeline tuning
	DefaultTimezone  string
	LookbackDays     int
	ScanLookbackDays int
	FetchTimeout     time.Duration
	MaxCards         int
	MaxCardsFast     int
	DigestHour       int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8000"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		SelectionPath: getEnv("SELECTION_PATH", "./data/selected_newsletters.json"),

		MailboxBackend:     getEnv("MAILBOX_BACKEND", "gmail"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleTokenFile:    getEnv("GOOGLE_TOKEN_FILE", "./data/token.json"),
		IMAPAddr:           getEnv("IMAP_ADDR", "imap.gmail.com:993"),
		IMAPUsername:       getEnv("IMAP_USERNAME", ""),
		IMAPPassword:       getEnv("IMAP_PASSWORD", ""),
		SMTPAddr:           getEnv("SMTP_ADDR", "smtp.gmail.com:465"),

		ToolCallWS:   getEnv("TOOLCALL_WS", "ws://localhost:8080"),
		ToolCallPort: getEnv("TOOLCALL_PORT", "8080"),

		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITemperature: getEnvFloat("OPENAI_TEMPERATURE", 0.2),
		SummaryLang:       getEnv("SUMMARY_LANG", "en"),

		DefaultTimezone:  getEnv("DEFAULT_TZ", "Europe/Istanbul"),
		LookbackDays:     getEnvInt("LOOKBACK_DAYS", 120),
		ScanLookbackDays: getEnvInt("SCAN_LOOKBACK_DAYS", 30),
		FetchTimeout:     getEnvDuration("FETCH_TIMEOUT", 25*time.Second),
		MaxCards:         getEnvInt("MAX_CARDS", 12),
		MaxCardsFast:     getEnvInt("MAX_CARDS_FAST", 5),
		DigestHour:       getEnvInt("DIGEST_HOUR", 18),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
