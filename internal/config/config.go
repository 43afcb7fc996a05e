package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the configuration for the application.
type Config struct {
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string

	DataDir      string
	DatabasePath string
	StatePath    string

	ShareSigningKey string
	ShareBaseURL    string

	SupplierDirectoryURL string
	Currency             string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64

	LogLevel string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = "gemini-1.5-flash"
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	databasePath := os.Getenv("DATABASE_PATH")
	if databasePath == "" {
		databasePath = dataDir + "/caterpro.db"
	}

	statePath := os.Getenv("STATE_PATH")
	if statePath == "" {
		statePath = dataDir + "/state.json"
	}

	shareSigningKey := os.Getenv("SHARE_SIGNING_KEY")
	shareBaseURL := os.Getenv("SHARE_BASE_URL")

	currency := os.Getenv("CURRENCY")
	if currency == "" {
		currency = "USD"
	}

	// Telegram Config (optional for the CLI, required for the bot)
	var allowedIDs []int64
	for _, part := range strings.Split(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", part, err)
		}
		allowedIDs = append(allowedIDs, id)
	}

	var adminID int64
	if s := os.Getenv("ADMIN_TELEGRAM_ID"); s != "" {
		fmt.Sscanf(s, "%d", &adminID)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		GeminiAPIKey:           geminiAPIKey,
		GeminiModel:            geminiModel,
		GroqAPIKey:             os.Getenv("GROQ_API_KEY"),
		DataDir:                dataDir,
		DatabasePath:           databasePath,
		StatePath:              statePath,
		ShareSigningKey:        shareSigningKey,
		ShareBaseURL:           shareBaseURL,
		SupplierDirectoryURL:   os.Getenv("SUPPLIER_DIRECTORY_URL"),
		Currency:               currency,
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowedIDs,
		AdminTelegramID:        adminID,
		LogLevel:               logLevel,
	}, nil
}
