package config

import (
	"os"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	t.Run("Success", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("DATA_DIR", "/tmp/caterpro")
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "12, 34")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
		if cfg.DatabasePath != "/tmp/caterpro/caterpro.db" {
			t.Errorf("Expected DatabasePath to derive from DATA_DIR, got '%s'", cfg.DatabasePath)
		}
		if cfg.StatePath != "/tmp/caterpro/state.json" {
			t.Errorf("Expected StatePath to derive from DATA_DIR, got '%s'", cfg.StatePath)
		}
		if len(cfg.TelegramAllowedUserIDs) != 2 || cfg.TelegramAllowedUserIDs[1] != 34 {
			t.Errorf("Expected allowed user IDs [12 34], got %v", cfg.TelegramAllowedUserIDs)
		}
		if cfg.GeminiModel != "gemini-1.5-flash" {
			t.Errorf("Expected default Gemini model, got '%s'", cfg.GeminiModel)
		}
	})

	t.Run("MissingGeminiAPIKey", func(t *testing.T) {
		os.Unsetenv("GEMINI_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing GEMINI_API_KEY, got nil")
		}
		expectedError := "GEMINI_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("InvalidAllowedUserID", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "12,abc")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for malformed TELEGRAM_ALLOWED_USER_IDS, got nil")
		}
	})
}
