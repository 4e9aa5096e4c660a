package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/averageanalysis/vinyl-recorder/internal/constants"
)

// Config holds all application configuration
type Config struct {
	AppEnv string // prod or test

	// Ledger
	LedgerBackend        string // sheets or sqlite
	DBPath               string
	GoogleServiceAccount string // base64-encoded service account JSON
	SheetIDProd          string
	SheetIDTest          string

	// LLM
	LLMProvider  string
	OpenAIAPIKey string
	OpenAIModel  string

	// Discogs
	DiscogsToken string

	// Telegram
	BotTokenProd string
	BotTokenTest string

	// Batch source
	ImagesDir string
	ImageType string

	// Duplicate guard, per entry point
	DuplicateCheckBatch       bool
	DuplicateCheckInteractive bool

	// Web
	Port       string
	WebAppLink string
	SheetLink  string

	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables with defaults.
// A .env file in the working directory is read first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv: getEnv("APP_ENV", "test"),

		LedgerBackend:        getEnv("LEDGER_BACKEND", constants.BackendSheets),
		DBPath:               getEnv("DB_PATH", constants.DefaultDBPath),
		GoogleServiceAccount: getEnv("GOOGLE_SERVICE_ACCOUNT", ""),
		SheetIDProd:          getEnv("VINYL_SHEET_PROD", ""),
		SheetIDTest:          getEnv("VINYL_SHEET_TEST", ""),

		LLMProvider:  getEnv("LLM_PROVIDER", constants.DefaultLLMProvider),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", constants.DefaultOpenAIModel),

		DiscogsToken: getEnv("DISCOGS_API_KEY", ""),

		BotTokenProd: getEnv("BOT_TOKEN", ""),
		BotTokenTest: getEnv("BOT_TOKEN_TEST", ""),

		ImagesDir: getEnv("IMAGES_DIR", constants.DefaultImagesDir),
		ImageType: getEnv("IMAGE_TYPE", constants.DefaultImageType),

		DuplicateCheckBatch:       getBoolEnv("DUPLICATE_CHECK_BATCH", false),
		DuplicateCheckInteractive: getBoolEnv("DUPLICATE_CHECK_INTERACTIVE", true),

		Port:       getEnv("PORT", constants.DefaultPort),
		WebAppLink: getEnv("WEB_APP_LINK", ""),
		SheetLink:  getEnv("SHEET_LINK", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// SheetID returns the spreadsheet ID for the current environment.
func (c *Config) SheetID() string {
	if c.AppEnv == "prod" {
		return c.SheetIDProd
	}
	return c.SheetIDTest
}

// BotToken returns the Telegram bot token for the current environment.
func (c *Config) BotToken() string {
	if c.AppEnv == "prod" {
		return c.BotTokenProd
	}
	return c.BotTokenTest
}

// Validate validates the common configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.AppEnv != "prod" && c.AppEnv != "test" {
		errors = append(errors, fmt.Sprintf("APP_ENV must be prod or test, got: %s", c.AppEnv))
	}

	switch c.LedgerBackend {
	case constants.BackendSheets:
		if c.GoogleServiceAccount == "" {
			errors = append(errors, "GOOGLE_SERVICE_ACCOUNT cannot be empty with the sheets backend")
		}
		if c.SheetID() == "" {
			errors = append(errors, fmt.Sprintf("no sheet ID configured for APP_ENV=%s (set VINYL_SHEET_PROD/VINYL_SHEET_TEST)", c.AppEnv))
		}
	case constants.BackendSQLite:
		if c.DBPath == "" {
			errors = append(errors, "DB_PATH cannot be empty with the sqlite backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("LEDGER_BACKEND must be sheets or sqlite, got: %s", c.LedgerBackend))
	}

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// ValidateIdentify checks the settings the identification path needs.
func (c *Config) ValidateIdentify() error {
	if c.LLMProvider == "" {
		return fmt.Errorf("LLM_PROVIDER cannot be empty")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY cannot be empty")
	}
	return nil
}

// ValidateEnrich checks the settings the enrichment path needs.
func (c *Config) ValidateEnrich() error {
	if c.DiscogsToken == "" {
		return fmt.Errorf("DISCOGS_API_KEY cannot be empty")
	}
	return nil
}

// ValidateBot checks the settings the Telegram bot needs.
func (c *Config) ValidateBot() error {
	if c.BotToken() == "" {
		return fmt.Errorf("no bot token configured for APP_ENV=%s (set BOT_TOKEN/BOT_TOKEN_TEST)", c.AppEnv)
	}
	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getBoolEnv retrieves a boolean environment variable with a fallback default
func getBoolEnv(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
