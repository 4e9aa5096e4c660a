// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort        = "8080"
	DefaultDBPath      = "vinyl.db"
	DefaultImagesDir   = "data/all_images"
	DefaultImageType   = "jpg"
	DefaultHTTPTimeout = 30 * time.Second
	DefaultRetryCount  = 3
	DefaultRetryBase   = 1 * time.Second
)

// Ledger backends
const (
	BackendSheets = "sheets"
	BackendSQLite = "sqlite"
)

// Row source tags
const (
	SourceLocal    = "local"
	SourceTelegram = "telegram"
)

// LLM defaults
const (
	DefaultLLMProvider = "openai"
	DefaultOpenAIModel = "gpt-4o"
)

// Discogs API
const (
	DiscogsBaseURL         = "https://api.discogs.com"
	DiscogsRequestInterval = 1050 * time.Millisecond
)

// Recommendation bounds
const (
	MinTasteDistance = 1
	MaxTasteDistance = 10
	MinSuggestions   = 1
	MaxSuggestions   = 10
)
