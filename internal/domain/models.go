// Package domain holds the core data types shared across the pipeline,
// the bot and the web view.
package domain

import (
	"encoding/json"
	"time"
)

// Ledger column names. The order of Columns is the wire contract the web
// view and any other sheet consumer depend on; do not reorder.
const (
	ColImageName    = "image_name"
	ColProcessDate  = "process_date"
	ColSource       = "source"
	ColSuccess      = "success"
	ColArtist       = "artist"
	ColAlbumTitle   = "album_title"
	ColAlbumYear    = "album_year"
	ColConfidence   = "confidence"
	ColDiscogsTitle = "discogs_title"
	ColImageURL     = "image_url"
	ColTracklist    = "tracklist"
)

// Columns lists the ledger columns in persisted order.
var Columns = []string{
	ColImageName,
	ColProcessDate,
	ColSource,
	ColSuccess,
	ColArtist,
	ColAlbumTitle,
	ColAlbumYear,
	ColConfidence,
	ColDiscogsTitle,
	ColImageURL,
	ColTracklist,
}

// EnrichmentColumns are the columns the enrichment sweep is allowed to patch.
var EnrichmentColumns = []string{
	ColDiscogsTitle,
	ColImageURL,
	ColTracklist,
}

// Confidence is the ordered three-level certainty scale reported by the
// recognizer.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Rank returns the position of the confidence on the low < medium < high
// scale, or -1 for an unknown value.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceLow:
		return 0
	case ConfidenceMedium:
		return 1
	case ConfidenceHigh:
		return 2
	}
	return -1
}

// Valid reports whether the confidence is one of the three known levels.
func (c Confidence) Valid() bool {
	return c.Rank() >= 0
}

// Identification is the structured outcome of a recognition call. All
// fields besides Success are empty when Success is false.
type Identification struct {
	Success    bool       `json:"success"`
	Artist     string     `json:"artist"`
	AlbumTitle string     `json:"album_title"`
	AlbumYear  string     `json:"album_year"`
	Confidence Confidence `json:"confidence"`
}

// Enrichment is the canonical metadata found for an identified album.
// A nil *Enrichment means "not found", never an empty value.
type Enrichment struct {
	DiscogsTitle string   `json:"discogs_title"`
	Tracklist    []string `json:"tracklist"`
	ImageURL     string   `json:"image_url"`
}

// TracklistJSON serializes the track list for ledger storage.
func (e *Enrichment) TracklistJSON() string {
	data, err := json.Marshal(e.Tracklist)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// LedgerEntry is one persisted row, keyed by image name.
type LedgerEntry struct {
	ImageName    string `db:"image_name"`
	ProcessDate  string `db:"process_date"`
	Source       string `db:"source"`
	Success      bool   `db:"success"`
	Artist       string `db:"artist"`
	AlbumTitle   string `db:"album_title"`
	AlbumYear    string `db:"album_year"`
	Confidence   string `db:"confidence"`
	DiscogsTitle string `db:"discogs_title"`
	ImageURL     string `db:"image_url"`
	Tracklist    string `db:"tracklist"`
}

// NewLedgerEntry builds a provisional row from an identification result.
// Enrichment columns start blank and are filled later by the sweep.
func NewLedgerEntry(imageName, source string, id Identification) LedgerEntry {
	return LedgerEntry{
		ImageName:   imageName,
		ProcessDate: time.Now().Format("2006-01-02T15:04:05"),
		Source:      source,
		Success:     id.Success,
		Artist:      id.Artist,
		AlbumTitle:  id.AlbumTitle,
		AlbumYear:   id.AlbumYear,
		Confidence:  string(id.Confidence),
	}
}

// NeedsEnrichment reports whether the enrichment sweep should attempt to
// fill this row. Blank discogs_title marks a row as un-enriched.
func (e LedgerEntry) NeedsEnrichment() bool {
	return e.DiscogsTitle == ""
}

// ParsedTracklist decodes the serialized track list, tolerating blank or
// malformed values.
func (e LedgerEntry) ParsedTracklist() []string {
	if e.Tracklist == "" {
		return nil
	}
	var tracks []string
	if err := json.Unmarshal([]byte(e.Tracklist), &tracks); err != nil {
		return nil
	}
	return tracks
}
