package ledger

import (
	"testing"

	"github.com/averageanalysis/vinyl-recorder/internal/domain"
)

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		idx  int
		want string
	}{
		{0, "A"},
		{1, "B"},
		{8, "I"},
		{10, "K"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
	}
	for _, tt := range tests {
		if got := columnLetter(tt.idx); got != tt.want {
			t.Errorf("columnLetter(%d) = %q, want %q", tt.idx, got, tt.want)
		}
	}
}

func TestRowValuesOrder(t *testing.T) {
	entry := domain.LedgerEntry{
		ImageName:    "a.jpg",
		ProcessDate:  "2026-01-02T15:04:05",
		Source:       "local",
		Success:      true,
		Artist:       "Nirvana",
		AlbumTitle:   "Nevermind",
		AlbumYear:    "1991",
		Confidence:   "high",
		DiscogsTitle: "Nirvana - Nevermind",
		ImageURL:     "https://img.example/150.jpg",
		Tracklist:    `["A1 Smells Like Teen Spirit"]`,
	}

	values := rowValues(entry)
	if len(values) != len(domain.Columns) {
		t.Fatalf("expected %d cells, got %d", len(domain.Columns), len(values))
	}

	want := []interface{}{
		"a.jpg", "2026-01-02T15:04:05", "local", "true",
		"Nirvana", "Nevermind", "1991", "high",
		"Nirvana - Nevermind", "https://img.example/150.jpg", `["A1 Smells Like Teen Spirit"]`,
	}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("cell %d (%s): got %v, want %v", i, domain.Columns[i], values[i], want[i])
		}
	}
}

func TestEntryFromRecord(t *testing.T) {
	header := headerIndex([]interface{}{
		"image_name", "process_date", "source", "success",
		"artist", "album_title", "album_year", "confidence",
		"discogs_title", "image_url", "tracklist",
	})

	t.Run("full row", func(t *testing.T) {
		entry := entryFromRecord(header, []interface{}{
			"a.jpg", "2026-01-02T15:04:05", "telegram", "TRUE",
			"Nirvana", "Nevermind", "1991", "high",
			"Nirvana - Nevermind", "https://img.example/150.jpg", `["A1"]`,
		})
		if entry.ImageName != "a.jpg" || entry.Source != "telegram" {
			t.Errorf("basic fields wrong: %+v", entry)
		}
		if !entry.Success {
			t.Error("TRUE should parse as success")
		}
		if entry.DiscogsTitle != "Nirvana - Nevermind" {
			t.Errorf("discogs_title = %q", entry.DiscogsTitle)
		}
	})

	t.Run("short row leaves trailing columns blank", func(t *testing.T) {
		entry := entryFromRecord(header, []interface{}{
			"b.jpg", "2026-01-02T15:04:05", "local", "true",
			"Portishead", "Dummy", "1994", "medium",
		})
		if entry.Artist != "Portishead" {
			t.Errorf("artist = %q", entry.Artist)
		}
		if entry.DiscogsTitle != "" || entry.ImageURL != "" || entry.Tracklist != "" {
			t.Errorf("expected blank enrichment columns: %+v", entry)
		}
		if !entry.NeedsEnrichment() {
			t.Error("short row should need enrichment")
		}
	})
}
