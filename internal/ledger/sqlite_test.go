package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/averageanalysis/vinyl-recorder/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testEntry(imageName string) domain.LedgerEntry {
	return domain.NewLedgerEntry(imageName, "local", domain.Identification{
		Success:    true,
		Artist:     "Nirvana",
		AlbumTitle: "Nevermind",
		AlbumYear:  "1991",
		Confidence: domain.ConfidenceHigh,
	})
}

func TestSQLiteStore_LoadEmpty(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty ledger, got %d rows", len(entries))
	}
}

func TestSQLiteStore_AppendAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, testEntry("a.jpg")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Append(ctx, testEntry("b.jpg")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	entries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(entries))
	}
	// Append order is preserved
	if entries[0].ImageName != "a.jpg" || entries[1].ImageName != "b.jpg" {
		t.Errorf("rows out of order: %q, %q", entries[0].ImageName, entries[1].ImageName)
	}
	if !entries[0].Success || entries[0].Artist != "Nirvana" {
		t.Error("identification fields lost in round trip")
	}
	if entries[0].DiscogsTitle != "" {
		t.Error("enrichment columns should be blank after append")
	}
}

func TestSQLiteStore_AppendDoesNotDeduplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Uniqueness is the resolver's responsibility, not the store's.
	if err := store.Append(ctx, testEntry("same.jpg")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Append(ctx, testEntry("same.jpg")); err != nil {
		t.Fatalf("second Append failed: %v", err)
	}

	entries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 rows, got %d", len(entries))
	}
}

func TestSQLiteStore_FindRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.FindRow(ctx, "missing.jpg"); err != nil || ok {
		t.Errorf("missing row: ok=%v err=%v, want ok=false err=nil", ok, err)
	}

	if err := store.Append(ctx, testEntry("a.jpg")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	key, ok, err := store.FindRow(ctx, "a.jpg")
	if err != nil {
		t.Fatalf("FindRow failed: %v", err)
	}
	if !ok || key == 0 {
		t.Errorf("expected a row key, got ok=%v key=%d", ok, key)
	}
}

func TestSQLiteStore_Patch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, testEntry("a.jpg")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	key, ok, err := store.FindRow(ctx, "a.jpg")
	if err != nil || !ok {
		t.Fatalf("FindRow: ok=%v err=%v", ok, err)
	}

	enrichment := &domain.Enrichment{
		DiscogsTitle: "Nirvana - Nevermind",
		Tracklist:    []string{"A1 Smells Like Teen Spirit"},
		ImageURL:     "https://img.example/150.jpg",
	}
	updates := map[string]string{
		domain.ColDiscogsTitle: enrichment.DiscogsTitle,
		domain.ColImageURL:     enrichment.ImageURL,
		domain.ColTracklist:    enrichment.TracklistJSON(),
	}
	if err := store.Patch(ctx, key, updates); err != nil {
		t.Fatalf("Patch failed: %v", err)
	}

	entries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := entries[0]
	if got.DiscogsTitle != "Nirvana - Nevermind" || got.ImageURL != "https://img.example/150.jpg" {
		t.Errorf("enrichment columns not patched: %+v", got)
	}
	if tracks := got.ParsedTracklist(); len(tracks) != 1 {
		t.Errorf("tracklist not patched: %v", tracks)
	}
	// Identification columns untouched
	if got.Artist != "Nirvana" || got.AlbumTitle != "Nevermind" || !got.Success {
		t.Errorf("patch modified non-enrichment columns: %+v", got)
	}
}

func TestSQLiteStore_PatchValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, testEntry("a.jpg")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	key, _, _ := store.FindRow(ctx, "a.jpg")

	t.Run("unknown column rejected", func(t *testing.T) {
		if err := store.Patch(ctx, key, map[string]string{"genre": "grunge"}); err == nil {
			t.Error("expected error for unknown column")
		}
	})

	t.Run("image_name cannot be patched", func(t *testing.T) {
		if err := store.Patch(ctx, key, map[string]string{domain.ColImageName: "b.jpg"}); err == nil {
			t.Error("expected error when patching the row key")
		}
	})

	t.Run("empty patch rejected", func(t *testing.T) {
		if err := store.Patch(ctx, key, nil); err == nil {
			t.Error("expected error for empty patch")
		}
	})

	t.Run("missing row reported", func(t *testing.T) {
		err := store.Patch(ctx, RowKey(9999), map[string]string{domain.ColDiscogsTitle: "x"})
		if err == nil {
			t.Error("expected error for missing row key")
		}
	})
}
