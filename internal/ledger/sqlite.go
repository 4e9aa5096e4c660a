package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/averageanalysis/vinyl-recorder/internal/domain"
)

// image_name intentionally has no UNIQUE constraint: the append path must
// not silently deduplicate, the resolver owns the uniqueness invariant.
const schema = `
CREATE TABLE IF NOT EXISTS ledger (
	image_name    TEXT NOT NULL,
	process_date  TEXT NOT NULL,
	source        TEXT NOT NULL,
	success       INTEGER NOT NULL,
	artist        TEXT NOT NULL DEFAULT '',
	album_title   TEXT NOT NULL DEFAULT '',
	album_year    TEXT NOT NULL DEFAULT '',
	confidence    TEXT NOT NULL DEFAULT '',
	discogs_title TEXT NOT NULL DEFAULT '',
	image_url     TEXT NOT NULL DEFAULT '',
	tracklist     TEXT NOT NULL DEFAULT ''
);
`

// SQLiteStore keeps the ledger in a local SQLite file.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (and if needed creates) the ledger database.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	// Pragmas for better concurrency between the bot and batch runs
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) ([]domain.LedgerEntry, error) {
	query := `SELECT image_name, process_date, source, success, artist, album_title,
		album_year, confidence, discogs_title, image_url, tracklist
		FROM ledger ORDER BY rowid`

	entries := []domain.LedgerEntry{}
	if err := s.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) Append(ctx context.Context, entry domain.LedgerEntry) error {
	query := `INSERT INTO ledger (image_name, process_date, source, success, artist,
		album_title, album_year, confidence, discogs_title, image_url, tracklist)
		VALUES (:image_name, :process_date, :source, :success, :artist,
		:album_title, :album_year, :confidence, :discogs_title, :image_url, :tracklist)`

	if _, err := s.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FindRow(ctx context.Context, imageName string) (RowKey, bool, error) {
	var key int64
	err := s.db.GetContext(ctx, &key,
		`SELECT rowid FROM ledger WHERE image_name = ? ORDER BY rowid LIMIT 1`, imageName)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to find row: %w", err)
	}
	return RowKey(key), true, nil
}

func (s *SQLiteStore) Patch(ctx context.Context, key RowKey, updates map[string]string) error {
	if err := validatePatch(updates); err != nil {
		return err
	}

	// Build the SET clause in the stable column order so queries are
	// deterministic regardless of map iteration.
	var sets []string
	var args []interface{}
	for _, col := range domain.Columns {
		if value, ok := updates[col]; ok {
			sets = append(sets, col+" = ?")
			args = append(args, value)
		}
	}
	args = append(args, int64(key))

	query := fmt.Sprintf("UPDATE ledger SET %s WHERE rowid = ?", strings.Join(sets, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to patch row %d: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("no row with key %d", key)
	}
	return nil
}
