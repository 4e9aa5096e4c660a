// Package ledger persists one row per processed image to a shared tabular
// store. Two backends implement the same contract: the Google Sheet the
// collection lives in, and a local SQLite file for offline use and tests.
package ledger

import (
	"context"
	"fmt"

	"github.com/averageanalysis/vinyl-recorder/internal/config"
	"github.com/averageanalysis/vinyl-recorder/internal/constants"
	"github.com/averageanalysis/vinyl-recorder/internal/domain"
)

// RowKey addresses a single ledger row: the 1-indexed sheet row for the
// sheets backend, the rowid for sqlite. Keys shift as rows are appended,
// so they must be re-resolved with FindRow immediately before each Patch.
type RowKey int64

// Store is the ledger contract consumed by the pipeline, bot and web view.
//
// Load returns all rows in persisted order; an empty ledger yields an
// empty slice, not an error. Append never deduplicates — uniqueness of
// image_name is the caller's responsibility. FindRow returns ok=false for
// a missing image name, which is a valid, non-exceptional outcome.
type Store interface {
	Load(ctx context.Context) ([]domain.LedgerEntry, error)
	Append(ctx context.Context, entry domain.LedgerEntry) error
	FindRow(ctx context.Context, imageName string) (RowKey, bool, error)
	Patch(ctx context.Context, key RowKey, updates map[string]string) error
}

// Open constructs the configured ledger backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.LedgerBackend {
	case constants.BackendSQLite:
		return NewSQLiteStore(cfg.DBPath)
	case constants.BackendSheets:
		return NewSheetStore(ctx, cfg.GoogleServiceAccount, cfg.SheetID())
	}
	return nil, fmt.Errorf("unknown ledger backend: %s", cfg.LedgerBackend)
}

// validatePatch rejects unknown columns and attempts to rewrite the row
// key itself.
func validatePatch(updates map[string]string) error {
	if len(updates) == 0 {
		return fmt.Errorf("patch requires at least one column")
	}
	known := make(map[string]bool, len(domain.Columns))
	for _, col := range domain.Columns {
		known[col] = true
	}
	for col := range updates {
		if !known[col] {
			return fmt.Errorf("unknown ledger column: %s", col)
		}
		if col == domain.ColImageName {
			return fmt.Errorf("image_name is the row key and cannot be patched")
		}
	}
	return nil
}
