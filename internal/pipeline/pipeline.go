// Package pipeline drives the identify-and-enrich flow: resolve pending
// images, recognize each cover, guard against duplicates, record results
// in the ledger and backfill Discogs metadata.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/averageanalysis/vinyl-recorder/internal/domain"
	"github.com/averageanalysis/vinyl-recorder/internal/ledger"
	"github.com/averageanalysis/vinyl-recorder/internal/logger"
	"github.com/averageanalysis/vinyl-recorder/internal/tracker"
)

// Recognizer identifies an album cover from raw image bytes.
type Recognizer interface {
	Identify(ctx context.Context, image []byte) (domain.Identification, error)
}

// Enricher looks up release metadata for an identified album. A nil
// result with a nil error means the album was not found.
type Enricher interface {
	Search(ctx context.Context, artist, album string) (*domain.Enrichment, error)
}

// Pipeline wires the recognizer, the enricher and the ledger together.
type Pipeline struct {
	store      ledger.Store
	recognizer Recognizer
	enricher   Enricher
	log        *logger.Logger
}

// Summary reports what a batch run did.
type Summary struct {
	Pending      int
	Identified   int
	Failed       int
	Duplicates   int
	Enriched     int
	EnrichMissed int
}

func New(store ledger.Store, recognizer Recognizer, enricher Enricher, log *logger.Logger) *Pipeline {
	return &Pipeline{
		store:      store,
		recognizer: recognizer,
		enricher:   enricher,
		log:        log.WithComponent("pipeline"),
	}
}

// PendingImages returns the source images that have no ledger row yet.
// The ledger is re-read on every call so concurrent writers are seen.
func (p *Pipeline) PendingImages(ctx context.Context, src tracker.Source) ([]tracker.Image, error) {
	images, err := src.List()
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	entries, err := p.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	recorded := make([]string, 0, len(entries))
	for _, e := range entries {
		recorded = append(recorded, e.ImageName)
	}
	return tracker.ResolvePending(images, recorded), nil
}

// RunBatch processes every pending image from src. Recognition failures
// are logged and skipped; ledger write failures abort the run. After the
// batch it sweeps the ledger for rows still missing enrichment.
func (p *Pipeline) RunBatch(ctx context.Context, src tracker.Source, sourceTag string, checkDuplicates bool) (Summary, error) {
	var sum Summary

	pending, err := p.PendingImages(ctx, src)
	if err != nil {
		return sum, err
	}
	sum.Pending = len(pending)
	p.log.Info("starting batch", "pending", len(pending), "source", sourceTag)

	for i, img := range pending {
		log := p.log.WithImage(img.Name)
		log.Info(fmt.Sprintf("[%d/%d] processing", i+1, len(pending)))

		data, err := os.ReadFile(img.Path)
		if err != nil {
			log.Error("read image failed", "error", err)
			sum.Failed++
			continue
		}

		ident, err := p.recognizer.Identify(ctx, data)
		if err != nil {
			log.Error("identification failed", "error", err)
			sum.Failed++
			continue
		}
		if !ident.Success {
			log.Warn("could not identify album")
			sum.Failed++
			continue
		}

		if checkDuplicates {
			dup, err := p.IsDuplicate(ctx, ident.Artist, ident.AlbumTitle)
			if err != nil {
				return sum, err
			}
			if dup {
				log.Warn("already in collection, skipping",
					"artist", ident.Artist, "album", ident.AlbumTitle)
				sum.Duplicates++
				continue
			}
		}

		entry := domain.NewLedgerEntry(img.Name, sourceTag, ident)
		if err := p.store.Append(ctx, entry); err != nil {
			return sum, fmt.Errorf("append %s: %w", img.Name, err)
		}
		log.Info("recorded", "artist", ident.Artist, "album", ident.AlbumTitle,
			"confidence", ident.Confidence)
		sum.Identified++
	}

	enriched, missed, err := p.EnrichPending(ctx)
	if err != nil {
		return sum, err
	}
	sum.Enriched = enriched
	sum.EnrichMissed = missed

	p.log.Info("batch finished", "identified", sum.Identified,
		"failed", sum.Failed, "duplicates", sum.Duplicates,
		"enriched", sum.Enriched)
	return sum, nil
}

// EnrichPending sweeps the ledger for rows without Discogs metadata and
// tries to fill them in. Lookup misses are left blank for a later sweep;
// ledger failures abort.
func (p *Pipeline) EnrichPending(ctx context.Context) (enriched, missed int, err error) {
	entries, err := p.store.Load(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("load ledger: %w", err)
	}

	for _, entry := range entries {
		if !entry.NeedsEnrichment() {
			continue
		}
		if entry.Artist == "" && entry.AlbumTitle == "" {
			continue
		}
		log := p.log.WithAlbum(entry.Artist, entry.AlbumTitle)

		enr, err := p.enricher.Search(ctx, entry.Artist, entry.AlbumTitle)
		if err != nil {
			log.Warn("enrichment lookup failed", "error", err)
			missed++
			continue
		}
		if enr == nil {
			log.Warn("no release found")
			missed++
			continue
		}

		// Re-find the row by name: the ledger may have shifted since Load.
		key, ok, err := p.store.FindRow(ctx, entry.ImageName)
		if err != nil {
			return enriched, missed, fmt.Errorf("find row %s: %w", entry.ImageName, err)
		}
		if !ok {
			log.Warn("row vanished before patch", "image_name", entry.ImageName)
			missed++
			continue
		}
		if err := p.store.Patch(ctx, key, enrichmentPatch(enr)); err != nil {
			return enriched, missed, fmt.Errorf("patch %s: %w", entry.ImageName, err)
		}
		log.Info("enriched", "discogs_title", enr.DiscogsTitle)
		enriched++
	}
	return enriched, missed, nil
}

// Enrich looks up metadata for a single identified album.
func (p *Pipeline) Enrich(ctx context.Context, artist, album string) (*domain.Enrichment, error) {
	return p.enricher.Search(ctx, artist, album)
}

// IsDuplicate reports whether an album with the exact same artist and
// title is already recorded. It re-reads the ledger so recent appends
// from other writers count.
func (p *Pipeline) IsDuplicate(ctx context.Context, artist, albumTitle string) (bool, error) {
	entries, err := p.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load ledger: %w", err)
	}
	for _, e := range entries {
		if e.Artist == artist && e.AlbumTitle == albumTitle {
			return true, nil
		}
	}
	return false, nil
}

// Commit records a single confirmed identification, patching in the
// enrichment when one is already in hand.
func (p *Pipeline) Commit(ctx context.Context, imageName, sourceTag string, ident domain.Identification, enr *domain.Enrichment) error {
	entry := domain.NewLedgerEntry(imageName, sourceTag, ident)
	if err := p.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("append %s: %w", imageName, err)
	}
	if enr == nil {
		return nil
	}

	key, ok, err := p.store.FindRow(ctx, imageName)
	if err != nil {
		return fmt.Errorf("find row %s: %w", imageName, err)
	}
	if !ok {
		return fmt.Errorf("row for %s not found after append", imageName)
	}
	if err := p.store.Patch(ctx, key, enrichmentPatch(enr)); err != nil {
		return fmt.Errorf("patch %s: %w", imageName, err)
	}
	return nil
}

func enrichmentPatch(enr *domain.Enrichment) map[string]string {
	return map[string]string{
		domain.ColDiscogsTitle: enr.DiscogsTitle,
		domain.ColImageURL:     enr.ImageURL,
		domain.ColTracklist:    enr.TracklistJSON(),
	}
}
