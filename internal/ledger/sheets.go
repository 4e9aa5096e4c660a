package ledger

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/averageanalysis/vinyl-recorder/internal/domain"
)

const dataRange = "A:K"

// SheetStore keeps the ledger in the first sheet of a Google spreadsheet.
// Row 1 is the header row; data rows start at 2.
type SheetStore struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheetStore authenticates with a base64-encoded service account JSON
// blob, matching how the credential is shipped in the environment.
func NewSheetStore(ctx context.Context, encodedCreds, spreadsheetID string) (*SheetStore, error) {
	creds, err := base64.StdEncoding.DecodeString(encodedCreds)
	if err != nil {
		return nil, fmt.Errorf("failed to decode service account: %w", err)
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(creds),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetStore{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (s *SheetStore) Load(ctx context.Context) ([]domain.LedgerEntry, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, dataRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	// A sheet with only the header row (or nothing at all) is an empty
	// ledger, not an error.
	if len(resp.Values) <= 1 {
		return []domain.LedgerEntry{}, nil
	}

	header := headerIndex(resp.Values[0])
	entries := make([]domain.LedgerEntry, 0, len(resp.Values)-1)
	for _, record := range resp.Values[1:] {
		entries = append(entries, entryFromRecord(header, record))
	}
	return entries, nil
}

func (s *SheetStore) Append(ctx context.Context, entry domain.LedgerEntry) error {
	vr := &sheets.ValueRange{
		Values: [][]interface{}{rowValues(entry)},
	}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, dataRange, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}

func (s *SheetStore) FindRow(ctx context.Context, imageName string) (RowKey, bool, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, "A:A").Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read image_name column: %w", err)
	}

	for i, record := range resp.Values {
		if i == 0 {
			continue // header
		}
		if len(record) > 0 && cellString(record[0]) == imageName {
			return RowKey(i + 1), true, nil
		}
	}
	return 0, false, nil
}

func (s *SheetStore) Patch(ctx context.Context, key RowKey, updates map[string]string) error {
	if err := validatePatch(updates); err != nil {
		return err
	}

	headerResp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, "1:1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read header row: %w", err)
	}
	if len(headerResp.Values) == 0 {
		return fmt.Errorf("sheet has no header row")
	}
	header := headerIndex(headerResp.Values[0])

	for _, col := range domain.Columns {
		value, ok := updates[col]
		if !ok {
			continue
		}
		idx, ok := header[col]
		if !ok {
			return fmt.Errorf("column %s not present in sheet header", col)
		}

		cell := fmt.Sprintf("%s%d", columnLetter(idx), key)
		vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
		_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, cell, vr).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", cell, err)
		}
	}
	return nil
}

func headerIndex(record []interface{}) map[string]int {
	index := make(map[string]int, len(record))
	for i, cell := range record {
		index[cellString(cell)] = i
	}
	return index
}

func entryFromRecord(header map[string]int, record []interface{}) domain.LedgerEntry {
	get := func(col string) string {
		idx, ok := header[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return cellString(record[idx])
	}

	success, _ := strconv.ParseBool(strings.ToLower(get(domain.ColSuccess)))
	return domain.LedgerEntry{
		ImageName:    get(domain.ColImageName),
		ProcessDate:  get(domain.ColProcessDate),
		Source:       get(domain.ColSource),
		Success:      success,
		Artist:       get(domain.ColArtist),
		AlbumTitle:   get(domain.ColAlbumTitle),
		AlbumYear:    get(domain.ColAlbumYear),
		Confidence:   get(domain.ColConfidence),
		DiscogsTitle: get(domain.ColDiscogsTitle),
		ImageURL:     get(domain.ColImageURL),
		Tracklist:    get(domain.ColTracklist),
	}
}

// rowValues lays the entry out in the persisted column order.
func rowValues(entry domain.LedgerEntry) []interface{} {
	return []interface{}{
		entry.ImageName,
		entry.ProcessDate,
		entry.Source,
		strconv.FormatBool(entry.Success),
		entry.Artist,
		entry.AlbumTitle,
		entry.AlbumYear,
		entry.Confidence,
		entry.DiscogsTitle,
		entry.ImageURL,
		entry.Tracklist,
	}
}

func cellString(cell interface{}) string {
	if s, ok := cell.(string); ok {
		return s
	}
	return fmt.Sprint(cell)
}

// columnLetter converts a zero-based column index to its A1 letter.
func columnLetter(idx int) string {
	letters := ""
	for idx >= 0 {
		letters = string(rune('A'+idx%26)) + letters
		idx = idx/26 - 1
	}
	return letters
}
