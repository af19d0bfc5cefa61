package runlog

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsConfig holds the spreadsheet sink settings.
type SheetsConfig struct {
	CredentialsFile string
	SpreadsheetID   string
	Tab             string
	BatchSize       int
}

// appendRowsFunc appends a block of rows to the spreadsheet tab.
type appendRowsFunc func(ctx context.Context, rows [][]any) error

// SheetsSink buffers entries in memory and appends them to a Google
// Sheets tab in batches: when the buffer reaches the batch size and
// unconditionally on Flush. It is a best-effort secondary sink;
// callers treat its failures as warnings.
type SheetsSink struct {
	appendRows appendRowsFunc
	batchSize  int

	mu  sync.Mutex
	buf [][]any
}

// NewSheetsSink builds a sink backed by the Sheets API using the
// given service-account credentials file.
func NewSheetsSink(ctx context.Context, cfg SheetsConfig) (*SheetsSink, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("runlog: sheets service: %w", err)
	}

	appendRows := func(ctx context.Context, rows [][]any) error {
		vr := &sheets.ValueRange{Values: rows}
		_, err := svc.Spreadsheets.Values.
			Append(cfg.SpreadsheetID, cfg.Tab, vr).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		return err
	}
	return newSheetsSink(appendRows, cfg.BatchSize), nil
}

func newSheetsSink(appendRows appendRowsFunc, batchSize int) *SheetsSink {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &SheetsSink{appendRows: appendRows, batchSize: batchSize}
}

// Log buffers one entry, appending the whole batch once it is full.
func (s *SheetsSink) Log(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = append(s.buf, sheetRow(e))
	if len(s.buf) < s.batchSize {
		return nil
	}
	return s.flushLocked(ctx)
}

// Flush appends any buffered rows.
func (s *SheetsSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(ctx)
}

func (s *SheetsSink) flushLocked(ctx context.Context) error {
	if len(s.buf) == 0 {
		return nil
	}
	rows := s.buf
	s.buf = nil
	if err := s.appendRows(ctx, rows); err != nil {
		// Rows are dropped on failure: the primary sink already holds
		// the durable copy.
		return fmt.Errorf("runlog: sheets append: %w", err)
	}
	return nil
}

// Close flushes nothing; Flush is the explicit contract.
func (s *SheetsSink) Close() error { return nil }

func sheetRow(e Entry) []any {
	picking := ""
	if e.PickingID != nil {
		picking = strconv.FormatInt(*e.PickingID, 10)
	}
	return []any{
		e.Timestamp.UTC().Format(time.RFC3339),
		picking,
		e.Reference,
		e.Region,
		e.ServiceType,
		string(e.Status),
		e.Message,
		e.TrackingNumber,
		e.TrackingURL,
		e.CarrierName,
	}
}
