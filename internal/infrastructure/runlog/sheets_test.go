package runlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryWithMessage(msg string) Entry {
	return Entry{
		Timestamp: time.Date(2025, 8, 12, 14, 23, 0, 0, time.UTC),
		Status:    StatusOK,
		Message:   msg,
	}
}

func TestSheetsSinkBatching(t *testing.T) {
	var appended [][][]any
	sink := newSheetsSink(func(ctx context.Context, rows [][]any) error {
		appended = append(appended, rows)
		return nil
	}, 3)
	ctx := context.Background()

	require.NoError(t, sink.Log(ctx, entryWithMessage("one")))
	require.NoError(t, sink.Log(ctx, entryWithMessage("two")))
	assert.Empty(t, appended, "batch must not be appended before it is full")

	require.NoError(t, sink.Log(ctx, entryWithMessage("three")))
	require.Len(t, appended, 1)
	assert.Len(t, appended[0], 3)

	// Buffer starts fresh after an append.
	require.NoError(t, sink.Log(ctx, entryWithMessage("four")))
	assert.Len(t, appended, 1)
}

func TestSheetsSinkFlush(t *testing.T) {
	var appended [][][]any
	sink := newSheetsSink(func(ctx context.Context, rows [][]any) error {
		appended = append(appended, rows)
		return nil
	}, 10)
	ctx := context.Background()

	require.NoError(t, sink.Log(ctx, entryWithMessage("one")))
	require.NoError(t, sink.Flush(ctx))
	require.Len(t, appended, 1)
	assert.Len(t, appended[0], 1)

	// Flushing an empty buffer performs no append.
	require.NoError(t, sink.Flush(ctx))
	assert.Len(t, appended, 1)
}

func TestSheetsSinkAppendFailure(t *testing.T) {
	sink := newSheetsSink(func(ctx context.Context, rows [][]any) error {
		return errors.New("quota exceeded")
	}, 1)

	err := sink.Log(context.Background(), entryWithMessage("one"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets append")

	// Failed rows are dropped; the next flush has nothing to send.
	assert.NoError(t, sink.Flush(context.Background()))
}

func TestSheetRow(t *testing.T) {
	pickingID := int64(218039)
	row := sheetRow(Entry{
		Timestamp:      time.Date(2025, 8, 12, 14, 23, 0, 0, time.UTC),
		PickingID:      &pickingID,
		Reference:      "SO01234",
		Region:         "US",
		ServiceType:    "WarehousingCA",
		Status:         StatusError,
		Message:        "no tracking info",
		TrackingNumber: "1Z",
		TrackingURL:    "https://t",
		CarrierName:    "UPS",
	})

	assert.Equal(t, []any{
		"2025-08-12T14:23:00Z",
		"218039",
		"SO01234",
		"US",
		"WarehousingCA",
		"error",
		"no tracking info",
		"1Z",
		"https://t",
		"UPS",
	}, row)

	rowNoPicking := sheetRow(entryWithMessage("run level"))
	assert.Equal(t, "", rowNoPicking[1])
}
