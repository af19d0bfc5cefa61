package runlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupSink(t *testing.T) (*SQLiteSink, *gorm.DB) {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)

	sink, err := NewSQLiteSink(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })
	return sink, db
}

func TestSQLiteSinkLog(t *testing.T) {
	sink, db := setupSink(t)
	ctx := context.Background()

	pickingID := int64(218039)
	ts := time.Date(2025, 8, 12, 14, 23, 0, 0, time.UTC)

	require.NoError(t, sink.Log(ctx, Entry{
		Timestamp:      ts,
		PickingID:      &pickingID,
		Reference:      "SO01234",
		Region:         "US",
		ServiceType:    "WarehousingCA",
		Status:         StatusOK,
		Message:        "linked shipment 555 (1 lines)",
		TrackingNumber: "1Z999AA10123456784",
		TrackingURL:    "https://track.example.com/1Z",
		CarrierName:    "UPS",
	}))

	// Run-level entry without a picking id.
	require.NoError(t, sink.Log(ctx, Entry{
		Timestamp: ts,
		Status:    StatusError,
		Message:   "auth error: no uid returned",
	}))

	var rows []trackingRun
	require.NoError(t, db.Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)

	assert.Equal(t, "2025-08-12T14:23:00", rows[0].TsUTC)
	require.NotNil(t, rows[0].PickingID)
	assert.Equal(t, pickingID, *rows[0].PickingID)
	assert.Equal(t, "SO01234", rows[0].Reference)
	assert.Equal(t, "US", rows[0].Region)
	assert.Equal(t, "WarehousingCA", rows[0].ServiceType)
	assert.Equal(t, "ok", rows[0].Status)
	assert.Equal(t, "1Z999AA10123456784", rows[0].TrackingNumber)
	assert.Equal(t, "https://track.example.com/1Z", rows[0].TrackingURL)
	assert.Equal(t, "UPS", rows[0].CarrierName)

	assert.Nil(t, rows[1].PickingID)
	assert.Equal(t, "error", rows[1].Status)
}

func TestSQLiteSinkQueryByStatus(t *testing.T) {
	sink, db := setupSink(t)
	ctx := context.Background()

	for i, status := range []Status{StatusOK, StatusSkip, StatusError, StatusSkip} {
		id := int64(100 + i)
		require.NoError(t, sink.Log(ctx, Entry{
			Timestamp: time.Now(),
			PickingID: &id,
			Status:    status,
		}))
	}

	var count int64
	require.NoError(t, db.Model(&trackingRun{}).Where("status = ?", "skip").Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestSQLiteSinkFlushIsNoop(t *testing.T) {
	sink, _ := setupSink(t)
	assert.NoError(t, sink.Flush(context.Background()))
}
