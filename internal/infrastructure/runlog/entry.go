// Package runlog records one structured event per processing outcome.
// The durable SQLite sink is always active; a batched Google Sheets
// sink can be fanned in best-effort.
package runlog

import (
	"context"
	"time"
)

// Status classifies a terminal candidate outcome.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
	StatusSkip  Status = "skip"
)

// Entry is one run-log event. PickingID is nil for run-level entries
// (authentication or search failures, empty runs).
type Entry struct {
	Timestamp      time.Time
	PickingID      *int64
	Reference      string
	Region         string
	ServiceType    string
	Status         Status
	Message        string
	TrackingNumber string
	TrackingURL    string
	CarrierName    string
}

// Sink is a destination for run-log entries. Log appends one entry;
// Flush forces out anything buffered.
type Sink interface {
	Log(ctx context.Context, e Entry) error
	Flush(ctx context.Context) error
	Close() error
}
