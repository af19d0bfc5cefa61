package runlog

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// trackingRun is the persisted row shape of one run-log entry.
type trackingRun struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	TsUTC          string `gorm:"column:ts_utc;not null;index:idx_runs_main,priority:3"`
	PickingID      *int64 `gorm:"column:picking_id;index:idx_runs_main,priority:1"`
	Reference      string
	Region         string
	ServiceType    string
	Status         string `gorm:"index:idx_runs_main,priority:2"`
	Message        string
	TrackingNumber string
	TrackingURL    string `gorm:"column:tracking_url"`
	CarrierName    string
}

// TableName returns the run-log table name.
func (trackingRun) TableName() string { return "tracking_runs" }

// Open opens (creating if needed) the run-log database at path.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("runlog: open %s: %w", path, err)
	}
	return db, nil
}

// SQLiteSink is the durable relational sink. Entries are written
// synchronously, one row per terminal outcome.
type SQLiteSink struct {
	db *gorm.DB
}

// NewSQLiteSink migrates the run-log schema and returns the sink.
func NewSQLiteSink(db *gorm.DB) (*SQLiteSink, error) {
	if err := db.AutoMigrate(&trackingRun{}); err != nil {
		return nil, fmt.Errorf("runlog: migrate: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Log appends one entry.
func (s *SQLiteSink) Log(ctx context.Context, e Entry) error {
	row := trackingRun{
		TsUTC:          e.Timestamp.UTC().Format("2006-01-02T15:04:05"),
		PickingID:      e.PickingID,
		Reference:      e.Reference,
		Region:         e.Region,
		ServiceType:    e.ServiceType,
		Status:         string(e.Status),
		Message:        e.Message,
		TrackingNumber: e.TrackingNumber,
		TrackingURL:    e.TrackingURL,
		CarrierName:    e.CarrierName,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("runlog: insert: %w", err)
	}
	return nil
}

// Flush is a no-op; nothing is buffered.
func (s *SQLiteSink) Flush(ctx context.Context) error { return nil }

// Close closes the underlying database.
func (s *SQLiteSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
