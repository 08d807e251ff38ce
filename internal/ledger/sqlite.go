package ledger

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	glog "gorm.io/gorm/logger"
)

// callRow is the table model. Cost is kept as text to preserve the exact
// decimal.
type callRow struct {
	ID         uint      `gorm:"primaryKey"`
	Timestamp  time.Time `gorm:"not null"`
	Phone      string    `gorm:"size:32"`
	Language   string    `gorm:"size:64"`
	Status     string    `gorm:"size:32;index"`
	Duration   string    `gorm:"size:32"`
	Cost       string    `gorm:"size:32"`
	Summary    string
	Transcript string
	CallID     string `gorm:"size:128;index"`
}

func (callRow) TableName() string { return "call_ledger" }

// SQLite keeps the ledger in a SQLite table. Appends are single inserts;
// ordering comes from the autoincrement id.
type SQLite struct {
	db *gorm.DB
}

var _ Ledger = (*SQLite)(nil)

// NewSQLite opens (creating if needed) the database at path and migrates the
// ledger table.
func NewSQLite(path string) (*SQLite, error) {
	silent := glog.New(log.New(io.Discard, "", log.LstdFlags), glog.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  glog.Silent,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: silent})
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	if err := db.AutoMigrate(&callRow{}); err != nil {
		return nil, fmt.Errorf("migrating ledger %s: %w", path, err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Append(ctx context.Context, e Entry) error {
	row := callRow{
		Timestamp:  e.Timestamp,
		Phone:      e.Phone,
		Language:   e.Language,
		Status:     e.Status,
		Duration:   e.Duration,
		Cost:       e.Cost.StringFixed(2),
		Summary:    e.Summary,
		Transcript: e.Transcript,
		CallID:     e.CallID,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("inserting ledger entry: %w", err)
	}
	return nil
}

func (s *SQLite) Entries(ctx context.Context) ([]Entry, error) {
	var rows []callRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		cost, err := decimal.NewFromString(r.Cost)
		if err != nil {
			return nil, fmt.Errorf("ledger row %d: parsing cost %q: %w", r.ID, r.Cost, err)
		}
		entries = append(entries, Entry{
			Timestamp:  r.Timestamp,
			Phone:      r.Phone,
			Language:   r.Language,
			Status:     r.Status,
			Duration:   r.Duration,
			Cost:       cost,
			Summary:    r.Summary,
			Transcript: r.Transcript,
			CallID:     r.CallID,
		})
	}
	return entries, nil
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
