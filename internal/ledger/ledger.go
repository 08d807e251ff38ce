// Package ledger is the append-only record of placed calls.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnknownDriver is returned by Open for unsupported backends.
var ErrUnknownDriver = errors.New("unknown ledger driver")

// TimeLayout is how entry timestamps are rendered in the store.
const TimeLayout = "2006-01-02 15:04:05"

// Columns is the fixed schema, in order.
var Columns = []string{
	"Date & Time",
	"Phone Number",
	"Language",
	"Status",
	"Duration",
	"Cost",
	"Summary",
	"Full Transcript",
	"Call ID",
}

// Entry is one persisted call.
type Entry struct {
	Timestamp  time.Time
	Phone      string
	Language   string
	Status     string
	Duration   string
	Cost       decimal.Decimal
	Summary    string
	Transcript string
	CallID     string
}

// Ledger stores entries in insertion order. Append never drops or reorders
// earlier entries. Implementations assume a single writer process.
type Ledger interface {
	Append(ctx context.Context, e Entry) error
	Entries(ctx context.Context) ([]Entry, error)
	Close() error
}

// Open returns the backend named by driver ("xlsx" or "sqlite") at path.
func Open(driver, path string) (Ledger, error) {
	switch driver {
	case "xlsx":
		return NewXLSX(path), nil
	case "sqlite":
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func (e Entry) row() []string {
	return []string{
		e.Timestamp.Format(TimeLayout),
		e.Phone,
		e.Language,
		e.Status,
		e.Duration,
		e.Cost.StringFixed(2),
		e.Summary,
		e.Transcript,
		e.CallID,
	}
}

func entryFromRow(row []string) (Entry, error) {
	cells := make([]string, len(Columns))
	copy(cells, row)

	var e Entry
	if cells[0] != "" {
		ts, err := time.ParseInLocation(TimeLayout, cells[0], time.Local)
		if err != nil {
			return Entry{}, fmt.Errorf("parsing %s %q: %w", Columns[0], cells[0], err)
		}
		e.Timestamp = ts
	}
	if cells[5] != "" {
		cost, err := decimal.NewFromString(cells[5])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing %s %q: %w", Columns[5], cells[5], err)
		}
		e.Cost = cost
	}
	e.Phone = cells[1]
	e.Language = cells[2]
	e.Status = cells[3]
	e.Duration = cells[4]
	e.Summary = cells[6]
	e.Transcript = cells[7]
	e.CallID = cells[8]
	return e, nil
}
