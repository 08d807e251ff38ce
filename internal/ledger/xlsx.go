package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Calls"

// XLSX keeps the ledger in a spreadsheet. Every append loads all rows and
// rewrites the whole workbook through a temp file and rename, so a failed
// write leaves the previous file intact.
type XLSX struct {
	mu   sync.Mutex
	path string
}

var _ Ledger = (*XLSX)(nil)

// NewXLSX returns a spreadsheet ledger at path. The file is created on the
// first append.
func NewXLSX(path string) *XLSX {
	return &XLSX{path: path}
}

func (x *XLSX) Append(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	entries, err := x.load()
	if err != nil {
		return err
	}
	return x.write(append(entries, e))
}

func (x *XLSX) Entries(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.load()
}

func (x *XLSX) Close() error { return nil }

func (x *XLSX) load() ([]Entry, error) {
	f, err := excelize.OpenFile(x.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", x.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", x.path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, fmt.Errorf("ledger %s: %w", x.path, err)
	}

	entries := make([]Entry, 0, len(rows)-1)
	for i, row := range rows[1:] {
		e, err := entryFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("ledger %s row %d: %w", x.path, i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func checkHeader(header []string) error {
	if len(header) != len(Columns) {
		return fmt.Errorf("unexpected header %q", header)
	}
	for i, c := range Columns {
		if header[i] != c {
			return fmt.Errorf("unexpected header %q", header)
		}
	}
	return nil
}

func (x *XLSX) write(entries []Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	last, _ := excelize.ColumnNumberToName(len(Columns))
	if err := f.SetCellStyle(sheetName, "A1", last+"1", bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, e := range entries {
		cells := e.row()
		values := make([]interface{}, len(cells))
		for j, c := range cells {
			values[j] = clip(c)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "F", 18)
	_ = f.SetColWidth(sheetName, "G", "H", 60)
	_ = f.SetColWidth(sheetName, "I", "I", 40)

	dir := filepath.Dir(x.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.xlsx")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing ledger: %w", err)
	}
	if err := os.Rename(tmpName, x.path); err != nil {
		return fmt.Errorf("replacing ledger %s: %w", x.path, err)
	}
	return nil
}

// clip keeps text within the per-cell character limit.
func clip(s string) string {
	r := []rune(s)
	if len(r) <= excelize.TotalCellChars {
		return s
	}
	return string(r[:excelize.TotalCellChars])
}
