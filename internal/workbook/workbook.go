// Package workbook wraps an xlsx workbook with the handful of typed
// operations the price tracker needs: open-or-create, header init, first
// empty row lookup, row append and save.
package workbook

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	// headerRow is the spreadsheet row holding the column labels.
	headerRow = 2
	// dataStartRow is the first row that may hold a price record.
	dataStartRow = 3
	// timestampCol and priceCol are 1-based column indices (B and C).
	timestampCol = 2
	priceCol     = 3

	labelTimestamp = "Timestamp (UTC)"
	labelPrice     = "BTC Price (USD)"

	// Cell display formats. The price format is currency with thousands
	// grouping and no decimals; the timestamp format is one the engine
	// recognizes as a date-time.
	timestampNumFmt = "yyyy-mm-dd hh:mm:ss"
	priceNumFmt     = "$#,##0"
)

// ErrSheetFull is returned when every row up to the engine's maximum holds
// a value and no record can be appended.
var ErrSheetFull = errors.New("workbook: no empty row left in sheet")

// Workbook is an exclusively-owned in-memory workbook bound to a file path.
// Nothing touches the path until Save.
type Workbook struct {
	f     *excelize.File
	path  string
	sheet string
	// maxRows bounds the empty-row scan. It is the xlsx format's row
	// limit; tests lower it to reach the exhaustion path.
	maxRows int
}

// Open loads the workbook at path, or builds a fresh single-sheet workbook
// bound to path when no file exists there. The sheet at index 0 is the
// target sheet and is renamed to sheetName when it differs. A corrupt
// existing file surfaces the engine's load error as-is.
func Open(path, sheetName string) (*Workbook, error) {
	var f *excelize.File
	info, err := os.Stat(path)
	switch {
	case err == nil && info.Mode().IsRegular():
		f, err = excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook %s: %w", path, err)
		}
	case err == nil:
		return nil, fmt.Errorf("open workbook %s: not a regular file", path)
	case errors.Is(err, os.ErrNotExist):
		f = excelize.NewFile()
	default:
		// An unreadable path is not the same thing as a missing file;
		// creating a fresh workbook here would mask it until save.
		return nil, fmt.Errorf("stat workbook %s: %w", path, err)
	}

	current := f.GetSheetName(0)
	if current != sheetName {
		if err := f.SetSheetName(current, sheetName); err != nil {
			f.Close()
			return nil, fmt.Errorf("rename sheet %q: %w", current, err)
		}
	}

	return &Workbook{f: f, path: path, sheet: sheetName, maxRows: excelize.TotalRows}, nil
}

// Path returns the file path the workbook saves to by default.
func (w *Workbook) Path() string { return w.path }

// Sheet returns the target sheet name.
func (w *Workbook) Sheet() string { return w.sheet }

// Close releases the underlying workbook without saving.
func (w *Workbook) Close() error { return w.f.Close() }

// EnsureHeader writes the label row and its bold style on first run.
// The sentinel is the timestamp label cell: any value there means the
// header already exists and nothing is written.
func (w *Workbook) EnsureHeader() error {
	sentinel, err := cellName(timestampCol, headerRow)
	if err != nil {
		return err
	}
	v, err := w.f.GetCellValue(w.sheet, sentinel)
	if err != nil {
		return fmt.Errorf("read sentinel cell %s: %w", sentinel, err)
	}
	if v != "" {
		return nil
	}

	priceCell, err := cellName(priceCol, headerRow)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStr(w.sheet, sentinel, labelTimestamp); err != nil {
		return fmt.Errorf("write header label: %w", err)
	}
	if err := w.f.SetCellStr(w.sheet, priceCell, labelPrice); err != nil {
		return fmt.Errorf("write header label: %w", err)
	}

	bold, err := w.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("build header style: %w", err)
	}
	if err := w.f.SetCellStyle(w.sheet, sentinel, priceCell, bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	// The engine offers direct column sizing, so size the two data
	// columns to fit their contents once at init.
	if err := w.f.SetColWidth(w.sheet, "B", "B", 20); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := w.f.SetColWidth(w.sheet, "C", "C", 16); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	return nil
}

// FirstEmptyRow scans the timestamp column from the first data row and
// returns the first row without a value. The scan is bounded by the
// engine's maximum row count; exhaustion returns ErrSheetFull rather than
// silently wrapping or growing past the format's limit.
func (w *Workbook) FirstEmptyRow() (int, error) {
	rows, err := w.f.GetRows(w.sheet)
	if err != nil {
		return 0, fmt.Errorf("scan rows: %w", err)
	}
	for row := dataStartRow; row <= w.maxRows; row++ {
		if row > len(rows) {
			return row, nil
		}
		cells := rows[row-1]
		if len(cells) < timestampCol || cells[timestampCol-1] == "" {
			return row, nil
		}
	}
	return 0, ErrSheetFull
}

// AppendQuote writes one price record into row: the update time as a typed
// date-time value in column B and the price as a typed number in column C,
// each with its display format. The timestamp is normalized to UTC before
// writing since the written format carries no zone indicator.
func (w *Workbook) AppendQuote(row int, updated time.Time, price float64) error {
	tsCell, err := cellName(timestampCol, row)
	if err != nil {
		return err
	}
	priceCell, err := cellName(priceCol, row)
	if err != nil {
		return err
	}

	if err := w.f.SetCellValue(w.sheet, tsCell, updated.UTC()); err != nil {
		return fmt.Errorf("write timestamp: %w", err)
	}
	if err := w.applyNumFmt(tsCell, timestampNumFmt); err != nil {
		return err
	}

	if err := w.f.SetCellValue(w.sheet, priceCell, price); err != nil {
		return fmt.Errorf("write price: %w", err)
	}
	if err := w.applyNumFmt(priceCell, priceNumFmt); err != nil {
		return err
	}
	return nil
}

func (w *Workbook) applyNumFmt(cell, numFmt string) error {
	style, err := w.f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("build style %q: %w", numFmt, err)
	}
	if err := w.f.SetCellStyle(w.sheet, cell, cell, style); err != nil {
		return fmt.Errorf("apply style %q to %s: %w", numFmt, cell, err)
	}
	return nil
}

// Record is one recorded price row, values as the sheet displays them.
type Record struct {
	Timestamp string `json:"timestamp"`
	Price     string `json:"price"`
}

// Records returns every recorded data row in sheet order.
func (w *Workbook) Records() ([]Record, error) {
	rows, err := w.f.GetRows(w.sheet)
	if err != nil {
		return nil, fmt.Errorf("scan rows: %w", err)
	}
	var out []Record
	for i := dataStartRow - 1; i < len(rows); i++ {
		cells := rows[i]
		if len(cells) < timestampCol || cells[timestampCol-1] == "" {
			break
		}
		rec := Record{Timestamp: cells[timestampCol-1]}
		if len(cells) >= priceCol {
			rec.Price = cells[priceCol-1]
		}
		out = append(out, rec)
	}
	return out, nil
}

// Save serializes the workbook to its own path.
func (w *Workbook) Save() error {
	return w.SaveTo(w.path)
}

// SaveTo serializes the workbook to path, overriding the bound path.
// A failed save wraps the engine error; the previous on-disk file is
// replaced only on success.
func (w *Workbook) SaveTo(path string) error {
	if path == "" {
		return fmt.Errorf("save workbook: empty path")
	}
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func cellName(col, row int) (string, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("cell (%d,%d): %w", col, row, err)
	}
	return name, nil
}
