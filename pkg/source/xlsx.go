package source

import (
	"fmt"
	"io"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
)

// xlsxReader serves the rows of one worksheet. Workbooks are read into
// memory whole, so it holds no open resources.
type xlsxReader struct {
	rows      [][]string
	next      int
	itemCol   int // -1 in basket layout
	delimiter string
}

// NewXLSXReader reads a workbook and returns a reader over cfg.Sheet, or the
// active sheet when cfg.Sheet is empty.
func NewXLSXReader(r io.Reader, cfg Config) (Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	sheet := cfg.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	xr := &xlsxReader{rows: rows, itemCol: -1, delimiter: cfg.Delimiter}
	if cfg.Basket {
		return xr, nil
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %q: sheet %q is empty", ErrColumnNotFound, cfg.Column, sheet)
	}
	xr.itemCol, err = findColumn(rows[0], cfg.Column)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	xr.next = 1
	return xr, nil
}

// Next returns the items of the next row.
func (r *xlsxReader) Next() ([]string, error) {
	if r.next >= len(r.rows) {
		return nil, io.EOF
	}
	cells := r.rows[r.next]
	r.next++

	if r.itemCol < 0 {
		return basketItems(cells), nil
	}
	// Trailing empty cells are not returned by the workbook.
	if len(cells) <= r.itemCol {
		return []string{}, nil
	}
	return SplitItems(cells[r.itemCol], r.delimiter), nil
}

// Close releases resources.
func (r *xlsxReader) Close() error {
	r.rows = nil
	return nil
}
