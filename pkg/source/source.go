// Package source reads raw transactions from CSV, XLSX and Parquet files,
// locally or in S3.
//
// A transaction is the list of item tokens of one input row. Tokens are
// returned as found; trimming, deduplication and discarding of empty rows
// happen when the transaction set is built.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Hafizh1187/apriory/internal/logctx"
)

// Reader is the interface for reading transactions row by row.
type Reader interface {
	// Next returns the item tokens of the next row. An empty row yields an
	// empty slice. Returns io.EOF when all rows have been read.
	Next() ([]string, error)

	// Close releases resources associated with the reader.
	Close() error
}

// Config describes where the items are within each row.
type Config struct {
	// Column is the header (or Parquet field) holding the items.
	// Default: "Items"
	Column string

	// Delimiter separates items within the column. Default: ","
	Delimiter string

	// Basket treats every non-empty cell of a row as an item. The input has
	// no header row, and Column and Delimiter are ignored.
	Basket bool

	// Sheet selects the XLSX worksheet. Empty means the active sheet.
	Sheet string

	// Comma is the CSV field separator. Default: ','
	Comma rune
}

// DefaultConfig returns the layout of the original spreadsheets: an "Items"
// column holding comma-separated products.
func DefaultConfig() Config {
	return Config{
		Column:    "Items",
		Delimiter: ",",
		Comma:     ',',
	}
}

// Validate fills defaults for zero-valued fields and checks the rest.
func (c *Config) Validate() error {
	if c.Column == "" {
		c.Column = "Items"
	}
	if c.Delimiter == "" {
		c.Delimiter = ","
	}
	if c.Comma == 0 {
		c.Comma = ','
	}
	if c.Comma == '"' || c.Comma == '\r' || c.Comma == '\n' || !utf8.ValidRune(c.Comma) || c.Comma == utf8.RuneError {
		return fmt.Errorf("%w: invalid field separator %q", ErrInvalidConfig, c.Comma)
	}
	return nil
}

// WithColumn sets the item column.
func (c Config) WithColumn(name string) Config {
	c.Column = name
	return c
}

// WithDelimiter sets the item delimiter.
func (c Config) WithDelimiter(d string) Config {
	c.Delimiter = d
	return c
}

// WithBasket switches to basket layout.
func (c Config) WithBasket(basket bool) Config {
	c.Basket = basket
	return c
}

// WithSheet selects an XLSX worksheet.
func (c Config) WithSheet(name string) Config {
	c.Sheet = name
	return c
}

// Format is an input file format.
type Format int

const (
	// FormatCSV is comma-separated text, optionally gzip-compressed.
	FormatCSV Format = iota
	// FormatXLSX is an Excel workbook.
	FormatXLSX
	// FormatParquet is an Apache Parquet file.
	FormatParquet
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	case FormatParquet:
		return "parquet"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// DetectFormat determines the format from the file name's extension.
// Only CSV may carry an additional .gz suffix.
func DetectFormat(name string) (Format, error) {
	lower := strings.ToLower(name)
	gz := strings.HasSuffix(lower, ".gz")
	switch ext := filepath.Ext(strings.TrimSuffix(lower, ".gz")); {
	case ext == ".csv" || ext == ".txt":
		return FormatCSV, nil
	case ext == ".xlsx" && !gz:
		return FormatXLSX, nil
	case ext == ".parquet" && !gz:
		return FormatParquet, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

// Open returns a Reader for a local path or an s3:// URI.
func Open(ctx context.Context, path string, cfg Config) (Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strings.HasPrefix(path, "s3://") {
		client, err := NewClient(ctx)
		if err != nil {
			return nil, err
		}
		return client.Open(ctx, path, cfg)
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}

	switch format {
	case FormatCSV:
		return NewCSVReaderFromStream(f, path, cfg)
	case FormatXLSX:
		defer f.Close()
		return NewXLSXReader(f, cfg)
	default:
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("stat source: %w", err)
		}
		r, err := newParquetReader(f, info.Size(), cfg)
		if err != nil {
			f.Close()
			return nil, err
		}
		r.closers = append(r.closers, f)
		return r, nil
	}
}

// ReadAll drains r into a slice of transactions. Cancellation is checked
// every few thousand rows.
func ReadAll(ctx context.Context, r Reader) ([][]string, error) {
	log := logctx.FromContext(ctx)
	var out [][]string
	for {
		if len(out)%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		items, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(out)+1, err)
		}
		out = append(out, items)
	}
	log.Debug().Int("rows", len(out)).Msg("read transactions")
	return out, nil
}

// Load opens path, reads every transaction and closes the reader.
func Load(ctx context.Context, path string, cfg Config) ([][]string, error) {
	ctx = logctx.WithStr(ctx, "source", path)
	r, err := Open(ctx, path, cfg)
	if err != nil {
		return nil, err
	}
	txs, err := ReadAll(ctx, r)
	if cerr := r.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close source: %w", cerr)
	}
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// SplitItems splits one cell into item tokens. Blank tokens are kept; the
// transaction set drops them.
func SplitItems(cell, delimiter string) []string {
	if strings.TrimSpace(cell) == "" {
		return []string{}
	}
	return strings.Split(cell, delimiter)
}

// basketItems copies the non-empty cells of a row.
func basketItems(cells []string) []string {
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}

// findColumn locates name in header, ignoring case, surrounding whitespace
// and a UTF-8 byte order mark.
func findColumn(header []string, name string) (int, error) {
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if strings.EqualFold(h, name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q not in header %v", ErrColumnNotFound, name, header)
}

// multiCloser closes in reverse order and reports the first error.
type multiCloser []io.Closer

func (m multiCloser) close() error {
	var firstErr error
	for i := len(m) - 1; i >= 0; i-- {
		if err := m[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
