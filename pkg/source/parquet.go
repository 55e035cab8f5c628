package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// parquetReader reads transactions from Parquet files by iterating through
// row groups. The item column may be a plain string holding delimited items
// or a repeated string column with one item per value.
type parquetReader struct {
	file      *parquet.File
	itemCol   int
	delimiter string
	closers   multiCloser

	// Row group iteration state
	rowGroups    []parquet.RowGroup
	currentRGIdx int
	currentRows  parquet.Rows
	rowBuf       []parquet.Row
	bufIdx       int
	bufLen       int
}

// NewParquetReader creates a Parquet transaction reader from an io.ReaderAt.
// The caller keeps ownership of r.
func NewParquetReader(r io.ReaderAt, size int64, cfg Config) (Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newParquetReader(r, size, cfg)
}

func newParquetReader(r io.ReaderAt, size int64, cfg Config) (*parquetReader, error) {
	file, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	col, err := detectItemColumn(file.Schema(), cfg.Column)
	if err != nil {
		return nil, err
	}

	return &parquetReader{
		file:         file,
		itemCol:      col,
		delimiter:    cfg.Delimiter,
		rowGroups:    file.RowGroups(),
		currentRGIdx: -1,
		rowBuf:       make([]parquet.Row, 1024),
	}, nil
}

// NewParquetReaderFromStream buffers a stream to a temp file, since Parquet
// requires random access, and reads it from there. The temp file is removed
// on Close.
func NewParquetReaderFromStream(r io.ReadCloser, cfg Config) (Reader, error) {
	tempFile, err := os.CreateTemp("", "apriori-source-*.parquet")
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tf := &tempFileReader{file: tempFile, path: tempFile.Name()}

	written, err := io.Copy(tempFile, r)
	r.Close()
	if err != nil {
		tf.Close()
		return nil, fmt.Errorf("buffer parquet data: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		tf.Close()
		return nil, err
	}
	pr, err := newParquetReader(tempFile, written, cfg)
	if err != nil {
		tf.Close()
		return nil, err
	}
	pr.closers = append(pr.closers, tf)
	return pr, nil
}

// detectItemColumn returns the leaf column index of the field named name,
// ignoring case. For nested fields the first leaf is used.
func detectItemColumn(schema *parquet.Schema, name string) (int, error) {
	for _, path := range schema.Columns() {
		if len(path) == 0 || !strings.EqualFold(path[0], name) {
			continue
		}
		leaf, ok := schema.Lookup(path...)
		if !ok {
			break
		}
		return leaf.ColumnIndex, nil
	}
	return -1, fmt.Errorf("%w: parquet schema has no %q column", ErrColumnNotFound, name)
}

// Next returns the items of the next row.
func (r *parquetReader) Next() ([]string, error) {
	for {
		if r.bufIdx < r.bufLen {
			row := r.rowBuf[r.bufIdx]
			r.bufIdx++
			return r.rowItems(row), nil
		}

		if r.currentRows != nil {
			n, err := r.currentRows.ReadRows(r.rowBuf)
			if n > 0 {
				r.bufIdx = 0
				r.bufLen = n
				continue
			}
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("read parquet rows: %w", err)
			}
			// Current row group exhausted
			r.currentRows.Close()
			r.currentRows = nil
		}

		r.currentRGIdx++
		if r.currentRGIdx >= len(r.rowGroups) {
			return nil, io.EOF
		}
		r.currentRows = r.rowGroups[r.currentRGIdx].Rows()
	}
}

func (r *parquetReader) rowItems(row parquet.Row) []string {
	items := []string{}
	for _, val := range row {
		if val.Column() != r.itemCol || val.IsNull() {
			continue
		}
		items = append(items, SplitItems(val.String(), r.delimiter)...)
	}
	return items
}

// Close releases resources.
func (r *parquetReader) Close() error {
	if r.currentRows != nil {
		r.currentRows.Close()
		r.currentRows = nil
	}
	return r.closers.close()
}
