package source

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// csvReader reads transactions from CSV streams.
type csvReader struct {
	csvReader *csv.Reader
	itemCol   int // -1 in basket layout
	delimiter string
	closers   multiCloser
}

// NewCSVReader creates a CSV transaction reader from an io.Reader.
// The reader should provide the raw CSV data (already decompressed if needed).
// Outside basket layout the first row is the header and must contain the
// configured column. Lines with no characters at all are dropped by the CSV
// parser and never reach the caller; a row whose item cell is empty yields
// an empty slice.
func NewCSVReader(r io.Reader, cfg Config) (Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newCSVReader(r, cfg, nil)
}

// NewCSVReaderFromStream creates a CSV transaction reader from a stream and
// takes ownership of it. It handles gzip decompression based on the name's
// extension.
func NewCSVReaderFromStream(r io.ReadCloser, name string, cfg Config) (Reader, error) {
	if err := cfg.Validate(); err != nil {
		r.Close()
		return nil, err
	}

	var reader io.Reader = r
	closers := multiCloser{r}

	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		gzr, err := gzip.NewReader(r)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		closers = append(closers, gzr)
		reader = gzr
	}

	cr, err := newCSVReader(reader, cfg, closers)
	if err != nil {
		closers.close()
		return nil, err
	}
	return cr, nil
}

func newCSVReader(r io.Reader, cfg Config, closers multiCloser) (*csvReader, error) {
	csvr := csv.NewReader(r)
	csvr.Comma = cfg.Comma
	csvr.ReuseRecord = true
	csvr.FieldsPerRecord = -1 // Variable field count
	csvr.LazyQuotes = true

	cr := &csvReader{
		csvReader: csvr,
		itemCol:   -1,
		delimiter: cfg.Delimiter,
		closers:   closers,
	}
	if cfg.Basket {
		return cr, nil
	}

	header, err := csvr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %q: input has no header row", ErrColumnNotFound, cfg.Column)
		}
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	cr.itemCol, err = findColumn(header, cfg.Column)
	if err != nil {
		return nil, err
	}
	return cr, nil
}

// Next returns the items of the next row.
func (r *csvReader) Next() ([]string, error) {
	fields, err := r.csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read CSV row: %w", err)
	}

	if r.itemCol < 0 {
		return basketItems(fields), nil
	}
	// Short rows have no items.
	if len(fields) <= r.itemCol {
		return []string{}, nil
	}
	return SplitItems(fields[r.itemCol], r.delimiter), nil
}

// Close releases resources.
func (r *csvReader) Close() error {
	return r.closers.close()
}
