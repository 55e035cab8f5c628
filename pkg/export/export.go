// Package export renders mining results for terminals and writes them to
// CSV, Parquet and SQLite files.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Hafizh1187/apriory/internal/logctx"
	"github.com/Hafizh1187/apriory/pkg/apriori"
	"github.com/Hafizh1187/apriory/pkg/fileutil"
	"github.com/Hafizh1187/apriory/pkg/logging"
)

// ErrUnsupportedFormat indicates the output file extension is not known.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Format is an output file format.
type Format int

const (
	// FormatCSV is one row per rule with plain numeric values.
	FormatCSV Format = iota
	// FormatParquet is one row per rule with list-typed item columns.
	FormatParquet
	// FormatSQLite appends a run and its rules to a database.
	FormatSQLite
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatParquet:
		return "parquet"
	case FormatSQLite:
		return "sqlite"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// DetectFormat determines the output format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".parquet":
		return FormatParquet, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}
	return 0, fmt.Errorf("%w: %s (supported: .csv, .parquet, .db, .sqlite)", ErrUnsupportedFormat, path)
}

// WriteFile writes the rules of res to path in the format implied by its
// extension. CSV and Parquet files are replaced; SQLite databases gain a new
// run.
func WriteFile(ctx context.Context, path string, res *apriori.Result) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	log := logctx.FromContext(ctx)
	start := time.Now()

	if format == FormatSQLite {
		existed := fileutil.Exists(path)
		runID, err := WriteSQLite(ctx, path, res)
		if err != nil {
			return err
		}
		logging.FileWritten(log, path, time.Since(start)).
			Str("format", format.String()).
			Str("run_id", runID).
			Bool("appended", existed).
			Count("rules", int64(len(res.Rules))).
			Log("results written")
		return nil
	}

	err = fileutil.WriteAtomic(path, func(w io.Writer) error {
		if format == FormatCSV {
			return WriteCSV(w, res.Rules)
		}
		return WriteParquet(w, res.Rules)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	var size uint64
	if info, err := os.Stat(path); err == nil {
		size = uint64(info.Size())
	}
	logging.FileWritten(log, path, time.Since(start)).
		Str("format", format.String()).
		Count("rules", int64(len(res.Rules))).
		Bytes("size", size).
		Log("results written")
	return nil
}
