// Package export serializes fetched audit-log records to CSV or JSON files.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/audittools/gh-audit-export/pkg/logging"
	"github.com/audittools/gh-audit-export/pkg/pagination"
)

// Format selects the output serialization.
type Format string

const (
	// FormatCSV writes comma-separated values with a header row.
	FormatCSV Format = "csv"

	// FormatJSON writes a single top-level JSON array.
	FormatJSON Format = "json"
)

// ParseFormat validates a format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want csv or json)", s)
	}
}

var exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ghaudit_exports_total",
	Help: "Total completed exports by format",
}, []string{"format"})

// Options configures a single write.
type Options struct {
	Format Format
	Path   string

	// AllColumns switches the CSV header from first-record keys to the
	// union of all records' keys. Off by default: the default behavior
	// silently drops columns absent from the first record.
	AllColumns bool
}

// WriteError is a fatal filesystem or serialization failure during output.
// When it is returned, no complete file exists at the target path.
type WriteError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *WriteError) Unwrap() error {
	return e.Err
}

func (o Options) validate() error {
	if o.Format != FormatCSV && o.Format != FormatJSON {
		return fmt.Errorf("unknown output format %q", o.Format)
	}
	if o.Path == "" {
		return fmt.Errorf("output path is empty")
	}
	return nil
}

// Write serializes results and writes them to opts.Path, creating or
// replacing the file. The content is staged in a temp file in the target
// directory and renamed into place, so a failed write never leaves a
// partial file at the destination.
func Write(results pagination.ResultSet, opts Options) error {
	logger := logging.NewLogger("export")

	if err := opts.validate(); err != nil {
		return &WriteError{Path: opts.Path, Err: err}
	}

	var data []byte
	var err error
	switch opts.Format {
	case FormatCSV:
		data, err = encodeCSV(results, opts.AllColumns, logger)
	case FormatJSON:
		data, err = encodeJSON(results)
	}
	if err != nil {
		return &WriteError{Path: opts.Path, Err: err}
	}

	if err := writeAtomic(opts.Path, data); err != nil {
		logger.Error().Err(err).Str("path", opts.Path).Msg("Output file write failed")
		return &WriteError{Path: opts.Path, Err: err}
	}

	exportsTotal.WithLabelValues(string(opts.Format)).Inc()
	logger.Info().
		Str("path", opts.Path).
		Str("format", string(opts.Format)).
		Int("records", len(results)).
		Int("bytes", len(data)).
		Msg("Export written")

	return nil
}

// encodeJSON renders the result set as a two-space indented JSON array,
// preserving record field order. An empty set renders as [].
func encodeJSON(results pagination.ResultSet) ([]byte, error) {
	if results == nil {
		results = pagination.ResultSet{}
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// writeAtomic stages data in a temp file and renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".ghaudit-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// DefaultFilename returns a timestamped output filename for when the user
// does not supply one.
func DefaultFilename(format Format) string {
	return fmt.Sprintf("github_audit_%s.%s", time.Now().Format("20060102_150405"), format)
}
