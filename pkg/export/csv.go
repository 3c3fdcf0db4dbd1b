package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/audittools/gh-audit-export/pkg/pagination"
)

// flattenSep joins nested object keys into CSV column names.
const flattenSep = "_"

// encodeCSV renders the result set as CSV. The header is derived from the
// first record's (flattened) keys in received order; with allColumns it is
// the union of every record's keys, new keys appended in first-appearance
// order. Records missing a header key produce empty fields. In default
// mode, keys absent from the header are dropped silently except for a
// warning log with the count.
func encodeCSV(results pagination.ResultSet, allColumns bool, logger zerolog.Logger) ([]byte, error) {
	// Empty result set: empty file, no header row
	if len(results) == 0 {
		return []byte{}, nil
	}

	flat := make([]pagination.Record, len(results))
	for i, rec := range results {
		flat[i] = flattenRecord(rec)
	}

	header := flat[0].Keys()
	if allColumns {
		header = unionKeys(flat)
	}

	inHeader := make(map[string]bool, len(header))
	for _, key := range header {
		inHeader[key] = true
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, err
	}

	dropped := 0
	for _, rec := range flat {
		row := make([]string, len(header))
		for i, key := range header {
			if value, ok := rec.Get(key); ok {
				row[i] = renderField(value)
			}
		}
		for _, key := range rec.Keys() {
			if !inHeader[key] {
				dropped++
			}
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	if dropped > 0 {
		logger.Warn().
			Int("dropped_fields", dropped).
			Msg("Records carried fields absent from the CSV header; use all-columns mode to keep them")
	}

	return buf.Bytes(), nil
}

// flattenRecord turns nested objects into prefixed top-level keys
// (config.visibility becomes config_visibility). Arrays stay single
// fields, rendered as compact JSON.
func flattenRecord(rec pagination.Record) pagination.Record {
	out := pagination.NewRecord()
	flattenInto(&out, "", rec)
	return out
}

func flattenInto(out *pagination.Record, prefix string, rec pagination.Record) {
	for _, key := range rec.Keys() {
		name := key
		if prefix != "" {
			name = prefix + flattenSep + key
		}

		value, _ := rec.Get(key)
		if nested, ok := value.(pagination.Record); ok {
			flattenInto(out, name, nested)
			continue
		}
		out.Set(name, value)
	}
}

// unionKeys collects every key across records, first-record order first,
// later keys in first-appearance order.
func unionKeys(records []pagination.Record) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, key := range rec.Keys() {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// renderField converts a decoded JSON value to its CSV cell text.
func renderField(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		// Arrays (and anything else) serialize as compact JSON
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
