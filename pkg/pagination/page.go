package pagination

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParseError is a fatal failure to decode a page body.
type ParseError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse page %s: %v", e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Envelope keys some endpoints wrap results in alongside the record array.
// They carry pagination metadata, not records, and are discarded.
var envelopeMetaKeys = []string{
	"incomplete_results",
	"repository_selection",
	"total_count",
}

// parsePage decodes one response body into records.
//
// Most endpoints return a bare JSON array. Some return null when a page is
// empty, and others wrap the array in an object whose remaining key (after
// dropping pagination metadata) holds the records. All three shapes are
// handled here; anything else is a ParseError.
func parsePage(url string, body []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var records []Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, &ParseError{URL: url, Err: err}
		}
		return records, nil

	case '{':
		var envelope Record
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, &ParseError{URL: url, Err: err}
		}
		return unwrapEnvelope(url, envelope)

	default:
		return nil, &ParseError{URL: url, Err: fmt.Errorf("expected array or object, got %q", trimmed[0])}
	}
}

// unwrapEnvelope pulls the record array out of an object response.
func unwrapEnvelope(url string, envelope Record) ([]Record, error) {
	for _, key := range envelopeMetaKeys {
		envelope.Delete(key)
	}

	if envelope.Len() == 0 {
		return nil, nil
	}

	namespaceKey := envelope.Keys()[0]
	value, _ := envelope.Get(namespaceKey)

	items, ok := value.([]any)
	if !ok {
		return nil, &ParseError{URL: url, Err: fmt.Errorf("key %q does not hold an array", namespaceKey)}
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		rec, ok := item.(Record)
		if !ok {
			return nil, &ParseError{URL: url, Err: fmt.Errorf("element %d under %q is not an object", i, namespaceKey)}
		}
		records = append(records, rec)
	}
	return records, nil
}
