package pagination

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one audit-log event as returned by the API. The schema is
// defined by the remote service; values are kept opaque. Unlike a plain
// map, a Record remembers the key order of the JSON object it was decoded
// from, so output preserves the field order the API sent.
//
// Decoded value types: Record (nested object), []any (array), string,
// json.Number, bool, nil.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord returns an empty Record.
func NewRecord() Record {
	return Record{values: make(map[string]any)}
}

// Keys returns the record's keys in insertion order. The returned slice
// must not be modified.
func (r Record) Keys() []string {
	return r.keys
}

// Get returns the value for key and whether the key is present.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Set stores a value, appending the key on first insertion.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Delete removes a key, preserving the order of the remaining keys.
func (r *Record) Delete(key string) {
	if _, exists := r.values[key]; !exists {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of keys.
func (r Record) Len() int {
	return len(r.keys)
}

// UnmarshalJSON decodes a JSON object, preserving key order. Numbers are
// kept as json.Number so they render exactly as received.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	rec, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

// MarshalJSON encodes the record with its keys in insertion order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valJSON, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, fmt.Errorf("marshal field %q: %w", key, err)
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeObject reads object members up to and including the closing brace.
// The opening brace must already be consumed.
func decodeObject(dec *json.Decoder) (Record, error) {
	rec := NewRecord()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return rec, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return rec, fmt.Errorf("expected object key, got %v", keyTok)
		}

		value, err := decodeValue(dec)
		if err != nil {
			return rec, err
		}
		rec.Set(key, value)
	}

	// Closing '}'
	if _, err := dec.Token(); err != nil {
		return rec, err
	}
	return rec, nil
}

// decodeValue reads one JSON value from the decoder.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		// string, json.Number, bool or nil
		return tok, nil
	}

	switch delim {
	case '{':
		return decodeObject(dec)
	case '[':
		arr := []any{}
		for dec.More() {
			item, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, item)
		}
		// Closing ']'
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}

// ResultSet is the ordered concatenation of every page's records,
// first-page-first, within-page order intact.
type ResultSet []Record
