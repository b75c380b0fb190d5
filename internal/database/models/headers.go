package models

import (
	"database/sql/driver"
	"encoding/json"
)

// Headers is a string->string header mapping persisted as a single JSON
// object column. Malformed JSON read
// back from the column is treated as "no headers" rather than an error.
type Headers map[string]string

// Value implements driver.Valuer, serializing the map to a JSON object.
func (h Headers) Value() (driver.Value, error) {
	if len(h) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(h))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. A malformed or empty payload decodes to an
// empty map instead of returning an error.
func (h *Headers) Scan(value interface{}) error {
	*h = Headers{}
	if value == nil {
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return nil
	}

	var parsed map[string]string
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil
	}
	*h = parsed
	return nil
}
