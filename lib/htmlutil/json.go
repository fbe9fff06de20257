package htmlutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidJson = errors.New("invalid json")

// RawJsonArray keeps every element of a JSON array exactly as the server
// sent it, so object key order survives.
type RawJsonArray []json.RawMessage

// ParseJsonArray returns nil for a blank body.
func ParseJsonArray(raw []byte) (RawJsonArray, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var out RawJsonArray
	err := json.Unmarshal(raw, &out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJson, err)
	}
	if out == nil {
		// the literal `null`
		return nil, fmt.Errorf("%w: expected an array, got null", ErrInvalidJson)
	}
	return out, nil
}

// Decode unmarshals a single element into a typed value.
func Decode[T any](value json.RawMessage) (T, error) {
	var out T
	err := json.Unmarshal(value, &out)
	if err != nil {
		return out, fmt.Errorf("%w: %w", ErrInvalidJson, err)
	}
	return out, nil
}
