// Package appointment defines the appointment slots reported by the scheduler API and how they are
// filtered against a target date.
package appointment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnexpectedPayload is returned when the scheduler answers with something that is neither a slot
// object, a list of slot objects, nor an empty value.
var ErrUnexpectedPayload = errors.New("unexpected scheduler payload")

// Slot is a single record as returned by the scheduler API.
// Active and Total default to 0 when absent.
type Slot struct {
	Timestamp string `json:"timestamp"`
	Active    int    `json:"active"`
	Total     int    `json:"total"`
}

// Date returns the calendar date of the slot timestamp.
func (s Slot) Date() (Date, error) {
	day, _, _ := strings.Cut(s.Timestamp, "T")
	return ParseDate(day)
}

// Appointment is a slot that passed filtering.
type Appointment struct {
	Start  string
	Active int
	Total  int
}

// Decode interprets a scheduler response body.
//
// The API answers with a single slot object, not a list. That object is returned as a one element
// slice. A list of objects is accepted as well. An empty body or a falsy JSON value (null, false,
// 0, "", {} or []) means that no slot is available and returns an empty slice.
func Decode(data []byte) ([]Slot, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode scheduler payload: %w", err)
	}
	if isFalsy(v) {
		return nil, nil
	}

	switch v.(type) {
	case map[string]any:
		var s Slot
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, errors.Join(ErrUnexpectedPayload, err)
		}
		return []Slot{s}, nil
	case []any:
		var slots []Slot
		if err := json.Unmarshal(data, &slots); err != nil {
			return nil, errors.Join(ErrUnexpectedPayload, err)
		}
		return slots, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedPayload, data)
	}
}

func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
