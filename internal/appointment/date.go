package appointment

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout of calendar dates in configuration and in slot timestamps.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a string is not a YYYY-MM-DD calendar date.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// Date is a calendar date without time of day. The zero Date means "unset".
//
// Date implements pflag.Value and encoding.TextUnmarshaler so it can be used directly as a flag
// and decoded from configuration files.
type Date struct {
	t time.Time
}

// ParseDate parses a YYYY-MM-DD string. An empty string returns the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}

	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t: t}, nil
}

// MustParseDate is like ParseDate but panics on error.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the calendar date of t in its own location.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool {
	return d.t.After(o.t)
}

// String returns the date as YYYY-MM-DD, or an empty string when unset.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// Set implements pflag.Value.
func (d *Date) Set(s string) error {
	v, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Type implements pflag.Value.
func (d *Date) Type() string {
	return "date"
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	return d.Set(string(text))
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
