package appointment

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

type timeProvider interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time {
	return time.Now()
}

// Filter keeps the slots which are on or before a target date.
type Filter struct {
	target       Date
	out          io.Writer
	timeProvider timeProvider
}

type options struct {
	out          io.Writer
	timeProvider timeProvider
}

// Options represents an optional function to override Filter default values.
type Options func(*options)

// WithOutput sets where status lines are printed. Defaults to stdout.
func WithOutput(w io.Writer) Options {
	return func(o *options) {
		o.out = w
	}
}

// NewFilter returns a Filter keeping slots up to target. A zero target keeps every dated slot.
func NewFilter(target Date, args ...Options) Filter {
	opts := options{
		out:          os.Stdout,
		timeProvider: realTimeProvider{},
	}
	for _, opt := range args {
		opt(&opts)
	}

	return Filter{
		target:       target,
		out:          opts.out,
		timeProvider: opts.timeProvider,
	}
}

// Apply returns the appointments built from the slots that carry a parseable timestamp dated on or
// before the target date. Slots without a timestamp are skipped silently.
//
// A status line is printed when there are no slots at all, and one for every kept appointment.
func (f Filter) Apply(slots []Slot) []Appointment {
	available := make([]Appointment, 0, len(slots))

	if len(slots) == 0 {
		fmt.Fprintf(f.out, "No appointments found at %s\n", f.timeProvider.Now().Format(time.DateTime))
		return available
	}

	for _, s := range slots {
		if s.Timestamp == "" {
			slog.Debug("Skipping slot without timestamp", "slot", s)
			continue
		}

		d, err := s.Date()
		if err != nil {
			slog.Warn("Skipping slot with unparseable timestamp", "timestamp", s.Timestamp, "error", err)
			continue
		}

		if !f.target.IsZero() && d.After(f.target) {
			slog.Debug("Skipping slot after target date", "timestamp", s.Timestamp, "target", f.target)
			continue
		}

		available = append(available, Appointment{
			Start:  s.Timestamp,
			Active: s.Active,
			Total:  s.Total,
		})
	}

	for _, a := range available {
		fmt.Fprintf(f.out, "Found slots on: %s, Active: %d, Total: %d\n", a.Start, a.Active, a.Total)
	}

	return available
}
