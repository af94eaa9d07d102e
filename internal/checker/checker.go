// Package checker runs one availability check: fetch the slots of a location, keep the ones before
// the target date and notify about them.
package checker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/slotwatch/slotwatch/internal/appointment"
	"github.com/slotwatch/slotwatch/internal/metrics"
)

// Config is the per run configuration of the checker.
type Config struct {
	LocationID string
	TargetDate appointment.Date
}

type fetcher interface {
	Fetch(ctx context.Context, location string) ([]appointment.Slot, error)
}

type notifier interface {
	Notify(ctx context.Context, appointments []appointment.Appointment)
}

type recorder interface {
	ObserveCheck(result string, slots int, t time.Time)
}

// Checker runs availability checks.
type Checker struct {
	cfg      Config
	fetcher  fetcher
	notifier notifier
	recorder recorder
	out      io.Writer
	log      *slog.Logger
}

type options struct {
	out      io.Writer
	recorder recorder
	log      *slog.Logger
}

// Options represents an optional function to override Checker default values.
type Options func(*options)

// WithOutput sets where status lines are printed. Defaults to stdout.
func WithOutput(w io.Writer) Options {
	return func(o *options) {
		o.out = w
	}
}

// WithLogger sets the logger used for diagnostics. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Options {
	return func(o *options) {
		o.log = l
	}
}

// WithRecorder sets the recorder observing each check.
func WithRecorder(r recorder) Options {
	return func(o *options) {
		o.recorder = r
	}
}

type noopRecorder struct{}

func (noopRecorder) ObserveCheck(string, int, time.Time) {}

// New returns a Checker for cfg.
func New(cfg Config, f fetcher, n notifier, args ...Options) Checker {
	opts := options{
		out:      os.Stdout,
		recorder: noopRecorder{},
		log:      slog.Default(),
	}
	for _, opt := range args {
		opt(&opts)
	}

	return Checker{
		cfg:      cfg,
		fetcher:  f,
		notifier: n,
		recorder: opts.recorder,
		out:      opts.out,
		log:      opts.log,
	}
}

// Banner prints the startup lines describing what is checked.
func (c Checker) Banner() {
	limit := "No date limit"
	if !c.cfg.TargetDate.IsZero() {
		limit = c.cfg.TargetDate.String()
	}
	fmt.Fprintf(c.out, "Starting Global Entry appointment checker for location %s...\n", c.cfg.LocationID)
	fmt.Fprintf(c.out, "Looking for appointments before: %s\n", limit)
}

// Check runs a single fetch, filter and notify cycle and returns the appointments found.
//
// Errors never stop the cycle: a failed fetch is reported and handled as if no appointment was
// found, and notification failures are reported by the notifier.
func (c Checker) Check(ctx context.Context) []appointment.Appointment {
	log := c.log.With("run", uuid.NewString(), "location", c.cfg.LocationID)
	log.Info("Checking appointments", "target", c.cfg.TargetDate)

	slots, err := c.fetcher.Fetch(ctx, c.cfg.LocationID)
	if err != nil {
		log.Warn("Failed to fetch slots", "error", err)
		fmt.Fprintf(c.out, "Error checking appointments: %v\n", err)
		c.recorder.ObserveCheck(metrics.ResultError, 0, time.Now())
		return nil
	}

	found := appointment.NewFilter(c.cfg.TargetDate, appointment.WithOutput(c.out)).Apply(slots)
	if len(found) == 0 {
		log.Info("No matching appointment", "slots", len(slots))
		c.recorder.ObserveCheck(metrics.ResultNone, 0, time.Now())
		return nil
	}

	log.Info("Found appointments", "count", len(found))
	fmt.Fprintf(c.out, "Found %d available appointments!\n", len(found))
	c.notifier.Notify(ctx, found)
	c.recorder.ObserveCheck(metrics.ResultFound, len(found), time.Now())

	return found
}

// Run prints the banner then runs a single check.
func (c Checker) Run(ctx context.Context) []appointment.Appointment {
	c.Banner()
	return c.Check(ctx)
}
