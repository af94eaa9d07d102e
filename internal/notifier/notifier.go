// Package notifier sends a notification about available appointments through one or more channels.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/slotwatch/slotwatch/internal/appointment"
	"github.com/slotwatch/slotwatch/internal/constants"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrIncompleteConfig is returned by a channel missing part of its configuration.
// No network action is performed in that case.
var ErrIncompleteConfig = errors.New("channel configuration is incomplete")

// Channel delivers a notification.
type Channel interface {
	// Name identifies the channel in status lines and metrics.
	Name() string
	// Send delivers subject and body.
	Send(ctx context.Context, subject, body string) error
}

// Recorder observes the outcome of each channel.
type Recorder interface {
	ObserveNotification(channel string, err error)
}

// Notifier dispatches notifications to every configured channel.
type Notifier struct {
	channels []Channel
	out      io.Writer
	recorder Recorder
}

type options struct {
	out      io.Writer
	recorder Recorder
}

// Options represents an optional function to override Notifier default values.
type Options func(*options)

// WithOutput sets where status lines are printed. Defaults to stdout.
func WithOutput(w io.Writer) Options {
	return func(o *options) {
		o.out = w
	}
}

// WithRecorder sets the recorder observing each channel outcome.
func WithRecorder(r Recorder) Options {
	return func(o *options) {
		o.recorder = r
	}
}

type noopRecorder struct{}

func (noopRecorder) ObserveNotification(string, error) {}

// New returns a Notifier sending to channels.
func New(channels []Channel, args ...Options) Notifier {
	opts := options{
		out:      os.Stdout,
		recorder: noopRecorder{},
	}
	for _, opt := range args {
		opt(&opts)
	}

	return Notifier{
		channels: channels,
		out:      opts.out,
		recorder: opts.recorder,
	}
}

// Notify sends one message listing appointments to each channel.
//
// Nothing is sent for an empty list. Channel failures are printed and logged, never returned:
// a failed notification must not fail the check.
func (n Notifier) Notify(ctx context.Context, appointments []appointment.Appointment) {
	if len(appointments) == 0 {
		slog.Debug("No appointments, skipping notification")
		return
	}

	subject, body := Compose(appointments)
	title := cases.Title(language.English)
	for _, ch := range n.channels {
		err := ch.Send(ctx, subject, body)
		n.recorder.ObserveNotification(ch.Name(), err)

		switch {
		case errors.Is(err, ErrIncompleteConfig):
			slog.Warn("Notification channel is not configured", "channel", ch.Name(), "error", err)
			fmt.Fprintf(n.out, "%s configuration missing. Please check your .env file.\n", title.String(ch.Name()))
		case err != nil:
			slog.Error("Failed to send notification", "channel", ch.Name(), "error", err)
			fmt.Fprintf(n.out, "Error sending %s notification: %v\n", ch.Name(), err)
		default:
			slog.Info("Notification sent", "channel", ch.Name(), "appointments", len(appointments))
			fmt.Fprintf(n.out, "Notification %s sent successfully!\n", ch.Name())
		}
	}
}

// Compose returns the subject and plain text body of the notification for appointments.
func Compose(appointments []appointment.Appointment) (subject, body string) {
	var b strings.Builder
	b.WriteString("Available Global Entry Appointments:\n\n")
	for _, a := range appointments {
		fmt.Fprintf(&b, "Date: %s\n", a.Start)
		fmt.Fprintf(&b, "Active Slots: %d\n", a.Active)
		fmt.Fprintf(&b, "Total Slots: %d\n\n", a.Total)
	}
	return constants.NotificationSubject, b.String()
}
