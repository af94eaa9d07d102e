// Package metrics records the outcome of checks and notifications as Prometheus metrics.
//
// The checker is a short lived batch job, so metrics are pushed to a Pushgateway instead of
// being scraped.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/slotwatch/slotwatch/internal/constants"
	"github.com/slotwatch/slotwatch/internal/notifier"
	"github.com/ubuntu/decorate"
)

// Check results.
const (
	ResultFound = "found"
	ResultNone  = "none"
	ResultError = "error"
)

// Notification results.
const (
	NotificationSent    = "sent"
	NotificationSkipped = "skipped"
	NotificationFailed  = "failed"
)

// Recorder holds the metrics of the checker.
type Recorder struct {
	registry *prometheus.Registry

	checks        *prometheus.CounterVec
	slotsFound    prometheus.Gauge
	notifications *prometheus.CounterVec
	lastCheck     prometheus.Gauge
}

// New creates the checker metrics and registers them on reg.
func New(reg *prometheus.Registry) (*Recorder, error) {
	r := &Recorder{
		registry: reg,
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slotwatch_checks_total",
			Help: "Number of availability checks by result.",
		}, []string{"result"}),
		slotsFound: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "slotwatch_slots_found",
			Help: "Number of slots matching the target date in the last check.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slotwatch_notifications_total",
			Help: "Number of notifications by channel and result.",
		}, []string{"channel", "result"}),
		lastCheck: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "slotwatch_last_check_timestamp_seconds",
			Help: "Unix time of the last completed check.",
		}),
	}

	for _, c := range []prometheus.Collector{r.checks, r.slotsFound, r.notifications, r.lastCheck} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %v", err)
		}
	}

	return r, nil
}

// ObserveCheck records the result of a check completed at t with slots matching slots.
func (r *Recorder) ObserveCheck(result string, slots int, t time.Time) {
	r.checks.WithLabelValues(result).Inc()
	r.slotsFound.Set(float64(slots))
	r.lastCheck.Set(float64(t.Unix()))
}

// ObserveNotification records the outcome of a notification channel.
func (r *Recorder) ObserveNotification(channel string, err error) {
	result := NotificationSent
	switch {
	case errors.Is(err, notifier.ErrIncompleteConfig):
		result = NotificationSkipped
	case err != nil:
		result = NotificationFailed
	}
	r.notifications.WithLabelValues(channel, result).Inc()
}

// Push replaces the metrics of the checker job on the Pushgateway at url.
// An empty url disables pushing.
func (r *Recorder) Push(ctx context.Context, url string) (err error) {
	if url == "" {
		return nil
	}
	defer decorate.OnError(&err, "could not push metrics to %s", url)

	slog.Debug("Pushing metrics", "url", url)
	return push.New(url, constants.MetricsJobName).Gatherer(r.registry).PushContext(ctx)
}
