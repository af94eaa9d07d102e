// Package scheduler implements the client of the trusted traveler scheduler API.
// It is responsible for fetching the slots currently available at an enrollment location.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/slotwatch/slotwatch/internal/appointment"
	"github.com/slotwatch/slotwatch/internal/constants"
)

var (
	// ErrFetchFailure is returned when slots could not be fetched, either due to a network error
	// or a non-2xx status code.
	ErrFetchFailure = errors.New("slots fetch failed")
	// ErrEmptyLocation is returned when the location identifier is an empty string.
	ErrEmptyLocation = errors.New("location cannot be an empty string")
	// ErrInvalidLocation is returned when the location identifier is not a single path segment.
	ErrInvalidLocation = errors.New("location must be a single path segment")
)

// Client fetches available slots from the scheduler API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

type options struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
}

// Options represents an optional function to override Client default values.
type Options func(*options)

// WithBaseURL sets the base URL of the scheduler API.
func WithBaseURL(u string) Options {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithUserAgent sets the User-Agent header sent to the scheduler API.
// The API rejects some non browser agents, so it defaults to a desktop browser one.
func WithUserAgent(ua string) Options {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithTimeout sets the timeout of a single request. A zero timeout means no timeout.
func WithTimeout(d time.Duration) Options {
	return func(o *options) {
		o.timeout = d
	}
}

// New returns a new scheduler Client.
func New(args ...Options) Client {
	opts := options{
		baseURL:   constants.DefaultAPIURL,
		userAgent: constants.DefaultUserAgent,
		timeout:   constants.DefaultRequestTimeout,
	}
	for _, opt := range args {
		opt(&opts)
	}

	return Client{
		baseURL:    opts.baseURL,
		userAgent:  opts.userAgent,
		httpClient: &http.Client{Timeout: opts.timeout},
	}
}

// Fetch returns the slots currently offered at location.
//
// The API reports at most one slot. An empty answer returns an empty slice and no error.
func (c Client) Fetch(ctx context.Context, location string) ([]appointment.Slot, error) {
	u, err := c.slotsURL(location)
	if err != nil {
		return nil, err
	}

	slog.Debug("Fetching slots", "url", u)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(ErrFetchFailure, fmt.Errorf("failed to send HTTP request: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Join(ErrFetchFailure, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(ErrFetchFailure, fmt.Errorf("failed to read response body: %v", err))
	}
	slog.Debug("Received slots", "status", resp.StatusCode, "body", string(body))

	slots, err := appointment.Decode(body)
	if err != nil {
		return nil, errors.Join(ErrFetchFailure, err)
	}
	return slots, nil
}

func (c Client) slotsURL(location string) (string, error) {
	if location == "" {
		return "", ErrEmptyLocation
	}
	if location == "." || location == ".." || strings.ContainsAny(location, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidLocation, location)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL %s: %v", c.baseURL, err)
	}
	u.Path = path.Join(u.Path, "locations", location, "slots")
	u.RawQuery = url.Values{"minimum": {"1"}}.Encode()
	return u.String(), nil
}
