// Package constants is responsible for defining the constants used in the application.
package constants

import (
	"log/slog"
	"time"
)

var (
	// Version is the version of the application.
	Version = "Dev"
)

const (
	// CmdName is the name of the command line tool.
	CmdName = "slotwatch"

	// DefaultLogLevel is the default log level selected without any verbosity flags.
	DefaultLogLevel = slog.LevelWarn

	// DefaultEnvFile is the dotenv file read for credentials when none is given.
	DefaultEnvFile = ".env"
)

// Scheduler API constants.
const (
	// DefaultAPIURL is the base URL of the trusted traveler scheduler API.
	DefaultAPIURL = "https://ttp.cbp.dhs.gov/schedulerapi"

	// DefaultLocationID is the enrollment center polled when none is configured.
	DefaultLocationID = "5001"

	// DefaultUserAgent is sent on every scheduler request. The API rejects non-browser agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultRequestTimeout bounds a single scheduler request.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultCheckInterval is the delay between two checks in watch mode.
	DefaultCheckInterval = 5 * time.Minute
)

// Notification constants.
const (
	// DefaultSMTPHost is the mail relay used to send notifications.
	DefaultSMTPHost = "smtp.gmail.com"

	// DefaultSMTPPort is the implicit TLS submission port of DefaultSMTPHost.
	DefaultSMTPPort = 465

	// NotificationSubject is the subject line of every notification.
	NotificationSubject = "Global Entry Appointment Available!"

	// MetricsJobName is the Pushgateway job name metrics are grouped under.
	MetricsJobName = "slotwatch"
)
