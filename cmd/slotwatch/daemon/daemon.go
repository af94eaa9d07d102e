// Package daemon provides the slotwatch command line application.
package daemon

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"runtime"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/slotwatch/slotwatch/internal/appointment"
	"github.com/slotwatch/slotwatch/internal/checker"
	"github.com/slotwatch/slotwatch/internal/cli"
	"github.com/slotwatch/slotwatch/internal/constants"
	"github.com/slotwatch/slotwatch/internal/metrics"
	"github.com/slotwatch/slotwatch/internal/notifier"
	"github.com/slotwatch/slotwatch/internal/scheduler"
	"github.com/slotwatch/slotwatch/internal/watcher"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// App represents the application.
type App struct {
	cmd    *cobra.Command
	viper  *viper.Viper
	config appConfig

	out     io.Writer
	watcher *watcher.Service

	// ctx is canceled by Quit, interrupting the check in progress.
	ctx    context.Context
	cancel context.CancelFunc

	ready     chan struct{}
	readyOnce *sync.Once
}

// appConfig holds the configuration for the application.
type appConfig struct {
	Verbosity int    `mapstructure:"verbose" yaml:"verbose"`
	JSONLogs  bool   `mapstructure:"json-logs" yaml:"json-logs"`
	Quiet     bool   `mapstructure:"quiet" yaml:"quiet"`
	EnvFile   string `mapstructure:"env-file" yaml:"env-file"`

	LocationID     string           `mapstructure:"location-id" yaml:"location-id"`
	TargetDate     appointment.Date `mapstructure:"target-date" yaml:"target-date"`
	CheckInterval  time.Duration    `mapstructure:"check-interval" yaml:"check-interval"`
	APIURL         string           `mapstructure:"api-url" yaml:"api-url"`
	UserAgent      string           `mapstructure:"user-agent" yaml:"user-agent"`
	RequestTimeout time.Duration    `mapstructure:"request-timeout" yaml:"request-timeout"`

	SMTPHost       string `mapstructure:"smtp-host" yaml:"smtp-host"`
	SMTPPort       int    `mapstructure:"smtp-port" yaml:"smtp-port"`
	PushgatewayURL string `mapstructure:"pushgateway-url" yaml:"pushgateway-url"`

	Email    notifier.EmailConfig    `mapstructure:"email" yaml:"email"`
	Telegram notifier.TelegramConfig `mapstructure:"telegram" yaml:"telegram"`
}

// New creates a new App instance with default values.
func New() (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	a := App{
		out:       os.Stdout,
		ctx:       ctx,
		cancel:    cancel,
		ready:     make(chan struct{}),
		readyOnce: &sync.Once{},
	}

	a.cmd = &cobra.Command{
		Use:   constants.CmdName,
		Short: "Check for Global Entry appointment slots and notify when one is available",
		Long: `Check the trusted traveler scheduler for an appointment slot at an enrollment location.

When a slot dated on or before the target date is available, a notification is sent by email,
and to a Telegram chat if configured. A single check is run, run it periodically with an external
scheduler or use the watch command.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Command parsing has been successful. Returns to not print usage anymore.
			a.cmd.SilenceUsage = true
			cli.SetSlog(a.config.Verbosity, a.config.JSONLogs) // Set verbosity before loading config
			if err := cli.InitViperConfig(constants.CmdName, a.cmd, a.viper); err != nil {
				return err
			}
			// Environment lookups are lazy: variables of the env file are seen by Unmarshal.
			if err := cli.LoadEnvFile(a.viper.GetString("env-file")); err != nil {
				return err
			}
			if err := a.viper.Unmarshal(&a.config, viper.DecodeHook(decodeHook())); err != nil {
				return fmt.Errorf("unable to strictly decode configuration into struct: %w", err)
			}
			slog.Info("got app config", "location", a.config.LocationID, "target", a.config.TargetDate,
				"email", a.config.Email.Recipient, "telegram", a.config.Telegram.Enabled())

			cli.SetSlog(a.config.Verbosity, a.config.JSONLogs) // Update logging after loading config if necessary
			if a.config.Quiet {
				a.out = io.Discard
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run()
		},
	}
	a.viper = viper.New()
	a.cmd.CompletionOptions.HiddenDefaultCmd = true

	installRootCmd(&a)
	cli.InstallConfigFlag(a.cmd)

	if err := a.viper.BindPFlags(a.cmd.PersistentFlags()); err != nil {
		return nil, err
	}
	if err := cli.BindEnvAliases(constants.CmdName, a.viper, map[string]string{
		"email.sender":     "EMAIL_SENDER",
		"email.password":   "EMAIL_PASSWORD",
		"email.recipient":  "EMAIL_RECIPIENT",
		"telegram.token":   "TELEGRAM_TOKEN",
		"telegram.chat-id": "TELEGRAM_CHAT_ID",
	}); err != nil {
		return nil, err
	}

	if err := a.installWatch(); err != nil {
		return nil, err
	}
	a.installVersion()

	return &a, nil
}

func installRootCmd(app *App) {
	cmd := app.cmd

	cmd.PersistentFlags().CountVarP(&app.config.Verbosity, "verbose", "v", "issue INFO (-v), DEBUG (-vv)")
	cmd.PersistentFlags().BoolVar(&app.config.JSONLogs, "json-logs", false, "enable JSON formatted logs")
	cmd.PersistentFlags().BoolVarP(&app.config.Quiet, "quiet", "q", false, "do not print status lines")
	cmd.PersistentFlags().StringVar(&app.config.EnvFile, "env-file", constants.DefaultEnvFile, "dotenv file to load credentials from")

	// Check flags
	cmd.PersistentFlags().StringVarP(&app.config.LocationID, "location-id", "l", constants.DefaultLocationID, "enrollment center location identifier")
	cmd.PersistentFlags().Var(&app.config.TargetDate, "target-date", "latest appointment date of interest, as YYYY-MM-DD (default no date limit)")
	cmd.PersistentFlags().StringVar(&app.config.APIURL, "api-url", constants.DefaultAPIURL, "base URL of the scheduler API")
	cmd.PersistentFlags().StringVar(&app.config.UserAgent, "user-agent", constants.DefaultUserAgent, "User-Agent header sent to the scheduler API")
	cmd.PersistentFlags().DurationVar(&app.config.RequestTimeout, "request-timeout", constants.DefaultRequestTimeout, "timeout of a scheduler request")

	// Notification flags
	cmd.PersistentFlags().StringVar(&app.config.SMTPHost, "smtp-host", constants.DefaultSMTPHost, "SMTP relay accepting implicit TLS connections")
	cmd.PersistentFlags().IntVar(&app.config.SMTPPort, "smtp-port", constants.DefaultSMTPPort, "SMTP relay port")
	cmd.PersistentFlags().StringVar(&app.config.PushgatewayURL, "pushgateway-url", "", "Prometheus Pushgateway to push metrics to after each check (default disabled)")

	if err := cmd.MarkPersistentFlagFilename("env-file"); err != nil {
		panic(fmt.Errorf("failed to mark env-file flag as filename: %w", err))
	}
}

// Run executes the command and associated process, returning an error if any.
func (a App) Run() error {
	defer a.markReady()
	return a.cmd.Execute()
}

// UsageError returns if the error is a command parsing or runtime one.
func (a App) UsageError() bool {
	return !a.cmd.SilenceUsage
}

// Hup prints all goroutine stack traces and return false to signal you shouldn't quit.
func (a App) Hup() (shouldQuit bool) {
	buf := make([]byte, 1<<16)
	runtime.Stack(buf, true)
	fmt.Printf("%s", buf)
	return false
}

// Quit interrupts the check in progress, reported as a failed check, and stops watching.
// When watching, it waits for the interrupted check to return.
func (a *App) Quit() {
	a.cancel()
	a.WaitReady()
	if a.watcher != nil {
		a.watcher.Quit()
	}
}

// WaitReady waits for the app to be ready.
func (a *App) WaitReady() {
	<-a.ready
}

// markReady unblocks WaitReady. Commands which never start checking are ready once they exit.
func (a App) markReady() {
	a.readyOnce.Do(func() { close(a.ready) })
}

// RootCmd returns the root command.
func (a App) RootCmd() cobra.Command {
	return *a.cmd
}

// run runs exactly one check cycle. Failures inside the cycle are reported, not returned.
func (a *App) run() error {
	cycle, err := a.newCycle()
	if err != nil {
		return err
	}
	a.markReady()

	if a.ctx.Err() != nil {
		slog.Info("Interrupted before checking")
		return nil
	}
	cycle(a.ctx)
	return nil
}

// newCycle wires the checker and returns a function running one check then pushing metrics.
func (a *App) newCycle() (watcher.Cycle, error) {
	registry := prometheus.NewRegistry()
	recorder, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics recorder: %v", err)
	}

	channels := []notifier.Channel{
		notifier.NewEmail(a.config.Email, notifier.WithSMTPServer(a.config.SMTPHost, a.config.SMTPPort)),
	}
	if a.config.Telegram.Enabled() {
		channels = append(channels, notifier.NewTelegram(a.config.Telegram))
	}

	n := notifier.New(channels, notifier.WithOutput(a.out), notifier.WithRecorder(recorder))
	client := scheduler.New(
		scheduler.WithBaseURL(a.config.APIURL),
		scheduler.WithUserAgent(a.config.UserAgent),
		scheduler.WithTimeout(a.config.RequestTimeout),
	)
	c := checker.New(
		checker.Config{LocationID: a.config.LocationID, TargetDate: a.config.TargetDate},
		client, n,
		checker.WithOutput(a.out),
		checker.WithRecorder(recorder),
	)
	c.Banner()

	pushURL, timeout := a.config.PushgatewayURL, a.config.RequestTimeout
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	return func(ctx context.Context) {
		c.Check(ctx)

		// An interrupted check is still pushed.
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if err := recorder.Push(pushCtx, pushURL); err != nil {
			slog.Warn("Failed to push metrics", "error", err)
		}
	}, nil
}

// decodeHook decodes durations and dates from their string forms. YAML files may already hold dates
// as timestamps.
func decodeHook() mapstructure.DecodeHookFunc {
	dateType := reflect.TypeOf(appointment.Date{})
	return mapstructure.ComposeDecodeHookFunc(
		func(_ reflect.Type, to reflect.Type, data any) (any, error) {
			if t, ok := data.(time.Time); ok && to == dateType {
				return appointment.DateOf(t), nil
			}
			return data, nil
		},
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
}
