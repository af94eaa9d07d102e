package daemon

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/slotwatch/slotwatch/internal/constants"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type (
	AppConfig = appConfig
)

// Config returns the configuration of the app.
func (a *App) Config() AppConfig {
	return a.config
}

// NewForTests creates a new App instance for testing purposes.
// Status lines are written to out. No env file is loaded unless conf names one.
func NewForTests(t *testing.T, conf *AppConfig, out io.Writer, args ...string) *App {
	t.Helper()

	if conf == nil {
		conf = &AppConfig{}
	}

	if conf.EnvFile == "" {
		conf.EnvFile = filepath.Join(t.TempDir(), "does-not-exist.env")
	}

	p := GenerateTestConfig(t, conf)
	argsWithConf := []string{"--config", p}
	argsWithConf = append(argsWithConf, args...)

	a, err := New()
	require.NoError(t, err, "Setup: failed to create app")
	if out != nil {
		a.out = out
		a.cmd.SetOut(out)
	}
	a.cmd.SetArgs(argsWithConf)
	return a
}

// GenerateTestConfig generates a temporary config file for testing.
func GenerateTestConfig(t *testing.T, origConf *AppConfig) string {
	t.Helper()

	var conf appConfig

	if origConf != nil {
		conf = *origConf
	}

	if conf.Verbosity == 0 {
		conf.Verbosity = 2
	}

	// Values set in the file win over flag defaults.
	if conf.LocationID == "" {
		conf.LocationID = constants.DefaultLocationID
	}
	if conf.APIURL == "" {
		conf.APIURL = constants.DefaultAPIURL
	}
	if conf.UserAgent == "" {
		conf.UserAgent = constants.DefaultUserAgent
	}
	if conf.RequestTimeout == 0 {
		conf.RequestTimeout = constants.DefaultRequestTimeout
	}
	if conf.CheckInterval == 0 {
		conf.CheckInterval = constants.DefaultCheckInterval
	}
	if conf.SMTPHost == "" {
		conf.SMTPHost = constants.DefaultSMTPHost
	}
	if conf.SMTPPort == 0 {
		conf.SMTPPort = constants.DefaultSMTPPort
	}

	d, err := yaml.Marshal(conf)
	require.NoError(t, err, "Setup: failed to marshal config for tests")

	confPath := filepath.Join(t.TempDir(), "testconfig.yaml")
	require.NoError(t, os.WriteFile(confPath, d, 0600), "Setup: failed to write config for tests")

	return confPath
}

// SetArgs set some arguments on root command for tests.
func (a *App) SetArgs(args ...string) {
	a.cmd.SetArgs(args)
}

// SetSilenceUsage set the SilenceUsage flag on root command for tests.
func (a *App) SetSilenceUsage(silence bool) {
	a.cmd.SilenceUsage = silence
}
