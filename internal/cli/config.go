// Package cli provides utility functions for command line interface applications.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// InitViperConfig initializes the Viper configuration for a command.
//
// Keys are looked up, in order of precedence, in flags, environment variables prefixed by the
// command name, and the configuration file.
func InitViperConfig(cmdName string, cmd *cobra.Command, vip *viper.Viper) error {
	if v, err := cmd.Flags().GetString("config"); err == nil && v != "" {
		vip.SetConfigFile(v)
	} else {
		vip.SetConfigName(cmdName)
		vip.AddConfigPath(".")

		if runtime.GOOS == "windows" {
			vip.AddConfigPath("C:\\ProgramData\\" + cmdName)
		} else {
			vip.AddConfigPath("/etc/" + cmdName)
			vip.AddConfigPath("/usr/local/etc/" + cmdName)
		}

		if binPath, err := os.Executable(); err != nil {
			slog.Warn("Failed to get current executable path, not adding it as a config dir", "error", err)
		} else {
			vip.AddConfigPath(filepath.Dir(binPath))
		}
	}
	if err := vip.ReadInConfig(); err != nil {
		var e viper.ConfigFileNotFoundError
		if errors.As(err, &e) {
			slog.Info("No configuration file.\nWe will only use the defaults, env variables or flags.", "error", e)
		} else {
			return fmt.Errorf("invalid configuration file: %w", err)
		}
	} else {
		slog.Info("Using configuration file", "file", vip.ConfigFileUsed())
	}

	// Handle environment.
	// Nested keys (email.sender) and flag names (location-id) both map to underscores.
	vip.SetEnvPrefix(cmdName)
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	vip.AutomaticEnv()

	return nil
}

// BindEnvAliases binds each key to its prefixed environment variable first, then to the given
// unprefixed alias. Bound keys are known to viper even without a default, so they can be unmarshalled.
func BindEnvAliases(cmdName string, vip *viper.Viper, aliases map[string]string) error {
	prefix := EnvPrefix(cmdName)
	for key, alias := range aliases {
		prefixed := prefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
		if err := vip.BindEnv(key, prefixed, alias); err != nil {
			return fmt.Errorf("could not bind environment variable %s: %w", alias, err)
		}
	}
	return nil
}

// EnvPrefix returns the environment variable prefix used for cmdName.
func EnvPrefix(cmdName string) string {
	return strings.ToUpper(strings.ReplaceAll(cmdName, "-", "_")) + "_"
}

// LoadEnvFile loads the variables of a dotenv file into the process environment.
// Variables already set in the environment are left untouched. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("No env file, using environment variables only", "file", path)
			return nil
		}
		return fmt.Errorf("invalid env file %s: %w", path, err)
	}

	slog.Info("Loaded env file", "file", path)
	return nil
}

// InstallConfigFlag adds a config flag to the command.
func InstallConfigFlag(cmd *cobra.Command) *string {
	return cmd.PersistentFlags().String("config", "", "use a specific configuration file")
}
