package daemon

import (
	"errors"
	"fmt"

	"github.com/slotwatch/slotwatch/internal/constants"
	"github.com/slotwatch/slotwatch/internal/watcher"
	"github.com/spf13/cobra"
)

func (a *App) installWatch() error {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Check for appointments repeatedly until interrupted",
		Long: `Check for appointments immediately and then once per check interval, until interrupted.

Each check is independent: a slot still available on the next check is notified again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch()
		},
	}

	cmd.Flags().DurationVarP(&a.config.CheckInterval, "check-interval", "i", constants.DefaultCheckInterval, "delay between two checks")
	if err := a.viper.BindPFlag("check-interval", cmd.Flags().Lookup("check-interval")); err != nil {
		return err
	}

	a.cmd.AddCommand(cmd)
	return nil
}

// watch runs check cycles every check interval until Quit is called.
func (a *App) watch() error {
	cycle, err := a.newCycle()
	if err != nil {
		return err
	}

	w, err := watcher.New(a.ctx, cycle, a.config.CheckInterval)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	a.watcher = w
	a.markReady()

	if err := a.watcher.Run(); err != nil && !errors.Is(err, watcher.ErrServiceClosed) {
		return err
	}
	return nil
}
