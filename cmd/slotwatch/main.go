// Package main is the entry point for the slotwatch application.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/slotwatch/slotwatch/cmd/slotwatch/daemon"
)

func main() {
	a, err := daemon.New()
	if err != nil {
		slog.Error(err.Error())
		os.Exit(exitConfigError)
	}

	os.Exit(run(a))
}

// Exit codes. A check which failed to fetch or notify still exits successfully.
const (
	exitOK          = 0
	exitConfigError = 1
	exitUsageError  = 2
)

type app interface {
	Run() error
	UsageError() bool
	Hup() bool
	Quit()
}

func run(a app) int {
	defer installSignalHandler(a)()

	err := a.Run()
	if err == nil {
		return exitOK
	}

	slog.Error(err.Error())
	if a.UsageError() {
		return exitUsageError
	}
	return exitConfigError
}

// installSignalHandler forwards termination signals to the app until the returned function is
// called. SIGINT and SIGTERM interrupt the check in progress and stop watching. SIGHUP dumps the
// goroutines, and only quits if Hup asks to.
func installSignalHandler(a app) (stop func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for sig := range c {
			slog.Info("Received signal", "signal", sig)
			if sig == syscall.SIGHUP && !a.Hup() {
				continue
			}
			a.Quit()
			return
		}
		slog.Debug("Signal channel closed")
	}()

	return func() {
		signal.Stop(c)
		close(c)
		<-done
	}
}
