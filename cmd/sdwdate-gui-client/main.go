// Package main provides the sdwdate-gui-client process entrypoint.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/whonix/sdwdate-gui/internal/app"
)

// main wires process signal handling to the application runner. A run ended
// by SIGINT or SIGTERM exits with 128 plus the signal number.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	caught := make(chan os.Signal, 1)
	go func() {
		sig := <-signals
		caught <- sig
		cancel()
	}()

	exitCode := app.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	select {
	case sig := <-caught:
		exitCode = app.ExitCodeForSignal(sig)
	default:
	}
	os.Exit(exitCode)
}
