// Command drunkyet serves the BAC estimator and provides offline tooling around it.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		// Use stderr since the logger may not be initialized yet
		os.Stderr.WriteString("drunkyet: " + err.Error() + "\n")
		os.Exit(1)
	}
}
