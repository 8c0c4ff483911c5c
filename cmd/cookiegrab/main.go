// Command cookiegrab reads Chrome cookies for a domain through a headless
// browser and prints or saves them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/livedesk/cookiegrab/osext"
)

func main() {
	runCtx := runContext(context.Background())
	ctx, cancel := context.WithCancel(runCtx)
	defer cancel()

	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigC:
			cancel()
			osext.ForceProcessShutdown(runCtx)
			os.Exit(130)
		case <-ctx.Done():
		}
	}()

	if err := newApp(ctx, os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "cookiegrab: %s\n", err)
		cancel()
		os.Exit(1) //nolint:gocritic
	}
}
