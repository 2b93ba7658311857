// Command flow is a terminal client for the Flow backend. Credentials and the
// persisted session live in a sqlite file under DATA_FOLDER, so each
// invocation picks up where the last one left off.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrsteele09/flow-client/internal/config"
	"github.com/jrsteele09/flow-client/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := config.New()
	logging.Setup(c)
	if err := run(ctx, c, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "flow:", err)
		stop()
		os.Exit(1)
	}
}
