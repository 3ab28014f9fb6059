// Command ssehub runs the server-sent events broadcast service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		_, _ = os.Stderr.WriteString("ssehub: " + err.Error() + "\n")
		os.Exit(1)
	}
}
