package running

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// WithShutdown returns a context cancelled on SIGINT or SIGTERM. A second
// signal is left to the default handler, so it kills the process.
func WithShutdown(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-c:
			log.Println("Received interrupt signal, shutting down...")
			cancel()
			signal.Stop(c)
		case <-ctx.Done():
			signal.Stop(c)
		}
	}()

	return ctx, cancel
}
