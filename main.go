package main

import (
	"context"
	"os"

	"github.com/codetrek/needle/client"
	"github.com/codetrek/needle/shared/running"
)

var version = "dev"

func main() {
	running.SetVersion(version)

	ctx, cancel := running.WithShutdown(context.Background())
	code := client.Execute(ctx, os.Args[1:])
	cancel()

	os.Exit(code)
}
