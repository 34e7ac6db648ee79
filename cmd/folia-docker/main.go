// Command folia-docker resolves Folia builds, builds and pushes
// their Docker images, scaffolds version directories for new
// experimental builds and opens issues for unsupported upstream
// versions.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Pablo-Barros/folia-docker/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)

	err := cli.Execute(ctx, os.Args[1:])

	stop()

	if err != nil {
		os.Exit(1)
	}
}
