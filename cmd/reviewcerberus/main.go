package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/reviewcerberus/internal/adapter/driving/cli"
)

func main() {
	if err := run(); err != nil {
		if cli.IsFindings(err) {
			slog.Error("review found blocking issues", "reason", err)
		} else {
			slog.Error("fatal error", "error", err)
		}
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
