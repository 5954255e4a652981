// Package main is the entry point for the rtask CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"rtask/internal/backend/httpapi"
	"rtask/internal/cli"
	"rtask/internal/commands"
	"rtask/internal/config"
	"rtask/internal/credential"
	"rtask/internal/store"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	factory := func(ctx context.Context, cfg *config.Config, log *slog.Logger) (*store.Store, error) {
		token, err := credential.Token(cfg)
		if err != nil {
			// No usable keyring; continue unauthenticated.
			log.Debug("keyring unavailable", "error", err)
		}

		client, err := httpapi.New(ctx, cfg, token, httpapi.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return store.New(ctx, client, store.WithLogger(log)), nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
