// Package main is the entry point for the taskboard CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"taskboard/internal/backend/googletasks"
	"taskboard/internal/backend/rest"
	"taskboard/internal/cli"
	"taskboard/internal/commands"
	"taskboard/internal/config"
	"taskboard/internal/logging"
	"taskboard/internal/service"
)

func main() {
	// A missing .env is fine; real environment variables win.
	_ = config.LoadDotEnv()

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Create service factory
	factory := func(ctx context.Context, cfg *config.Config) (service.API, error) {
		switch cfg.Backend {
		case config.BackendGoogle:
			client, err := googletasks.New(ctx, cfg)
			if err != nil {
				return nil, err
			}
			client.Prompt = os.Stderr
			return client, nil
		default:
			client, err := rest.New(cfg, logging.New(os.Stderr, cfg.Debug))
			if err != nil {
				return nil, err
			}
			return client, nil
		}
	}

	// Create dispatcher
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
