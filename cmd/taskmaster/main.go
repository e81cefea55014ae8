// Package main is the entry point for the taskmaster CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"taskmaster/internal/cli"
	"taskmaster/internal/commands"
	"taskmaster/internal/config"
	"taskmaster/internal/kvstore"
	"taskmaster/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, openService)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// openService opens the configured key-value backend and loads the
// collection from it.
func openService(ctx context.Context, cfg *config.Config) (service.Service, error) {
	st := cfg.Settings.Storage
	opts := kvstore.Options{
		Backend: st.Backend,
		Path:    cfg.StoragePath(),
		DSN:     st.DSN,
		Quota:   st.QuotaBytes,
	}
	if opts.Backend == "" || opts.Backend == kvstore.BackendFile {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0700); err != nil {
			return nil, err
		}
	}

	store, err := kvstore.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	cfg.Debugf("opened %s storage", opts.Backend)

	return service.Open(ctx, store, service.Options{
		Key: st.Key,
		Log: cfg.Logger(),
	}), nil
}
