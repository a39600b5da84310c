package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bharatid/internal/platform/config"
	"bharatid/internal/platform/logger"
	"bharatid/internal/portal"
	"bharatid/internal/portal/cli"
	"bharatid/internal/portal/client"
	"bharatid/internal/portal/session"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	// Diagnostics go to stderr so they never interleave with command output.
	log := logger.NewWithWriter(os.Stderr, envOr("LOG_LEVEL", "warn"), "text")

	path := cfg.Portal.CredentialFile
	if path == "" {
		if path, err = session.DefaultCredentialPath(); err != nil {
			fmt.Fprintf(os.Stderr, "credential path: %v\n", err)
			return 1
		}
	}
	sess, err := session.Open(session.NewFileStore(path), session.WithLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "open session: %v\n", err)
		return 1
	}

	gateway := client.New(cfg.Portal.BaseURL,
		client.WithTimeout(cfg.Portal.RequestTimeout),
		client.WithLogger(log),
	)
	app := cli.NewApp(portal.New(gateway, sess, portal.WithLogger(log)), os.Stdin, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if args := os.Args[1:]; len(args) > 0 {
		if !app.RunArgs(ctx, args) {
			return 1
		}
		return 0
	}
	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "portal: %v\n", err)
		return 1
	}
	return 0
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
