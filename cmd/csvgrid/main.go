package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/csvgrid/internal/cli"
)

// Set with -ldflags "-X main.version=...".
var version string

func main() {
	// A .env file is optional for the CLI; real env vars win.
	_ = godotenv.Load()

	cli.SetVersion(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
