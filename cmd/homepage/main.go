package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nDmitry/homepage/internal/app"
	"github.com/nDmitry/homepage/internal/config"
)

const usage = "usage: homepage [build|serve]"

func main() {
	logger := app.Logger()
	slog.SetDefault(logger)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Received first shutdown signal, starting graceful shutdown...")
		cancel()

		// If we receive a second signal, exit immediately
		<-sigChan
		logger.Info("Received second shutdown signal, exiting immediately...")
		os.Exit(1)
	}()

	command := "serve"

	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	cfg, err := config.Read(config.GetEnvString("CONFIG_PATH", "config.json"))

	if err != nil {
		logger.Error("Failed to read config", "error", err)
		os.Exit(1)
	}

	switch command {
	case "build":
		err = runBuild(ctx, cfg, config.GetEnvString("OUTPUT_PATH", ""), logger)
	case "serve":
		err = runServe(ctx, cfg, logger)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("Command failed", "command", command, "error", err)
		os.Exit(1)
	}
}
