package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"syscall"

	"moneylite/internal/apiclient"
	"moneylite/internal/cli"
	"moneylite/internal/config"
	"moneylite/internal/ledger"
	applog "moneylite/internal/log"
	"moneylite/internal/view"
)

func main() {
	cli.LoadEnvFile()

	// stdout belongs to the ledger view; logs go to stderr and stay quiet
	// unless LOG_LEVEL asks for more.
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := cli.SetupLogger(level, os.Stderr, applog.ComponentCLI)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateClient)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := apiclient.New(apiclient.Config{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.APITimeout,
		MaxRetries: cfg.APIMaxRetries,
		Logger:     logger,
	})

	in := bufio.NewReader(os.Stdin)
	ctrl := ledger.NewController(api, ledger.NewPromptConfirmer(in, os.Stdout), logger)
	repl := cli.NewREPL(ctrl, view.New(), in, os.Stdout, logger)

	if err := repl.Run(ctx); err != nil {
		logger.Error("Terminal session failed", applog.FieldError, err)
		os.Exit(1)
	}
}
