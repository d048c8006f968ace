package main

import (
	"context"
	"errors"
	"os"
	"time"

	"moneylite/internal/amqp"
	"moneylite/internal/cli"
	"moneylite/internal/config"
	applog "moneylite/internal/log"
	"moneylite/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stdout, applog.ComponentWorker)
	logger.Info("Starting moneylite-worker")

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}

	activity := worker.NewActivityWorker(logger)

	consumeCtx, stopConsuming := context.WithCancel(context.Background())
	consumeDone := make(chan struct{})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		stopConsuming()
		select {
		case <-consumeDone:
		case <-ctx.Done():
		}
		activity.LogReport(ctx)
		if err := client.Close(); err != nil {
			logger.Error("AMQP close error", applog.FieldError, err)
		}
	})

	go func() {
		defer close(consumeDone)
		if err := client.ConsumeRecordEvents(consumeCtx, activity.HandleRecordEvent); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", applog.FieldError, err)
			activity.LogReport(context.Background())
			os.Exit(1)
		}
	}()

	ticker := time.NewTicker(cfg.WorkerReportInterval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-consumeDone:
				return
			case <-ticker.C:
				activity.LogReport(ctx)
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
