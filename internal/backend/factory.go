// Package backend wires a store, the optional AMQP publisher and the ledger
// service together from configuration.
package backend

import (
	"context"
	"errors"
	"fmt"

	"moneylite/internal/amqp"
	applog "moneylite/internal/log"
	"moneylite/internal/services"
	"moneylite/internal/storage"
	"moneylite/internal/store"
	"moneylite/internal/store/memory"
)

type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentApp)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var st store.Store
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		st = repo
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		st = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	opts := []services.Option{services.WithLogger(f.logger)}

	// A broker outage at startup degrades to no events rather than no API.
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		c, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without record events",
				applog.FieldError, err)
		} else {
			amqpClient = c
			opts = append(opts, services.WithPublisher(c))
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	svc := services.NewLedgerService(st, opts...)
	cleanup := func() error {
		var errs []error
		if err := svc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				errs = append(errs, fmt.Errorf("amqp: %w", err))
			}
		}
		return errors.Join(errs...)
	}

	return &BackendResult{
		Service:     svc,
		Cleanup:     cleanup,
		AMQPEnabled: amqpClient != nil,
	}, nil
}
