package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"retailtracker/internal/amqp"
	"retailtracker/internal/dashboard"
	"retailtracker/internal/services"
	"retailtracker/internal/storage"
	"retailtracker/internal/store"
	"retailtracker/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	// dialAMQP is swapped in tests
	dialAMQP func(url, exchange, queue string) (*amqp.Client, error)
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger:   logger,
		dialAMQP: amqp.NewClient,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		result = f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachPublisher(ctx, result, config)
	f.logger.InfoContext(ctx, "Initialized backend",
		"type", config.Type,
		"stats_engine", config.ResolvedEngine(),
		"events_enabled", result.Publisher != nil)
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Opened SQLite database", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Store:   repo,
		Stats:   engineFor(config.ResolvedEngine(), repo, repo),
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() *BackendResult {
	st := memory.New()
	return &BackendResult{
		Store: st,
		Stats: dashboard.NewScanEngine(st),
	}
}

func engineFor(kind EngineType, entries store.EntryReader, querier store.StatsQuerier) dashboard.Engine {
	if kind == EnginePushdown && querier != nil {
		return dashboard.NewPushdownEngine(querier)
	}
	return dashboard.NewScanEngine(entries)
}

// attachPublisher connects to AMQP when configured. A broker that cannot be
// reached leaves events disabled rather than failing startup.
func (f *DefaultFactory) attachPublisher(ctx context.Context, result *BackendResult, config Config) {
	if config.AMQPURL == "" {
		return
	}
	client, err := f.dialAMQP(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events", "error", err)
		return
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	result.Publisher = client
	storeCleanup := result.Cleanup
	result.Cleanup = func() error {
		var errs []error
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close amqp: %w", err))
		}
		if storeCleanup != nil {
			if err := storeCleanup(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

var _ services.EventPublisher = (*amqp.Client)(nil)
