package backend

import (
	"context"
	"errors"
	"fmt"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/state/memory"
	"finboard/internal/storage"
)

// Publisher announces selection changes to other dashboards.
type Publisher interface {
	PublishPeriodSelected(ctx context.Context, p core.Period, seed uint64, revision string) error
}

// Subscriber delivers period.selected events published by other instances.
type Subscriber interface {
	ConsumePeriodSelected(ctx context.Context, handler amqp.Handler) error
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	// dial is swapped in tests
	dial func(url, exchange, queue string, logger *log.Logger) (*amqp.Client, error)
}

func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		dial:   amqp.NewClient,
	}
}

// CreateBackend opens the selection store and, when configured, the AMQP
// publisher and subscriber. A broker that cannot be reached is logged and skipped.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *BackendResult
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		res = f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if config.AMQPURL != "" {
		client, err := f.dial(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			res.Publisher = client
			res.Subscriber = client
			storeCleanup := res.Cleanup
			res.Cleanup = func() error {
				var errs []error
				errs = append(errs, client.Close())
				if storeCleanup != nil {
					errs = append(errs, storeCleanup())
				}
				return errors.Join(errs...)
			}
		}
	}
	return res, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	store, err := storage.NewSQLiteStore(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Store: store, Cleanup: store.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend() *BackendResult {
	f.logger.Info("Initialized memory backend")
	return &BackendResult{Store: memory.New()}
}
