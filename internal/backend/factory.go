package backend

import (
	"context"
	"errors"
	"fmt"

	"anggaran/internal/amqp"
	applog "anggaran/internal/log"
	"anggaran/internal/objectstore"
	"anggaran/internal/storage"
	"anggaran/internal/store"
	"anggaran/internal/store/memory"
)

type DefaultFactory struct {
	logger *applog.Logger
	// dialAMQP is replaced in tests.
	dialAMQP func(url, exchange, queue string) (*amqp.Client, error)
}

func NewFactory(logger *applog.Logger) *DefaultFactory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger:   logger.WithComponent(applog.ComponentBackend),
		dialAMQP: amqp.NewClient,
	}
}

// CreateBackend opens the row store, the object store and, when configured,
// the AMQP publisher. A broker that cannot be reached is logged and skipped.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	st, err := f.createStore(config)
	if err != nil {
		return nil, err
	}

	objects, err := f.createObjectStore(ctx, config)
	if err != nil {
		st.Close()
		return nil, err
	}

	var publisher *amqp.Client
	if config.AMQPURL != "" {
		publisher, err = f.dialAMQP(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without sync", applog.FieldError, err)
			publisher = nil
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	f.logger.InfoContext(ctx, "Initialized backend",
		"type", config.Type,
		"object_store", objectStoreName(config.ObjectStore),
		"amqp_enabled", publisher != nil)

	return &Result{
		Store:     st,
		Publisher: publisher,
		Objects:   objects,
		Cleanup: func() error {
			var errs []error
			if publisher != nil {
				errs = append(errs, publisher.Close())
			}
			errs = append(errs, st.Close())
			return errors.Join(errs...)
		},
	}, nil
}

func (f *DefaultFactory) createStore(config Config) (store.Store, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		f.logger.Info("Opened SQLite store", "db_path", config.SQLiteDBPath)
		return repo, nil
	case MemoryBackend:
		// data does not survive a restart
		f.logger.Warn("Using in-memory store")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createObjectStore(ctx context.Context, config Config) (objectstore.Store, error) {
	if config.ObjectStore == S3Objects {
		s, err := objectstore.NewS3Store(ctx, config.S3)
		if err != nil {
			return nil, fmt.Errorf("initialize S3 object store: %w", err)
		}
		return s, nil
	}
	s, err := objectstore.NewLocalStore(config.MediaDir, config.MediaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("initialize local object store: %w", err)
	}
	return s, nil
}

func objectStoreName(t ObjectStoreType) string {
	if t == "" {
		return string(LocalObjects)
	}
	return string(t)
}
