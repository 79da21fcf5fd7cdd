// Package backend assembles the row store, the sync publisher and the object
// store selected by configuration.
package backend

import (
	"context"

	"anggaran/internal/amqp"
	"anggaran/internal/objectstore"
	"anggaran/internal/store"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result is everything a process needs to serve the household data.
type Result struct {
	Store store.Store
	// Publisher is nil when AMQP is not configured or unreachable.
	Publisher *amqp.Client
	Objects   objectstore.Store
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

type Config struct {
	Type BackendType

	SQLiteDBPath string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	ObjectStore  ObjectStoreType
	MediaDir     string
	MediaBaseURL string
	S3           objectstore.S3Config
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

type ObjectStoreType string

const (
	LocalObjects ObjectStoreType = "local"
	S3Objects    ObjectStoreType = "s3"
)

func (t ObjectStoreType) IsValid() bool {
	return t == LocalObjects || t == S3Objects
}
