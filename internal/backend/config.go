package backend

import (
	"fmt"

	"anggaran/internal/config"
	"anggaran/internal/objectstore"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		Type:         BackendType(appConfig.DataBackend),
		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
		ObjectStore:  ObjectStoreType(appConfig.ObjectStore),
		MediaDir:     appConfig.MediaDir,
		MediaBaseURL: appConfig.MediaBaseURL,
		S3: objectstore.S3Config{
			Bucket:   appConfig.S3Bucket,
			Region:   appConfig.S3Region,
			Endpoint: appConfig.S3Endpoint,
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}

	switch c.ObjectStore {
	case LocalObjects, "":
		if c.MediaDir == "" {
			return fmt.Errorf("media directory is required for local object store")
		}
	case S3Objects:
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required for s3 object store")
		}
	default:
		return fmt.Errorf("invalid object store: %s", c.ObjectStore)
	}
	return nil
}

// BackendTypes lists the accepted DATA_BACKEND values.
func BackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, MemoryBackend}
}
