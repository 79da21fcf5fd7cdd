package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	applog "anggaran/internal/log"
)

// Backends and object stores accepted by DATA_BACKEND and OBJECT_STORE.
var (
	DataBackends = []string{"memory", "sqlite"}
	ObjectStores = []string{"local", "s3"}
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int
	SessionTTL         time.Duration

	// Storage
	DataBackend  string
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets journal
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Media
	ObjectStore  string
	MediaDir     string
	MediaBaseURL string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string

	// Budget
	BudgetPolicyFile string
	Timezone         string

	// Worker
	SyncBatchSize  int
	ResyncSchedule string

	LogLevel string
}

func Load() *Config {
	port := getEnv("PORT", "8081")
	return &Config{
		Port:               port,
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		SessionTTL:         getEnvDuration("SESSION_TTL", 7*24*time.Hour),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/anggaran.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "anggaran"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_transactions"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Jurnal"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		ObjectStore:  getEnv("OBJECT_STORE", "local"),
		MediaDir:     getEnv("MEDIA_DIR", "./data/media"),
		MediaBaseURL: getEnv("MEDIA_BASE_URL", "http://localhost:"+port+"/media"),
		S3Bucket:     getEnv("S3_BUCKET", ""),
		S3Region:     getEnv("S3_REGION", ""),
		S3Endpoint:   getEnv("S3_ENDPOINT", ""),

		BudgetPolicyFile: getEnv("BUDGET_POLICY_FILE", ""),
		Timezone:         getEnv("TIMEZONE", "Asia/Jakarta"),

		SyncBatchSize:  getEnvInt("SYNC_BATCH_SIZE", 50),
		ResyncSchedule: getEnv("RESYNC_SCHEDULE", "@every 30m"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate collects every problem into one error.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	if !slices.Contains(DataBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, DataBackends))
	}
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if err := ensureDir(filepath.Dir(c.SQLiteDBPath)); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create SQLite database directory: %v", err))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	switch c.ObjectStore {
	case "local":
		if c.MediaDir == "" {
			errors = append(errors, "MEDIA_DIR cannot be empty when using local object store")
		}
		if u, err := url.Parse(c.MediaBaseURL); err != nil || u.Scheme == "" {
			errors = append(errors, fmt.Sprintf("invalid media base URL '%s'", c.MediaBaseURL))
		}
	case "s3":
		if c.S3Bucket == "" {
			errors = append(errors, "S3_BUCKET is required when using s3 object store")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid object store '%s': must be one of %v", c.ObjectStore, ObjectStores))
	}

	if c.BudgetPolicyFile != "" {
		if _, err := os.Stat(c.BudgetPolicyFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("budget policy file does not exist: %s", c.BudgetPolicyFile))
		}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if c.SyncBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at least 1", c.SyncBatchSize))
	} else if c.SyncBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at most 1000", c.SyncBatchSize))
	}
	if _, err := cron.ParseStandard(c.ResyncSchedule); err != nil {
		errors = append(errors, fmt.Sprintf("invalid resync schedule '%s': %v", c.ResyncSchedule, err))
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Location returns the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// JournalEnabled reports whether a spreadsheet is configured for mirroring.
func (c *Config) JournalEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

func ensureDir(dir string) error {
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
