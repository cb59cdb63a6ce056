package constants

import "time"

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
	RelayTimeout    = 10 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100

	// sqlite allows a single writer; one pooled connection avoids SQLITE_BUSY under load
	SQLiteMaxOpenConns = 1
	SQLiteBusyTimeout  = 5000
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	MaxBodyBytes     = 50 << 10
	MaxSnapshotBytes = 1 << 20
)

const (
	RelayKeyHeader  = "X-Relay-Key"
	RequestIDHeader = "X-Request-ID"
)

const (
	VoteRateWindow       = time.Minute
	RateLimiterTTL       = 10 * time.Minute
	RateLimiterSweepTime = 15 * time.Minute
)

const (
	NameMaxLength       = 100
	EmailMaxLength      = 254
	ExternalIDMaxLength = 64
)
