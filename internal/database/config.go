package database

import "time"

// Config holds all settings needed to connect to and pool a MySQL database.
type Config struct {
	// DSN is the full data source name. When set it wins over the
	// individual connection fields below.
	// Example: "user:pass@tcp(localhost:3306)/mydb"
	DSN string

	Host     string
	Port     int
	User     string
	Password string
	Database string

	// Pool tuning
	MaxConns        int32         // maximum number of connections in the pool
	MinConns        int32         // idle connections kept alive
	MaxConnLifetime time.Duration // maximum time a connection may be reused
	MaxConnIdleTime time.Duration // maximum time a connection may sit idle

	// Timeouts
	ConnectTimeout time.Duration // time limit for establishing a new connection
	QueryTimeout   time.Duration // per-query deadline applied by callers
}

// DefaultConfig returns pool settings suited to short introspection runs.
func DefaultConfig(dsn string) *Config {
	return &Config{
		DSN:             dsn,
		Port:            3306,
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  10 * time.Second,
		QueryTimeout:    30 * time.Second,
	}
}
