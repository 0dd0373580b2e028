// Package config loads the myschema YAML configuration file.
//
// Usage:
//
//	cfg, err := config.Load("myschema.yaml")
//	if err != nil { ... }
//	db, err := mysql.New(ctx, cfg.Database.DatabaseConfig())
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/koustreak/myschema/internal/database"
	"github.com/koustreak/myschema/internal/errs"
	"github.com/koustreak/myschema/internal/filestore"
	"github.com/koustreak/myschema/internal/logger"
	"go.yaml.in/yaml/v3"
)

// Environment variables that override the file.
const (
	EnvDSN             = "MYSCHEMA_DSN"
	EnvLogLevel        = "MYSCHEMA_LOG_LEVEL"
	EnvExportAccessKey = "MYSCHEMA_EXPORT_ACCESS_KEY"
	EnvExportSecretKey = "MYSCHEMA_EXPORT_SECRET_KEY"
)

// Config is the root of the configuration file.
type Config struct {
	Database   Database   `yaml:"database"`
	Log        Log        `yaml:"log"`
	Introspect Introspect `yaml:"introspect"`
	Export     Export     `yaml:"export"`
	Server     Server     `yaml:"server"`
}

// Database configures the MySQL connection. DSN, when set, wins over the
// individual connection fields.
type Database struct {
	DSN             string        `yaml:"dsn"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Introspect holds introspection defaults.
type Introspect struct {
	// Normalize quantizes column types before they are printed or stored.
	Normalize bool `yaml:"normalize"`
}

// Export configures the snapshot object store.
type Export struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	db := database.DefaultConfig("")
	store := filestore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
	return &Config{
		Database: Database{
			Host:            "localhost",
			Port:            db.Port,
			User:            "root",
			MaxConns:        db.MaxConns,
			MinConns:        db.MinConns,
			ConnMaxLifetime: db.MaxConnLifetime,
			ConnMaxIdleTime: db.MaxConnIdleTime,
			ConnectTimeout:  db.ConnectTimeout,
			QueryTimeout:    db.QueryTimeout,
		},
		Log: Log{Level: "info", Format: "json"},
		Export: Export{
			Endpoint:  store.Endpoint,
			AccessKey: store.AccessKey,
			SecretKey: store.SecretKey,
			Bucket:    store.Bucket,
			Prefix:    store.Prefix,
		},
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrKindNotFound, "config file "+path+" not found", err)
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to read config file "+path, err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// an empty document leaves the defaults in place
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errs.Wrap(errs.ErrKindParseFailed, "invalid config file", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDSN); ok && v != "" {
		c.Database.DSN = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvExportAccessKey); ok && v != "" {
		c.Export.AccessKey = v
	}
	if v, ok := lookup(EnvExportSecretKey); ok && v != "" {
		c.Export.SecretKey = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errs.Newf(errs.ErrKindInvalidInput, "log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return errs.Newf(errs.ErrKindInvalidInput, "log.format %q is not one of json, console", c.Log.Format)
	}

	d := c.Database
	if d.DSN == "" && d.Host == "" {
		return errs.New(errs.ErrKindInvalidInput, "database.dsn or database.host is required")
	}
	if d.DSN == "" && (d.Port < 1 || d.Port > 65535) {
		return errs.Newf(errs.ErrKindInvalidInput, "database.port %d out of range", d.Port)
	}
	if d.MaxConns < 0 || d.MinConns < 0 {
		return errs.New(errs.ErrKindInvalidInput, "database pool sizes must not be negative")
	}
	if d.MaxConns > 0 && d.MinConns > d.MaxConns {
		return errs.Newf(errs.ErrKindInvalidInput, "database.min_conns %d exceeds max_conns %d", d.MinConns, d.MaxConns)
	}
	if d.QueryTimeout < 0 || d.ConnectTimeout < 0 {
		return errs.New(errs.ErrKindInvalidInput, "database timeouts must not be negative")
	}

	if c.Server.Addr == "" {
		return errs.New(errs.ErrKindInvalidInput, "server.addr is required")
	}
	return nil
}

// ValidateExport checks the settings the export command depends on.
func (c *Config) ValidateExport() error {
	if c.Export.Endpoint == "" {
		return errs.New(errs.ErrKindInvalidInput, "export.endpoint is required")
	}
	if c.Export.Bucket == "" {
		return errs.New(errs.ErrKindInvalidInput, "export.bucket is required")
	}
	return nil
}

// DatabaseConfig converts the section for the mysql driver.
func (d Database) DatabaseConfig() *database.Config {
	return &database.Config{
		DSN:             d.DSN,
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		Database:        d.Name,
		MaxConns:        d.MaxConns,
		MinConns:        d.MinConns,
		MaxConnLifetime: d.ConnMaxLifetime,
		MaxConnIdleTime: d.ConnMaxIdleTime,
		ConnectTimeout:  d.ConnectTimeout,
		QueryTimeout:    d.QueryTimeout,
	}
}

// FilestoreConfig converts the section for the minio driver.
func (e Export) FilestoreConfig() *filestore.Config {
	return &filestore.Config{
		Provider:  filestore.ProviderMinIO,
		Endpoint:  e.Endpoint,
		AccessKey: e.AccessKey,
		SecretKey: e.SecretKey,
		UseSSL:    e.UseSSL,
		Region:    e.Region,
		Bucket:    e.Bucket,
		Prefix:    e.Prefix,
	}
}

// LoggerConfig converts the section for logger.New, writing to out.
func (l Log) LoggerConfig(out io.Writer) *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	if out != nil {
		cfg.Output = out
	}
	return cfg
}
