package mysql

import (
	"database/sql"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/koustreak/myschema/internal/database"
	"github.com/koustreak/myschema/internal/errs"
)

const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 2
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute
	defaultConnectTimeout  = 10 * time.Second
	defaultPort            = 3306
)

// buildDSN returns cfg.DSN when set, otherwise formats one from the
// individual fields. Either way the result is validated by the driver.
func buildDSN(cfg *database.Config) (string, error) {
	if cfg.DSN != "" {
		parsed, err := gomysql.ParseDSN(cfg.DSN)
		if err != nil {
			return "", errs.Wrap(errs.ErrKindInvalidInput, "invalid DSN", err)
		}
		return parsed.FormatDSN(), nil
	}

	if cfg.Host == "" {
		return "", errs.New(errs.ErrKindInvalidInput, "either DSN or host must be set")
	}
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}

	mc := gomysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, port)
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Timeout = connectTimeout(cfg)
	return mc.FormatDSN(), nil
}

// applyPool configures pool limits, falling back to defaults for zero values.
func applyPool(db *sql.DB, cfg *database.Config) {
	maxOpen := int(cfg.MaxConns)
	if maxOpen == 0 {
		maxOpen = defaultMaxOpenConns
	}
	maxIdle := int(cfg.MinConns)
	if maxIdle == 0 {
		maxIdle = defaultMaxIdleConns
	}
	lifetime := cfg.MaxConnLifetime
	if lifetime == 0 {
		lifetime = defaultConnMaxLifetime
	}
	idle := cfg.MaxConnIdleTime
	if idle == 0 {
		idle = defaultConnMaxIdleTime
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)
	db.SetConnMaxIdleTime(idle)
}

func connectTimeout(cfg *database.Config) time.Duration {
	if cfg.ConnectTimeout > 0 {
		return cfg.ConnectTimeout
	}
	return defaultConnectTimeout
}
