// Package cli builds the myschema command tree.
package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/koustreak/myschema/internal/config"
	"github.com/koustreak/myschema/internal/database"
	"github.com/koustreak/myschema/internal/database/mysql"
	"github.com/koustreak/myschema/internal/filestore"
	"github.com/koustreak/myschema/internal/filestore/minio"
	"github.com/koustreak/myschema/internal/introspect"
	"github.com/koustreak/myschema/internal/logger"
	"github.com/spf13/cobra"
)

// deps are the backends a command connects to.
type deps struct {
	openDB    func(ctx context.Context, cfg *database.Config) (database.DB, error)
	openStore func(ctx context.Context, cfg *filestore.Config) (filestore.Store, error)
	now       func() time.Time
	logOut    io.Writer
}

func defaultDeps() *deps {
	return &deps{
		openDB: func(ctx context.Context, cfg *database.Config) (database.DB, error) {
			db, err := mysql.New(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return db, nil
		},
		openStore: func(ctx context.Context, cfg *filestore.Config) (filestore.Store, error) {
			store, err := minio.New(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return store, nil
		},
		now:    time.Now,
		logOut: os.Stderr,
	}
}

// NewRootCmd builds the root command with its persistent flags and subcommands.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultDeps())
}

func newRootCmd(d *deps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "myschema",
		Short:         "Inspect and snapshot MySQL table schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "path to the YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("database", "", "schema to inspect (default: the connection's database)")

	rootCmd.AddCommand(newInspectCmd(d))
	rootCmd.AddCommand(newExportCmd(d))
	rootCmd.AddCommand(newSnapshotsCmd(d))
	rootCmd.AddCommand(newServeCmd(d))

	return rootCmd
}

// session is the loaded configuration and logger of one invocation.
type session struct {
	cfg  *config.Config
	log  *logger.Logger
	deps *deps
}

// loadSession reads the config file, applies the persistent flags on top
// and sets up logging.
func loadSession(cmd *cobra.Command, d *deps) (*session, error) {
	flags := cmd.Root().PersistentFlags()
	configPath, _ := flags.GetString("config")
	logLevel, _ := flags.GetString("log-level")
	dbName, _ := flags.GetString("database")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	// flags win over file and environment
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if dbName != "" {
		cfg.Database.Name = dbName
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(cfg.Log.LoggerConfig(d.logOut))
	logger.SetGlobal(log)
	log.Debugf("configuration loaded from %q", configPath)

	return &session{cfg: cfg, log: log, deps: d}, nil
}

// connect opens the database and an introspector over it. The caller
// closes the returned DB.
func (s *session) connect(ctx context.Context) (database.DB, *introspect.Introspector, error) {
	db, err := s.deps.openDB(ctx, s.cfg.Database.DatabaseConfig())
	if err != nil {
		return nil, nil, err
	}
	in := introspect.New(db,
		introspect.WithDatabase(s.cfg.Database.Name),
		introspect.WithQueryTimeout(s.cfg.Database.QueryTimeout),
		introspect.WithLogger(s.log),
	)
	return db, in, nil
}

// openStore validates the export settings and connects to the object store.
func (s *session) openStore(ctx context.Context) (filestore.Store, error) {
	if err := s.cfg.ValidateExport(); err != nil {
		return nil, err
	}
	return s.deps.openStore(ctx, s.cfg.Export.FilestoreConfig())
}

// normalize resolves a --normalize flag against the configured default.
func (s *session) normalize(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("normalize") {
		v, _ := cmd.Flags().GetBool("normalize")
		return v
	}
	return s.cfg.Introspect.Normalize
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
