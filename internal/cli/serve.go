package cli

import (
	"github.com/koustreak/myschema/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(d *deps) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schema over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd, d)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, in, err := s.connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			cfg := server.Config{
				Addr:            s.cfg.Server.Addr,
				ReadTimeout:     s.cfg.Server.ReadTimeout,
				WriteTimeout:    s.cfg.Server.WriteTimeout,
				ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
				Normalize:       s.cfg.Introspect.Normalize,
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return server.New(cfg, in, db, s.log).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	return cmd
}
