package cli

import (
	"fmt"
	"time"

	"github.com/koustreak/myschema/internal/introspect"
	"github.com/koustreak/myschema/internal/snapshot"
	"github.com/spf13/cobra"
)

func newExportCmd(d *deps) *cobra.Command {
	var key string
	var presign time.Duration

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Introspect every table and upload a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd, d)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			store, err := s.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			db, in, err := s.connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			tables, err := in.Tables(ctx)
			if err != nil {
				return err
			}
			normalize := s.normalize(cmd)
			if normalize {
				for _, t := range tables {
					introspect.NormalizeTable(t)
				}
			}

			snap := &snapshot.Snapshot{
				Database:   s.cfg.Database.Name,
				TakenAt:    s.deps.now().UTC(),
				Normalized: normalize,
				Tables:     tables,
			}
			objectKey := key
			if objectKey == "" {
				objectKey = snapshot.Key(s.cfg.Export.Prefix, snap.Database, snap.TakenAt)
			}

			info, err := snapshot.Export(ctx, store, s.cfg.Export.Bucket, objectKey, snap)
			if err != nil {
				return err
			}
			s.log.InfoWith("snapshot exported", map[string]interface{}{
				"bucket": s.cfg.Export.Bucket,
				"key":    info.Key,
				"tables": len(tables),
				"bytes":  info.Size,
			})

			fmt.Fprintln(cmd.OutOrStdout(), info.Key)
			if presign > 0 {
				url, err := store.PresignGetURL(ctx, s.cfg.Export.Bucket, info.Key, presign)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "object key (default: <prefix>/<database>/<timestamp>.json)")
	cmd.Flags().DurationVar(&presign, "presign", 0, "also print a download URL valid for this long")
	cmd.Flags().Bool("normalize", false, "quantize column types before storing")

	return cmd
}
