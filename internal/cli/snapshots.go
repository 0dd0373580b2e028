package cli

import (
	"fmt"

	"github.com/koustreak/myschema/internal/snapshot"
	"github.com/spf13/cobra"
)

func newSnapshotsCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List and read stored snapshots",
	}
	cmd.AddCommand(newSnapshotsListCmd(d))
	cmd.AddCommand(newSnapshotsShowCmd(d))
	return cmd
}

func newSnapshotsListCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the snapshot keys of the configured database, oldest first",
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

			keys, err := snapshot.List(ctx, store, s.cfg.Export.Bucket, s.cfg.Export.Prefix, s.cfg.Database.Name)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}

func newSnapshotsShowCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "show [key]",
		Short: "Print a snapshot, the latest one when no key is given",
		Args:  cobra.MaximumNArgs(1),
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

			bucket := s.cfg.Export.Bucket
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				key, err = snapshot.Latest(ctx, store, bucket, s.cfg.Export.Prefix, s.cfg.Database.Name)
				if err != nil {
					return err
				}
			}

			snap, err := snapshot.Load(ctx, store, bucket, key)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), snap)
		},
	}
}
