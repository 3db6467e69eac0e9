package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/mashamba/dairy-backend/internal/http"
	"github.com/mashamba/dairy-backend/internal/repo"
	"github.com/mashamba/dairy-backend/internal/scheduler"
)

func newSnapshotCmd(a *app) *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write daily milk snapshots for one day (default yesterday)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Snapshot.Timeout)
			defer cancel()
			ctx = a.log.WithContext(ctx)

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)
			if err := repo.AutoMigrate(db); err != nil {
				return err
			}
			arch, err := a.openArchive(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = arch.Close(context.Background()) }()

			svc := httpapi.NewServices(db, a.cfg)
			sched := scheduler.New(a.cfg, svc.Reports, arch, db, a.log)
			d := sched.Yesterday()
			if day != "" {
				if d, err = time.ParseInLocation(time.DateOnly, day, a.cfg.Report.Location); err != nil {
					return fmt.Errorf("--day must be YYYY-MM-DD: %w", err)
				}
			}
			res, err := sched.Run(ctx, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d farm(s) snapshotted, archived=%t, %d idempotency key(s) purged\n",
				res.Day, res.Farms, res.Archived, res.Purged)
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "calendar day to snapshot (YYYY-MM-DD, report timezone)")
	return cmd
}
