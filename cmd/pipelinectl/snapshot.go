package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vfg2006/pipeline-analytics-api/internal/app"
)

func snapshotCmd() *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Grava os snapshots dos últimos meses fechados",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if months <= 0 {
				months = cfg.SnapshotSync.MonthLookBack
			}

			return withApp(cmd.Context(), func(a *app.App) error {
				report, err := a.SnapshotSync.Sync(cmd.Context(), months)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "meses: %d, gravados: %d, falhas: %d, removidos: %d\n",
					report.Months, report.Saved, report.Failed, report.Deleted)
				if report.Failed > 0 {
					return fmt.Errorf("%d snapshot(s) falharam", report.Failed)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&months, "months", 0, "quantidade de meses fechados (padrão: SNAPSHOT_SYNC_MONTH_LOOKBACK)")

	return cmd
}
