package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vfg2006/pipeline-analytics-api/infrastructure/migration"
	"github.com/vfg2006/pipeline-analytics-api/internal/app"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica as migrações pendentes do banco",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				applied, err := migration.Apply(cmd.Context(), a.DB)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d migração(ões) aplicada(s)\n", applied)
				return nil
			})
		},
	}
}
