package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
	"github.com/vfg2006/pipeline-analytics-api/internal/usecases/authenticating"
	"github.com/vfg2006/pipeline-analytics-api/pkg/middleware"
)

func tokenCmd() *cobra.Command {
	var (
		claims domain.Claims
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite um token assinado com AUTH_SECRET para testes locais",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := authenticating.NewService(cfg.Auth).IssueToken(claims, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().IntVar(&claims.UserID, "user-id", 1, "id do usuário")
	cmd.Flags().StringVar(&claims.UserEmail, "email", "", "email do usuário")
	cmd.Flags().IntVar(&claims.UserRoleID, "role", middleware.RoleAdmin, "role (1 admin, 2 gerente, 3 vendedor)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "validade do token")

	return cmd
}
