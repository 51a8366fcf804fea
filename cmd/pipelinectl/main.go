package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vfg2006/pipeline-analytics-api/internal/app"
	"github.com/vfg2006/pipeline-analytics-api/internal/config"
	"github.com/vfg2006/pipeline-analytics-api/pkg/log"
)

var (
	cfg     *config.Config
	rootCmd = &cobra.Command{
		Use:               "pipelinectl",
		Short:             "Ferramentas de operação do funil de vendas",
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}
)

func init() {
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(analyticsCmd())
	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(tokenCmd())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(_ *cobra.Command, _ []string) error {
	loaded, err := config.NewConfig()
	if err != nil {
		return err
	}
	cfg = loaded
	log.Setup(cfg.App.LogLevel)
	return nil
}

// withApp abre as conexões, executa fn e libera os recursos
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("erro ao conectar ao PostgreSQL: %w", err)
	}
	defer a.Close()

	logrus.Debug("Dependências inicializadas")
	return fn(a)
}
