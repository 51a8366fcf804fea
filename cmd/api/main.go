package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/vfg2006/pipeline-analytics-api/internal/api"
	"github.com/vfg2006/pipeline-analytics-api/internal/app"
	"github.com/vfg2006/pipeline-analytics-api/internal/config"
	"github.com/vfg2006/pipeline-analytics-api/pkg/log"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	log.Setup(cfg.App.LogLevel)
	logrus.Infof("Nível de log configurado para: %s", logrus.GetLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}
	defer application.Close()

	if err := application.SnapshotSync.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de snapshots")
	}

	server := api.New(
		cfg,
		application.Analyzer,
		application.Manager,
		application.Validator,
		application.DB,
		application.SnapshotSync,
	)

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}
