// Package app monta as dependências compartilhadas pela API e pela CLI.
package app

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/pipeline-analytics-api/infrastructure/cache"
	"github.com/vfg2006/pipeline-analytics-api/infrastructure/database/postgres"
	"github.com/vfg2006/pipeline-analytics-api/infrastructure/repository"
	"github.com/vfg2006/pipeline-analytics-api/internal/config"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
	"github.com/vfg2006/pipeline-analytics-api/internal/scheduler"
	"github.com/vfg2006/pipeline-analytics-api/internal/usecases/analyzing"
	"github.com/vfg2006/pipeline-analytics-api/internal/usecases/authenticating"
	"github.com/vfg2006/pipeline-analytics-api/internal/usecases/pipeline"
)

type App struct {
	Config       *config.Config
	DB           *postgres.Connection
	Redis        *redis.Client
	Analyzer     *analyzing.Service
	Manager      *pipeline.Service
	Validator    *authenticating.Service
	SnapshotSync *scheduler.SnapshotSyncService
}

// New conecta ao PostgreSQL e, se habilitado, ao Redis, e instancia os serviços
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")

	a := &App{
		Config:    cfg,
		DB:        conn,
		Validator: authenticating.NewService(cfg.Auth),
	}

	snapshotRepo := repository.NewSnapshotRepository(conn)
	analyticsSnapshotRepo := repository.NewAnalyticsSnapshotRepository(conn)

	var reader domain.SnapshotReader = snapshotRepo
	var pipelineOpts []pipeline.Option

	if cfg.Cache.Enabled {
		a.Redis = cache.NewClient(cfg.Cache)
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			logrus.WithError(err).Warn("Redis indisponível, leituras seguirão direto para o banco")
		}

		cached := cache.NewSnapshotReader(snapshotRepo, a.Redis, cfg.Cache.TTL)
		reader = cached
		pipelineOpts = append(pipelineOpts, pipeline.WithOnChange(func(ctx context.Context) {
			if err := cached.Invalidate(ctx); err != nil {
				logrus.WithError(err).Warn("Erro ao invalidar cache do funil")
			}
		}))
	}

	a.Analyzer = analyzing.NewService(cfg, reader, analyticsSnapshotRepo)
	a.Manager = pipeline.NewService(
		repository.NewLedgerRepository(conn),
		repository.NewDealRepository(conn),
		pipelineOpts...,
	)
	a.SnapshotSync = scheduler.NewSnapshotSyncService(a.Analyzer, analyticsSnapshotRepo, cfg)

	return a, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logrus.WithError(err).Warn("Erro ao fechar conexão com Redis")
		}
	}
	if err := a.DB.Close(); err != nil {
		logrus.WithError(err).Warn("Erro ao fechar conexão com PostgreSQL")
	}
}
