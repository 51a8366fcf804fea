package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/pipeline-analytics-api/internal/api/handler"
	"github.com/vfg2006/pipeline-analytics-api/internal/api/handler/router"
	"github.com/vfg2006/pipeline-analytics-api/internal/config"
	"github.com/vfg2006/pipeline-analytics-api/internal/usecases/analyzing"
	"github.com/vfg2006/pipeline-analytics-api/internal/usecases/authenticating"
	"github.com/vfg2006/pipeline-analytics-api/internal/usecases/pipeline"
	"github.com/vfg2006/pipeline-analytics-api/pkg/middleware"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	httpServer *http.Server
}

func New(
	cfg *config.Config,
	analyzer analyzing.Analyzer,
	manager pipeline.Manager,
	validator authenticating.TokenValidator,
	db handler.Pinger,
	snapshotSync handler.SyncJob,
) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
			Handler:           NewHandler(cfg, analyzer, manager, validator, db, snapshotSync),
			ReadHeaderTimeout: 2 * time.Second,
		},
	}
}

// NewHandler monta as rotas e a cadeia de middlewares da API
func NewHandler(
	cfg *config.Config,
	analyzer analyzing.Analyzer,
	manager pipeline.Manager,
	validator authenticating.TokenValidator,
	db handler.Pinger,
	snapshotSync handler.SyncJob,
) http.Handler {
	rt := router.New(
		router.WithRoutes(handler.Healthcheck(db)...),
		router.WithRoutes(handler.Analytics(analyzer)...),
		router.WithRoutes(handler.Entities(manager)...),
		router.WithRoutes(handler.CronJobs(handler.CronJobServices{SnapshotSync: snapshotSync})...),
	)

	return alice.New(
		middleware.LogPanicMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.Cors(cfg.Server.AllowedOrigins),
		middleware.AuthMiddleware(validator),
	).Then(rt)
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		logrus.WithField("address", s.httpServer.Addr).Info("Servidor iniciando")

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("Erro durante a execução do servidor")
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		logrus.Info("Sinal de interrupção recebido")
	case <-ctx.Done():
		logrus.Info("Contexto de aplicação cancelado")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logrus.WithField("timeout", shutdownTimeout.String()).Info("Iniciando desligamento gracioso do servidor")

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Erro durante o desligamento do servidor")
		return err
	}

	logrus.Info("Servidor desligado com sucesso")
	return nil
}
