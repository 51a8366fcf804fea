package handler

import (
	"net/http"

	"github.com/vfg2006/pipeline-analytics-api/internal/api/handler/router"
	"github.com/vfg2006/pipeline-analytics-api/internal/usecases/analyzing"
	"github.com/vfg2006/pipeline-analytics-api/internal/usecases/pipeline"
	"github.com/vfg2006/pipeline-analytics-api/pkg/middleware"
)

type middlewares = []func(http.Handler) http.Handler

func Healthcheck(db Pinger) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(db),
		},
	}
}

func Analytics(service analyzing.Analyzer) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/analytics",
			Method:      http.MethodGet,
			Handler:     GetAnalytics(service),
			Middlewares: middlewares{middleware.AllRoles()},
		},
		{
			Path:        "/v1/analytics/snapshots",
			Method:      http.MethodGet,
			Handler:     GetAnalyticsSnapshot(service),
			Middlewares: middlewares{middleware.AllRoles()},
		},
		{
			Path:        "/v1/analytics/periods",
			Method:      http.MethodGet,
			Handler:     GetAvailablePeriods(service),
			Middlewares: middlewares{middleware.AllRoles()},
		},
	}
}

func Entities(service pipeline.Manager) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/entities",
			Method:      http.MethodPost,
			Handler:     CreateEntity(service),
			Middlewares: middlewares{middleware.CanWrite()},
		},
		{
			Path:        "/v1/entities/:id/history",
			Method:      http.MethodGet,
			Handler:     GetEntityHistory(service),
			Middlewares: middlewares{middleware.AllRoles()},
		},
		{
			Path:        "/v1/entities/:id/time-in-stage",
			Method:      http.MethodGet,
			Handler:     GetTimeInStage(service),
			Middlewares: middlewares{middleware.AllRoles()},
		},
		{
			Path:        "/v1/entities/:id/transitions",
			Method:      http.MethodPost,
			Handler:     RecordTransition(service),
			Middlewares: middlewares{middleware.CanWrite()},
		},
		{
			Path:        "/v1/entities/:id/deal",
			Method:      http.MethodPut,
			Handler:     UpsertDeal(service),
			Middlewares: middlewares{middleware.CanWrite()},
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/:type/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services),
			Middlewares: middlewares{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: middlewares{middleware.AdminOnly()},
		},
	}
}
