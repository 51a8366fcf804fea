package analyzing

//go:generate mockgen -source=interfaces.go -destination=mocks/analyzer.go -package=mocks

import (
	"context"
	"time"

	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

// Analyzer expõe o cálculo das análises do funil e os snapshots mensais armazenados
type Analyzer interface {
	// ComputeAnalytics calcula funil, receita, tendências e insights para o período e filtros
	ComputeAnalytics(ctx context.Context, req Request) (*domain.AggregateResult, error)

	// GetSnapshot retorna a análise armazenada de um mês (mm-yyyy)
	GetSnapshot(ctx context.Context, period string, filters domain.Filters) (*domain.AnalyticsSnapshotEntry, error)

	// GetAvailablePeriods retorna os meses que possuem snapshots armazenados
	GetAvailablePeriods(ctx context.Context) (*domain.AvailablePeriods, error)

	// SnapshotMonth calcula e armazena a análise do mês que contém month
	SnapshotMonth(ctx context.Context, month time.Time, filters domain.Filters) (*domain.AnalyticsSnapshotEntry, error)

	// DistinctOwners lista os responsáveis com entidades no funil
	DistinctOwners(ctx context.Context) ([]string, error)
}
