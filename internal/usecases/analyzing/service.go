package analyzing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vfg2006/pipeline-analytics-api/infrastructure/repository"
	"github.com/vfg2006/pipeline-analytics-api/internal/analytics/funnel"
	"github.com/vfg2006/pipeline-analytics-api/internal/analytics/insight"
	"github.com/vfg2006/pipeline-analytics-api/internal/analytics/ledger"
	"github.com/vfg2006/pipeline-analytics-api/internal/analytics/revenue"
	"github.com/vfg2006/pipeline-analytics-api/internal/analytics/trend"
	"github.com/vfg2006/pipeline-analytics-api/internal/config"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

// Request define o recorte de uma análise
type Request struct {
	Period      domain.Period
	Filters     domain.Filters
	BucketSize  domain.BucketSize // vazio usa o padrão configurado
	BucketCount int               // zero usa o padrão configurado
}

type Service struct {
	reader        domain.SnapshotReader
	snapshotRepo  repository.AnalyticsSnapshotRepository
	probabilities funnel.StageProbabilities
	mrrGoal       float64
	rules         []insight.Rule
	bucketSize    domain.BucketSize
	bucketCount   int
	now           func() time.Time
}

type Option func(*Service)

// WithRules substitui as regras padrão de insight
func WithRules(rules []insight.Rule) Option {
	return func(s *Service) {
		s.rules = rules
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService cria o serviço de análises sobre a fonte de dados informada
func NewService(
	cfg *config.Config,
	reader domain.SnapshotReader,
	snapshotRepo repository.AnalyticsSnapshotRepository,
	opts ...Option,
) *Service {
	bucketSize, err := domain.ParseBucketSize(cfg.Pipeline.DefaultBucketSize)
	if err != nil {
		bucketSize = domain.BucketMonth
	}

	bucketCount := cfg.Pipeline.DefaultBucketCount
	if bucketCount <= 0 {
		bucketCount = 12
	}

	probs := cfg.Pipeline.StageProbabilities
	if probs == nil {
		probs = funnel.DefaultStageProbabilities()
	}

	s := &Service{
		reader:        reader,
		snapshotRepo:  snapshotRepo,
		probabilities: probs,
		mrrGoal:       cfg.Pipeline.MRRGoal,
		rules:         insight.DefaultRules(cfg.Pipeline.Thresholds()),
		bucketSize:    bucketSize,
		bucketCount:   bucketCount,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeAnalytics monta o resultado completo da análise.
// Entidades com histórico inconsistente são registradas em log e excluídas do cálculo.
func (s *Service) ComputeAnalytics(ctx context.Context, req Request) (*domain.AggregateResult, error) {
	if !req.Period.Start.Before(req.Period.End) {
		return nil, fmt.Errorf("%w: start must be before end", domain.ErrInvalidPeriod)
	}
	if req.BucketSize == "" {
		req.BucketSize = s.bucketSize
	}
	if req.BucketCount <= 0 {
		req.BucketCount = s.bucketCount
	}
	if err := domain.ValidateBucketCount(req.BucketCount); err != nil {
		return nil, err
	}

	snap, err := s.loadSnapshot(ctx, req.Filters)
	if err != nil {
		return nil, err
	}

	snap, excluded := excludeInconsistent(snap)

	result := &domain.AggregateResult{
		Period:      req.Period,
		Filters:     req.Filters,
		GeneratedAt: s.now(),
		Trends: domain.TrendResult{
			BucketSize:  req.BucketSize,
			BucketCount: req.BucketCount,
		},
		Excluded: excluded,
	}
	anchor := req.Period.Last()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		result.Funnel = funnel.Compute(snap, req.Period, req.Filters, s.probabilities)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		result.Revenue = revenue.Compute(snap, req.Period, req.Filters, s.mrrGoal)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		result.Trends.NewEntities = trend.Bucket(trend.CreationEvents(snap, req.Filters), req.BucketSize, req.BucketCount, anchor, trend.ModeCount)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		result.Trends.WonDeals = trend.Bucket(trend.StageEntryEvents(snap, domain.StageGanado, req.Filters), req.BucketSize, req.BucketCount, anchor, trend.ModeCount)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		result.Trends.NewMRR = trend.Bucket(trend.DealStartEvents(snap, req.Filters), req.BucketSize, req.BucketCount, anchor, trend.ModeSum)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Insights = insight.Evaluate(domain.MetricsFrom(result), s.rules)

	logrus.WithFields(logrus.Fields{
		"period":   req.Period.Label(),
		"filters":  req.Filters.Key(),
		"entities": len(snap.Entities),
		"excluded": len(excluded),
		"insights": len(result.Insights),
	}).Debug("Análise do funil calculada")

	return result, nil
}

// loadSnapshot busca as entidades e, em paralelo, seus históricos e contratos
func (s *Service) loadSnapshot(ctx context.Context, filters domain.Filters) (*domain.Snapshot, error) {
	entities, err := s.reader.FetchEntities(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar entidades: %w", err)
	}

	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.ID)
	}

	var (
		history []domain.StageHistoryRecord
		deals   []domain.Deal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := s.reader.FetchHistory(gctx, ids)
		if err != nil {
			return fmt.Errorf("erro ao buscar histórico: %w", err)
		}
		history = records
		return nil
	})
	g.Go(func() error {
		found, err := s.reader.FetchDeals(gctx, filters)
		if err != nil {
			return fmt.Errorf("erro ao buscar contratos: %w", err)
		}
		deals = found
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return domain.NewSnapshot(entities, history, deals), nil
}

func excludeInconsistent(snap *domain.Snapshot) (*domain.Snapshot, []string) {
	var excluded []string
	for _, e := range snap.Entities {
		if err := ledger.ValidateHistory(e, snap.History[e.ID]); err != nil {
			logrus.WithFields(logrus.Fields{
				"entity_id": e.ID,
				"error":     err,
			}).Warn("Entidade com histórico inconsistente excluída da análise")
			excluded = append(excluded, e.ID)
		}
	}

	if len(excluded) == 0 {
		return snap, nil
	}

	sort.Strings(excluded)
	return snap.Without(excluded), excluded
}

// GetSnapshot retorna a análise armazenada do período mm-yyyy
func (s *Service) GetSnapshot(ctx context.Context, period string, filters domain.Filters) (*domain.AnalyticsSnapshotEntry, error) {
	if _, err := domain.ParseMonthPeriod(period); err != nil {
		return nil, err
	}

	entry, err := s.snapshotRepo.GetByPeriod(ctx, period, filters)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar snapshot de análise: %w", err)
	}
	if entry == nil {
		return nil, domain.ErrSnapshotNotFound
	}

	return entry, nil
}

// SnapshotMonth calcula a análise do mês que contém month e a grava
func (s *Service) SnapshotMonth(ctx context.Context, month time.Time, filters domain.Filters) (*domain.AnalyticsSnapshotEntry, error) {
	period := domain.MonthPeriod(month)

	result, err := s.ComputeAnalytics(ctx, Request{
		Period:      period,
		Filters:     filters,
		BucketSize:  domain.BucketMonth,
		BucketCount: s.bucketCount,
	})
	if err != nil {
		return nil, err
	}

	entry := &domain.AnalyticsSnapshotEntry{
		Period:     period.Label(),
		FiltersKey: filters.Key(),
		Filters:    filters,
		Result:     result,
	}

	if err := s.snapshotRepo.SaveOrUpdate(ctx, entry); err != nil {
		return nil, fmt.Errorf("erro ao salvar snapshot de análise: %w", err)
	}

	return entry, nil
}

// DistinctOwners lista os responsáveis em ordem alfabética
func (s *Service) DistinctOwners(ctx context.Context) ([]string, error) {
	entities, err := s.reader.FetchEntities(ctx, domain.Filters{})
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar entidades: %w", err)
	}

	seen := make(map[string]struct{})
	owners := make([]string, 0)
	for _, e := range entities {
		if e.Owner == "" {
			continue
		}
		if _, ok := seen[e.Owner]; ok {
			continue
		}
		seen[e.Owner] = struct{}{}
		owners = append(owners, e.Owner)
	}

	sort.Strings(owners)
	return owners, nil
}

// GetAvailablePeriods retorna os períodos, anos e meses com snapshots armazenados
func (s *Service) GetAvailablePeriods(ctx context.Context) (*domain.AvailablePeriods, error) {
	periods, err := s.snapshotRepo.GetAllPeriods(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar períodos de snapshots: %w", err)
	}

	yearMap := make(map[string]bool)
	monthMap := make(map[string]bool)

	for _, period := range periods {
		// formato mm-yyyy
		if len(period) == 7 {
			monthMap[period[:2]] = true
			yearMap[period[3:]] = true
		}
	}

	years := make([]string, 0, len(yearMap))
	for year := range yearMap {
		years = append(years, year)
	}

	months := make([]string, 0, len(monthMap))
	for month := range monthMap {
		months = append(months, month)
	}

	sort.Strings(years)
	sort.Strings(months)

	return &domain.AvailablePeriods{
		Periods: periods,
		Years:   years,
		Months:  months,
	}, nil
}
