package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/pipeline-analytics-api/infrastructure/repository"
	"github.com/vfg2006/pipeline-analytics-api/internal/config"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
	"github.com/vfg2006/pipeline-analytics-api/internal/usecases/analyzing"
)

var ErrSyncAlreadyRunning = errors.New("snapshot sync already running")

// SnapshotSyncConfig representa a configuração do agendador de snapshots mensais
type SnapshotSyncConfig struct {
	CronSchedule      string
	MaxConcurrentJobs int
	SyncEnabled       bool
	MonthLookBack     int
	RetentionMonths   int
}

// SyncReport resume uma execução da sincronização
type SyncReport struct {
	Months  int `json:"months"`
	Saved   int `json:"saved"`
	Failed  int `json:"failed"`
	Deleted int `json:"deleted"`
}

// SnapshotSyncService calcula e armazena as análises dos meses fechados, para o funil inteiro e por responsável
type SnapshotSyncService struct {
	scheduler           *gocron.Scheduler
	config              SnapshotSyncConfig
	analyzer            analyzing.Analyzer
	snapshotRepo        repository.AnalyticsSnapshotRepository
	now                 func() time.Time
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastReport          SyncReport
}

func NewSnapshotSyncService(
	analyzer analyzing.Analyzer,
	snapshotRepo repository.AnalyticsSnapshotRepository,
	appConfig *config.Config,
) *SnapshotSyncService {
	syncConfig := SnapshotSyncConfig{
		CronSchedule:      appConfig.SnapshotSync.CronSchedule,
		MaxConcurrentJobs: appConfig.SnapshotSync.MaxConcurrentJobs,
		SyncEnabled:       appConfig.SnapshotSync.Enabled,
		MonthLookBack:     appConfig.SnapshotSync.MonthLookBack,
		RetentionMonths:   appConfig.SnapshotSync.RetentionMonths,
	}
	if syncConfig.MaxConcurrentJobs <= 0 {
		syncConfig.MaxConcurrentJobs = 1
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule":       syncConfig.CronSchedule,
		"max_concurrent_jobs": syncConfig.MaxConcurrentJobs,
		"sync_enabled":        syncConfig.SyncEnabled,
		"month_lookback":      syncConfig.MonthLookBack,
	}).Info("Configuração do agendador de snapshots carregada")

	return &SnapshotSyncService{
		scheduler:    gocron.NewScheduler(time.Local),
		config:       syncConfig,
		analyzer:     analyzer,
		snapshotRepo: snapshotRepo,
		now:          time.Now,
	}
}

// Start inicia o agendador
func (s *SnapshotSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Sincronização de snapshots desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de snapshots")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		if _, err := s.Sync(ctx, s.config.MonthLookBack); err != nil && !errors.Is(err, ErrSyncAlreadyRunning) {
			logrus.WithError(err).Error("Erro na sincronização agendada de snapshots")
		}
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização de snapshots: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de snapshots")
		s.scheduler.Stop()
	}()

	return nil
}

// Sync calcula os snapshots dos últimos months meses fechados.
// Falhas individuais são registradas em log e contadas no relatório.
func (s *SnapshotSyncService) Sync(ctx context.Context, months int) (SyncReport, error) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de snapshots já em andamento, ignorando")
		return SyncReport{}, ErrSyncAlreadyRunning
	}
	s.syncRunning = true
	s.lastSyncStartedAt = s.now()
	s.syncMutex.Unlock()

	startTime := time.Now()
	report := SyncReport{Months: months}

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.lastReport = report
		s.syncMutex.Unlock()
	}()

	owners, err := s.analyzer.DistinctOwners(ctx)
	if err != nil {
		return report, fmt.Errorf("erro ao buscar responsáveis: %w", err)
	}

	filterSets := make([]domain.Filters, 0, len(owners)+1)
	filterSets = append(filterSets, domain.Filters{})
	for _, owner := range owners {
		filterSets = append(filterSets, domain.Filters{Owner: owner})
	}

	var saved, failed atomic.Int64
	for i := 1; i <= months; i++ {
		month := domain.MonthPeriod(s.now().AddDate(0, -i, 0)).Start

		logrus.WithFields(logrus.Fields{
			"period":      month.Format(domain.PeriodLayout),
			"filter_sets": len(filterSets),
		}).Info("Período para sincronização de snapshots")

		s.processMonth(ctx, month, filterSets, &saved, &failed)
	}

	report.Saved = int(saved.Load())
	report.Failed = int(failed.Load())

	if s.config.RetentionMonths > 0 {
		deleted, err := s.snapshotRepo.DeleteOlderThan(ctx, s.config.RetentionMonths)
		if err != nil {
			logrus.WithError(err).Error("Erro ao remover snapshots antigos")
		}
		report.Deleted = int(deleted)
	}

	s.syncMutex.Lock()
	s.lastSyncCompletedAt = s.now()
	s.syncMutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"duration": time.Since(startTime).String(),
		"saved":    report.Saved,
		"failed":   report.Failed,
		"deleted":  report.Deleted,
	}).Info("Sincronização de snapshots concluída")

	return report, nil
}

// processMonth grava um snapshot por conjunto de filtros, limitado a MaxConcurrentJobs simultâneos
func (s *SnapshotSyncService) processMonth(ctx context.Context, month time.Time, filterSets []domain.Filters, saved, failed *atomic.Int64) {
	semaphore := make(chan struct{}, s.config.MaxConcurrentJobs)
	var wg sync.WaitGroup

	for _, filters := range filterSets {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(f domain.Filters) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			if _, err := s.analyzer.SnapshotMonth(ctx, month, f); err != nil {
				failed.Add(1)
				logrus.WithError(err).WithFields(logrus.Fields{
					"period": month.Format(domain.PeriodLayout),
					"owner":  f.Owner,
				}).Error("Erro ao gerar snapshot mensal")
				return
			}
			saved.Add(1)
		}(filters)
	}

	wg.Wait()
}

// TriggerManualSync inicia manualmente uma sincronização em segundo plano
func (s *SnapshotSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de snapshots já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando sincronização manual de snapshots")
	go func() {
		if _, err := s.Sync(context.Background(), s.config.MonthLookBack); err != nil && !errors.Is(err, ErrSyncAlreadyRunning) {
			logrus.WithError(err).Error("Erro na sincronização manual de snapshots")
		}
	}()
}

// GetStatus retorna o status atual da sincronização
func (s *SnapshotSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_running":           s.syncRunning,
		"sync_cron":              s.config.CronSchedule,
		"sync_enabled":           s.config.SyncEnabled,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_report":            s.lastReport,
	}
}
