package pipeline

//go:generate mockgen -source=service.go -destination=mocks/manager.go -package=mocks

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vfg2006/pipeline-analytics-api/infrastructure/repository"
	"github.com/vfg2006/pipeline-analytics-api/internal/analytics/currency"
	"github.com/vfg2006/pipeline-analytics-api/internal/analytics/ledger"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
	"github.com/vfg2006/pipeline-analytics-api/pkg/utils"
)

// Manager concentra as operações de escrita e consulta individual do funil
type Manager interface {
	CreateEntity(ctx context.Context, req domain.CreateEntityRequest) (*domain.PipelineEntity, error)
	RecordTransition(ctx context.Context, entityID string, fromStage, toStage domain.Stage) (domain.StageHistoryRecord, error)
	UpsertDeal(ctx context.Context, entityID string, req domain.UpsertDealRequest) (*domain.Deal, error)
	History(ctx context.Context, entityID string) ([]domain.StageHistoryRecord, error)
	TimeInStage(ctx context.Context, entityID string, stage domain.Stage) (time.Duration, error)
}

type Service struct {
	ledger   *ledger.Ledger
	store    ledger.Store
	dealRepo repository.DealRepository
	now      func() time.Time
	onChange func(ctx context.Context)
}

type Option func(*Service)

// WithClock define o relógio usado nas transições e datas de contrato
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithOnChange registra uma função chamada após cada escrita bem-sucedida
func WithOnChange(fn func(ctx context.Context)) Option {
	return func(s *Service) {
		s.onChange = fn
	}
}

func NewService(store ledger.Store, dealRepo repository.DealRepository, opts ...Option) *Service {
	s := &Service{
		store:    store,
		dealRepo: dealRepo,
		now:      time.Now,
		onChange: func(context.Context) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ledger = ledger.New(store, ledger.WithClock(s.now))
	return s
}

// CreateEntity abre uma entidade no funil, normalizando o valor estimado para a moeda de relatório
func (s *Service) CreateEntity(ctx context.Context, req domain.CreateEntityRequest) (*domain.PipelineEntity, error) {
	kind := req.Kind
	if kind == "" {
		kind = domain.EntityKindLead
	}
	if kind != domain.EntityKindLead && kind != domain.EntityKindProject {
		return nil, errors.Wrapf(domain.ErrInvalidEntityKind, "kind %q", req.Kind)
	}

	stage := domain.StageProspecto
	if req.Stage != "" {
		parsed, err := domain.ParseStage(req.Stage)
		if err != nil {
			return nil, err
		}
		stage = parsed
	}

	estimated := 0.0
	if req.EstimatedValue != 0 {
		code := req.Currency
		if code == "" {
			code = string(domain.ReportingCurrency)
		}
		cur, err := domain.ParseCurrency(code)
		if err != nil {
			return nil, err
		}

		estimated, err = currency.Normalize(req.EstimatedValue, cur, req.ExchangeRate)
		if err != nil {
			return nil, err
		}
	}

	entity, _, err := s.ledger.Open(ctx, domain.PipelineEntity{
		Kind:              kind,
		Name:              req.Name,
		Stage:             stage,
		Owner:             req.Owner,
		Channel:           req.Channel,
		Subchannel:        req.Subchannel,
		EstimatedValueUSD: estimated,
	}, s.now())
	if err != nil {
		return nil, errors.Wrap(err, "erro ao abrir entidade")
	}

	logrus.WithFields(logrus.Fields{
		"entity_id": entity.ID,
		"kind":      entity.Kind,
		"owner":     entity.Owner,
	}).Info("Entidade criada no funil")
	s.onChange(ctx)

	return entity, nil
}

// RecordTransition registra a mudança de etapa no instante atual.
// Erros de validação e de concorrência são devolvidos sem nova tentativa.
func (s *Service) RecordTransition(ctx context.Context, entityID string, fromStage, toStage domain.Stage) (domain.StageHistoryRecord, error) {
	record, err := s.ledger.Transition(ctx, entityID, fromStage, toStage, s.now())
	if err != nil {
		return domain.StageHistoryRecord{}, err
	}

	logrus.WithFields(logrus.Fields{
		"entity_id":  entityID,
		"from_stage": fromStage,
		"to_stage":   toStage,
	}).Info("Transição de etapa registrada")
	s.onChange(ctx)

	return record, nil
}

// UpsertDeal grava o contrato da entidade com os valores normalizados.
// O primeiro contrato exige um PROJECT em GANADO; atualizações posteriores não olham a etapa.
// A data de cancelamento só é carimbada na passagem para CHURNED e é preservada depois disso.
func (s *Service) UpsertDeal(ctx context.Context, entityID string, req domain.UpsertDealRequest) (*domain.Deal, error) {
	entity, err := s.store.GetEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	existing, err := s.dealRepo.GetByEntityID(ctx, entityID)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao buscar contrato")
	}
	if existing == nil && (entity.Kind != domain.EntityKindProject || entity.Stage != domain.StageGanado) {
		return nil, errors.Wrapf(domain.ErrDealNotAllowed, "entidade %s é %s em %s", entityID, entity.Kind, entity.Stage)
	}

	if req.Currency == "" {
		req.Currency = string(domain.ReportingCurrency)
	}
	cur, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	status := domain.DealStatusActive
	if req.Status != "" {
		status, err = domain.ParseDealStatus(req.Status)
		if err != nil {
			return nil, err
		}
	}

	startDate, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrInvalidPeriod, "start_date %q", req.StartDate)
	}
	if startDate.IsZero() {
		startDate = utils.StartOfDay(s.now())
		if existing != nil {
			startDate = existing.StartDate
		}
	}

	var churnedAt *time.Time
	if status == domain.DealStatusChurned {
		switch {
		case req.ChurnedAt != nil:
			churnedAt = req.ChurnedAt
		case existing != nil && existing.Status == domain.DealStatusChurned && existing.ChurnedAt != nil:
			churnedAt = existing.ChurnedAt
		default:
			now := s.now()
			churnedAt = &now
		}
	}

	deal := &domain.Deal{
		EntityID:     entityID,
		Currency:     cur,
		MRROriginal:  req.MRROriginal,
		FeeOriginal:  req.FeeOriginal,
		ExchangeRate: req.ExchangeRate,
		Status:       status,
		StartDate:    startDate,
		ChurnedAt:    churnedAt,
	}

	if err := currency.NormalizeDeal(deal); err != nil {
		return nil, err
	}

	if err := s.dealRepo.SaveOrUpdate(ctx, deal); err != nil {
		return nil, errors.Wrap(err, "erro ao salvar contrato")
	}

	logrus.WithFields(logrus.Fields{
		"entity_id": entityID,
		"status":    deal.Status,
		"mrr_usd":   deal.MRRUSD,
	}).Info("Contrato salvo")
	s.onChange(ctx)

	return deal, nil
}

// History retorna o histórico validado da entidade
func (s *Service) History(ctx context.Context, entityID string) ([]domain.StageHistoryRecord, error) {
	return s.ledger.HistoryFor(ctx, entityID)
}

// TimeInStage soma o tempo da entidade na etapa até agora
func (s *Service) TimeInStage(ctx context.Context, entityID string, stage domain.Stage) (time.Duration, error) {
	return s.ledger.TimeInStage(ctx, entityID, stage, s.now())
}
