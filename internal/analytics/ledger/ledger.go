// Package ledger é a máquina de estados das etapas do funil e o dono do histórico de transições.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
	"github.com/vfg2006/pipeline-analytics-api/pkg/utils"
)

// Store persiste entidades e históricos.
// AppendTransition deve gravar o registro e atualizar stage/stage_entered_at de forma atômica,
// somente se a entidade ainda estiver em *record.FromStage com o stage_entered_at lido pelo chamador;
// caso contrário retorna *domain.StaleTransitionError. Comparar só a etapa deixaria passar A→B→A.
type Store interface {
	GetEntity(ctx context.Context, entityID string) (*domain.PipelineEntity, error)
	CreateEntity(ctx context.Context, entity domain.PipelineEntity, record domain.StageHistoryRecord) error
	AppendTransition(ctx context.Context, record domain.StageHistoryRecord, expectedEnteredAt time.Time) error
	ListHistory(ctx context.Context, entityID string) ([]domain.StageHistoryRecord, error)
}

type Ledger struct {
	store Store
	now   func() time.Time
}

type Option func(*Ledger)

// WithClock substitui o relógio usado quando a data da transição não é informada
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open registra uma nova entidade no funil junto com o registro de criação
func (l *Ledger) Open(ctx context.Context, entity domain.PipelineEntity, at time.Time) (*domain.PipelineEntity, domain.StageHistoryRecord, error) {
	if !entity.Stage.IsValid() {
		return nil, domain.StageHistoryRecord{}, domain.NewInvalidStageError(string(entity.Stage))
	}

	if at.IsZero() {
		at = l.now()
	}

	if entity.ID == "" {
		id, err := utils.GenerateID()
		if err != nil {
			return nil, domain.StageHistoryRecord{}, fmt.Errorf("erro ao gerar id da entidade: %w", err)
		}
		entity.ID = id
	}

	entity.CreatedAt = at
	entity.StageEnteredAt = at

	record, err := newRecord(entity.ID, nil, entity.Stage, at)
	if err != nil {
		return nil, domain.StageHistoryRecord{}, err
	}

	if err := l.store.CreateEntity(ctx, entity, record); err != nil {
		return nil, domain.StageHistoryRecord{}, err
	}

	logrus.WithFields(logrus.Fields{
		"entity_id": entity.ID,
		"stage":     entity.Stage,
	}).Debug("Entidade aberta no funil")

	return &entity, record, nil
}

// Transition move a entidade de fromStage para toStage.
// Qualquer direção é aceita, inclusive a reabertura a partir de uma etapa terminal;
// a única pré-condição é fromStage ser a etapa atual. Uma fromStage desconhecida nunca é a atual
// e por isso resulta em StaleTransitionError. O ledger nunca tenta novamente.
func (l *Ledger) Transition(ctx context.Context, entityID string, fromStage, toStage domain.Stage, at time.Time) (domain.StageHistoryRecord, error) {
	if !toStage.IsValid() {
		return domain.StageHistoryRecord{}, domain.NewInvalidStageError(string(toStage))
	}

	entity, err := l.store.GetEntity(ctx, entityID)
	if err != nil {
		return domain.StageHistoryRecord{}, err
	}

	if entity.Stage != fromStage {
		return domain.StageHistoryRecord{}, domain.NewStaleTransitionError(entityID, fromStage, entity.Stage)
	}

	if at.IsZero() {
		at = l.now()
	}

	if !at.After(entity.StageEnteredAt) {
		return domain.StageHistoryRecord{}, fmt.Errorf("%w: %s <= %s", domain.ErrOutOfOrderChange,
			at.Format(time.RFC3339Nano), entity.StageEnteredAt.Format(time.RFC3339Nano))
	}

	record, err := newRecord(entityID, domain.StagePtr(fromStage), toStage, at)
	if err != nil {
		return domain.StageHistoryRecord{}, err
	}

	if err := l.store.AppendTransition(ctx, record, entity.StageEnteredAt); err != nil {
		return domain.StageHistoryRecord{}, err
	}

	logrus.WithFields(logrus.Fields{
		"entity_id":  entityID,
		"from_stage": fromStage,
		"to_stage":   toStage,
	}).Debug("Transição de etapa registrada")

	return record, nil
}

// HistoryFor retorna o histórico completo da entidade, validando que ele explica a etapa atual
func (l *Ledger) HistoryFor(ctx context.Context, entityID string) ([]domain.StageHistoryRecord, error) {
	entity, err := l.store.GetEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	records, err := l.store.ListHistory(ctx, entityID)
	if err != nil {
		return nil, err
	}

	if err := ValidateHistory(*entity, records); err != nil {
		return nil, err
	}

	return records, nil
}

// TimeInStage soma o tempo de todas as passagens da entidade pela etapa.
// A passagem atual é contada até now. Etapas nunca visitadas retornam zero.
func (l *Ledger) TimeInStage(ctx context.Context, entityID string, stage domain.Stage, now time.Time) (time.Duration, error) {
	if !stage.IsValid() {
		return 0, domain.NewInvalidStageError(string(stage))
	}

	records, err := l.HistoryFor(ctx, entityID)
	if err != nil {
		return 0, err
	}

	if now.IsZero() {
		now = l.now()
	}

	return DurationInStage(records, stage, now), nil
}

// DurationInStage calcula o tempo na etapa a partir de um histórico já validado
func DurationInStage(records []domain.StageHistoryRecord, stage domain.Stage, now time.Time) time.Duration {
	var total time.Duration
	for i, r := range records {
		if r.ToStage != stage {
			continue
		}

		end := now
		if i+1 < len(records) {
			end = records[i+1].ChangedAt
		}

		if end.After(r.ChangedAt) {
			total += end.Sub(r.ChangedAt)
		}
	}
	return total
}

// ValidateHistory confere o encadeamento do histórico e sua coerência com a etapa atual
func ValidateHistory(entity domain.PipelineEntity, records []domain.StageHistoryRecord) error {
	if len(records) == 0 {
		return domain.NewDataInconsistencyError(entity.ID, "entidade sem registro de criação")
	}

	if !records[0].IsCreation() {
		return domain.NewDataInconsistencyError(entity.ID, "primeiro registro não é de criação")
	}

	for i := 1; i < len(records); i++ {
		prev, curr := records[i-1], records[i]

		if curr.FromStage == nil {
			return domain.NewDataInconsistencyError(entity.ID, fmt.Sprintf("registro %s sem etapa de origem", curr.ID))
		}
		if *curr.FromStage != prev.ToStage {
			return domain.NewDataInconsistencyError(entity.ID,
				fmt.Sprintf("registro %s sai de %s mas a etapa anterior é %s", curr.ID, *curr.FromStage, prev.ToStage))
		}
		if curr.ChangedAt.Before(prev.ChangedAt) {
			return domain.NewDataInconsistencyError(entity.ID, fmt.Sprintf("registro %s fora de ordem", curr.ID))
		}
	}

	last := records[len(records)-1]
	if last.ToStage != entity.Stage {
		return domain.NewDataInconsistencyError(entity.ID,
			fmt.Sprintf("etapa atual %s não corresponde ao último registro (%s)", entity.Stage, last.ToStage))
	}
	if !last.ChangedAt.Equal(entity.StageEnteredAt) {
		return domain.NewDataInconsistencyError(entity.ID, "stage_entered_at diverge do último registro")
	}

	return nil
}

func newRecord(entityID string, from *domain.Stage, to domain.Stage, at time.Time) (domain.StageHistoryRecord, error) {
	id, err := utils.GenerateRecordID()
	if err != nil {
		return domain.StageHistoryRecord{}, fmt.Errorf("erro ao gerar id do registro: %w", err)
	}

	return domain.StageHistoryRecord{
		ID:        id,
		EntityID:  entityID,
		FromStage: from,
		ToStage:   to,
		ChangedAt: at,
	}, nil
}
