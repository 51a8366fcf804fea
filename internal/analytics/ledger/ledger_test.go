package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) (*Ledger, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return New(store, WithClock(func() time.Time { return base.Add(240 * time.Hour) })), store
}

func openEntity(t *testing.T, l *Ledger, id string, stage domain.Stage) {
	t.Helper()
	_, _, err := l.Open(context.Background(), domain.PipelineEntity{ID: id, Stage: stage, Owner: "ana"}, base)
	require.NoError(t, err)
}

func TestLedger_Open(t *testing.T) {
	l, store := newTestLedger(t)

	entity, record, err := l.Open(context.Background(), domain.PipelineEntity{Stage: domain.StageProspecto}, base)
	require.NoError(t, err)

	assert.NotEmpty(t, entity.ID)
	assert.Equal(t, base, entity.StageEnteredAt)
	assert.Equal(t, base, entity.CreatedAt)
	assert.Nil(t, record.FromStage)
	assert.Equal(t, domain.StageProspecto, record.ToStage)

	history, err := store.ListHistory(context.Background(), entity.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestLedger_Open_InvalidStage(t *testing.T) {
	l, _ := newTestLedger(t)

	_, _, err := l.Open(context.Background(), domain.PipelineEntity{Stage: "CERRADO"}, base)
	assert.ErrorIs(t, err, domain.ErrInvalidStage)
}

func TestLedger_Transition(t *testing.T) {
	ctx := context.Background()

	t.Run("atualiza etapa e anexa exatamente um registro", func(t *testing.T) {
		l, store := newTestLedger(t)
		openEntity(t, l, "L1", domain.StageProspecto)
		at := base.Add(48 * time.Hour)

		record, err := l.Transition(ctx, "L1", domain.StageProspecto, domain.StageContactado, at)
		require.NoError(t, err)

		entity, err := store.GetEntity(ctx, "L1")
		require.NoError(t, err)
		assert.Equal(t, domain.StageContactado, entity.Stage)
		assert.Equal(t, at, entity.StageEnteredAt)

		history, err := store.ListHistory(ctx, "L1")
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, record, history[1])
		assert.Equal(t, domain.StageProspecto, *history[1].FromStage)
	})

	t.Run("etapa de origem desatualizada não grava histórico", func(t *testing.T) {
		l, store := newTestLedger(t)
		openEntity(t, l, "L1", domain.StageProspecto)
		_, err := l.Transition(ctx, "L1", domain.StageProspecto, domain.StageContactado, base.Add(time.Hour))
		require.NoError(t, err)

		_, err = l.Transition(ctx, "L1", domain.StageProspecto, domain.StageReunion, base.Add(2*time.Hour))

		var stale *domain.StaleTransitionError
		require.True(t, errors.As(err, &stale))
		assert.Equal(t, domain.StageProspecto, stale.Expected)
		assert.Equal(t, domain.StageContactado, stale.Actual)

		history, _ := store.ListHistory(ctx, "L1")
		assert.Len(t, history, 2)
	})

	t.Run("etapa de destino desconhecida", func(t *testing.T) {
		l, store := newTestLedger(t)
		openEntity(t, l, "L1", domain.StageProspecto)

		_, err := l.Transition(ctx, "L1", domain.StageProspecto, "CERRADO", base.Add(time.Hour))
		assert.ErrorIs(t, err, domain.ErrInvalidStage)

		history, _ := store.ListHistory(ctx, "L1")
		assert.Len(t, history, 1)
	})

	t.Run("etapa de origem desconhecida é tratada como desatualizada", func(t *testing.T) {
		l, store := newTestLedger(t)
		openEntity(t, l, "L1", domain.StageProspecto)

		_, err := l.Transition(ctx, "L1", "CERRADO", domain.StageContactado, base.Add(time.Hour))

		var stale *domain.StaleTransitionError
		require.True(t, errors.As(err, &stale))
		assert.Equal(t, domain.Stage("CERRADO"), stale.Expected)
		assert.Equal(t, domain.StageProspecto, stale.Actual)
		assert.NotErrorIs(t, err, domain.ErrInvalidStage)

		history, _ := store.ListHistory(ctx, "L1")
		assert.Len(t, history, 1)
	})

	t.Run("permite retroceder e pular para etapa terminal", func(t *testing.T) {
		l, _ := newTestLedger(t)
		openEntity(t, l, "L1", domain.StagePropuesta)

		_, err := l.Transition(ctx, "L1", domain.StagePropuesta, domain.StageContactado, base.Add(time.Hour))
		require.NoError(t, err)
		_, err = l.Transition(ctx, "L1", domain.StageContactado, domain.StagePerdido, base.Add(2*time.Hour))
		require.NoError(t, err)
	})

	t.Run("reabertura a partir de etapa terminal é uma transição comum", func(t *testing.T) {
		l, store := newTestLedger(t)
		openEntity(t, l, "L1", domain.StageNegociacion)
		_, err := l.Transition(ctx, "L1", domain.StageNegociacion, domain.StagePerdido, base.Add(time.Hour))
		require.NoError(t, err)

		record, err := l.Transition(ctx, "L1", domain.StagePerdido, domain.StageNegociacion, base.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, domain.StagePerdido, *record.FromStage)

		entity, _ := store.GetEntity(ctx, "L1")
		assert.True(t, entity.IsOpen())
	})

	t.Run("data zero usa o relógio do ledger", func(t *testing.T) {
		l, _ := newTestLedger(t)
		openEntity(t, l, "L1", domain.StageProspecto)

		record, err := l.Transition(ctx, "L1", domain.StageProspecto, domain.StageContactado, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, base.Add(240*time.Hour), record.ChangedAt)
	})

	t.Run("data anterior à entrada na etapa atual", func(t *testing.T) {
		l, _ := newTestLedger(t)
		openEntity(t, l, "L1", domain.StageProspecto)

		_, err := l.Transition(ctx, "L1", domain.StageProspecto, domain.StageContactado, base.Add(-time.Hour))
		assert.ErrorIs(t, err, domain.ErrOutOfOrderChange)
	})

	t.Run("entidade inexistente", func(t *testing.T) {
		l, _ := newTestLedger(t)

		_, err := l.Transition(ctx, "nope", domain.StageProspecto, domain.StageContactado, base)
		assert.ErrorIs(t, err, domain.ErrEntityNotFound)
	})
}

func TestLedger_Transition_StaleScenario(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t)
	openEntity(t, l, "L1", domain.StageProspecto)
	_, err := l.Transition(ctx, "L1", domain.StageProspecto, domain.StageContactado, base.Add(time.Hour))
	require.NoError(t, err)
	before, _ := store.ListHistory(ctx, "L1")

	_, err = l.Transition(ctx, "L1", domain.StageProspecto, domain.StagePropuesta, base.Add(2*time.Hour))

	assert.ErrorIs(t, err, domain.ErrStaleTransition)
	after, _ := store.ListHistory(ctx, "L1")
	assert.Equal(t, before, after)
}

// interleavedStore executa afterRead uma única vez, logo depois da primeira leitura da entidade
type interleavedStore struct {
	*MemoryStore
	once      sync.Once
	afterRead func()
}

func (s *interleavedStore) GetEntity(ctx context.Context, entityID string) (*domain.PipelineEntity, error) {
	entity, err := s.MemoryStore.GetEntity(ctx, entityID)
	s.once.Do(s.afterRead)
	return entity, err
}

func TestLedger_Transition_RejectsWriterAfterRoundTrip(t *testing.T) {
	ctx := context.Background()
	memory := NewMemoryStore()
	other := New(memory)
	openEntity(t, other, "L1", domain.StageProspecto)

	store := &interleavedStore{MemoryStore: memory}
	store.afterRead = func() {
		_, err := other.Transition(ctx, "L1", domain.StageProspecto, domain.StageContactado, base.Add(2*time.Hour))
		require.NoError(t, err)
		_, err = other.Transition(ctx, "L1", domain.StageContactado, domain.StageProspecto, base.Add(3*time.Hour))
		require.NoError(t, err)
	}
	late := New(store)

	_, err := late.Transition(ctx, "L1", domain.StageProspecto, domain.StageReunion, base.Add(time.Hour))

	assert.ErrorIs(t, err, domain.ErrStaleTransition)

	history, err := other.HistoryFor(ctx, "L1")
	require.NoError(t, err)
	assert.Len(t, history, 3)

	entity, err := memory.GetEntity(ctx, "L1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageProspecto, entity.Stage)
	assert.Equal(t, base.Add(3*time.Hour), entity.StageEnteredAt)
	assert.NoError(t, ValidateHistory(*entity, history))
}

func TestLedger_Transition_ConcurrentWritersOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	openEntity(t, l, "L1", domain.StageProspecto)

	const writers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		stale     int
	)

	targets := []domain.Stage{domain.StageContactado, domain.StageReunion, domain.StagePerdido}
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := l.Transition(ctx, "L1", domain.StageProspecto, targets[i%len(targets)], base.Add(time.Hour))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrStaleTransition):
				stale++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, writers-1, stale)

	history, err := l.HistoryFor(ctx, "L1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestLedger_Transition_DifferentEntitiesInParallel(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	ids := []string{"A", "B", "C", "D", "E"}
	for _, id := range ids {
		openEntity(t, l, id, domain.StageProspecto)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := l.Transition(ctx, id, domain.StageProspecto, domain.StageContactado, base.Add(time.Hour))
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestLedger_HistoryFor(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	openEntity(t, l, "L1", domain.StageProspecto)

	path := []domain.Stage{domain.StageContactado, domain.StageReunion, domain.StageContactado, domain.StagePropuesta, domain.StageGanado}
	from := domain.StageProspecto
	for i, to := range path {
		_, err := l.Transition(ctx, "L1", from, to, base.Add(time.Duration(i+1)*time.Hour))
		require.NoError(t, err)
		from = to
	}

	history, err := l.HistoryFor(ctx, "L1")
	require.NoError(t, err)
	require.Len(t, history, len(path)+1)

	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].ChangedAt.Before(history[i-1].ChangedAt))
		assert.Equal(t, history[i-1].ToStage, *history[i].FromStage)
	}
}

func TestLedger_TimeInStage(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	openEntity(t, l, "L1", domain.StageProspecto)

	_, err := l.Transition(ctx, "L1", domain.StageProspecto, domain.StageContactado, base.Add(24*time.Hour))
	require.NoError(t, err)
	_, err = l.Transition(ctx, "L1", domain.StageContactado, domain.StageReunion, base.Add(72*time.Hour))
	require.NoError(t, err)
	_, err = l.Transition(ctx, "L1", domain.StageReunion, domain.StageContactado, base.Add(96*time.Hour))
	require.NoError(t, err)

	now := base.Add(100 * time.Hour)

	tests := []struct {
		name  string
		stage domain.Stage
		want  time.Duration
	}{
		{name: "etapa encerrada", stage: domain.StageProspecto, want: 24 * time.Hour},
		{name: "etapa atual soma todas as passagens até agora", stage: domain.StageContactado, want: 48*time.Hour + 4*time.Hour},
		{name: "etapa intermediária", stage: domain.StageReunion, want: 24 * time.Hour},
		{name: "etapa nunca visitada", stage: domain.StageGanado, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.TimeInStage(ctx, "L1", tt.stage, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = l.TimeInStage(ctx, "L1", "CERRADO", now)
	assert.ErrorIs(t, err, domain.ErrInvalidStage)
}

func TestValidateHistory(t *testing.T) {
	prospecto := domain.StageProspecto
	contactado := domain.StageContactado

	entity := domain.PipelineEntity{ID: "L1", Stage: domain.StageContactado, StageEnteredAt: base.Add(time.Hour)}
	creation := domain.StageHistoryRecord{ID: "r1", EntityID: "L1", ToStage: domain.StageProspecto, ChangedAt: base}
	move := domain.StageHistoryRecord{ID: "r2", EntityID: "L1", FromStage: &prospecto, ToStage: domain.StageContactado, ChangedAt: base.Add(time.Hour)}

	tests := []struct {
		name    string
		entity  domain.PipelineEntity
		records []domain.StageHistoryRecord
		wantErr bool
	}{
		{name: "histórico consistente", entity: entity, records: []domain.StageHistoryRecord{creation, move}},
		{name: "sem histórico", entity: entity, records: nil, wantErr: true},
		{name: "sem registro de criação", entity: entity, records: []domain.StageHistoryRecord{move}, wantErr: true},
		{
			name:    "etapa atual sem registro correspondente",
			entity:  domain.PipelineEntity{ID: "L1", Stage: domain.StagePropuesta, StageEnteredAt: base.Add(time.Hour)},
			records: []domain.StageHistoryRecord{creation, move},
			wantErr: true,
		},
		{
			name:   "encadeamento quebrado",
			entity: entity,
			records: []domain.StageHistoryRecord{
				creation,
				{ID: "r2", EntityID: "L1", FromStage: &contactado, ToStage: domain.StageContactado, ChangedAt: base.Add(time.Hour)},
			},
			wantErr: true,
		},
		{
			name:    "stage_entered_at divergente",
			entity:  domain.PipelineEntity{ID: "L1", Stage: domain.StageContactado, StageEnteredAt: base.Add(2 * time.Hour)},
			records: []domain.StageHistoryRecord{creation, move},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHistory(tt.entity, tt.records)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrDataInconsistency)
				var inconsistency *domain.DataInconsistencyError
				assert.True(t, errors.As(err, &inconsistency))
				assert.Equal(t, "L1", inconsistency.EntityID)
				return
			}
			assert.NoError(t, err)
		})
	}
}
