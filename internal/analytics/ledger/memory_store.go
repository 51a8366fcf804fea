package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

// MemoryStore guarda entidades, históricos e contratos em memória.
// Transições são serializadas por entidade; entidades diferentes não competem pelo mesmo lock.
// Também implementa domain.SnapshotReader, o que permite rodar análises sem banco de dados.
type MemoryStore struct {
	mu       sync.RWMutex
	entities map[string]domain.PipelineEntity
	history  map[string][]domain.StageHistoryRecord
	deals    map[string]domain.Deal

	entityLocks sync.Map // entity id -> *sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entities: make(map[string]domain.PipelineEntity),
		history:  make(map[string][]domain.StageHistoryRecord),
		deals:    make(map[string]domain.Deal),
	}
}

func (s *MemoryStore) lockFor(entityID string) *sync.Mutex {
	lock, _ := s.entityLocks.LoadOrStore(entityID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *MemoryStore) GetEntity(_ context.Context, entityID string) (*domain.PipelineEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.entities[entityID]
	if !ok {
		return nil, domain.ErrEntityNotFound
	}
	return &entity, nil
}

func (s *MemoryStore) CreateEntity(_ context.Context, entity domain.PipelineEntity, record domain.StageHistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entities[entity.ID]; exists {
		return domain.ErrEntityAlreadyExist
	}

	s.entities[entity.ID] = entity
	s.history[entity.ID] = []domain.StageHistoryRecord{record}
	return nil
}

func (s *MemoryStore) AppendTransition(_ context.Context, record domain.StageHistoryRecord, expectedEnteredAt time.Time) error {
	lock := s.lockFor(record.EntityID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	entity, ok := s.entities[record.EntityID]
	s.mu.RUnlock()
	if !ok {
		return domain.ErrEntityNotFound
	}

	if record.FromStage == nil || entity.Stage != *record.FromStage || !entity.StageEnteredAt.Equal(expectedEnteredAt) {
		expected := domain.Stage("")
		if record.FromStage != nil {
			expected = *record.FromStage
		}
		return domain.NewStaleTransitionError(record.EntityID, expected, entity.Stage)
	}

	entity.Stage = record.ToStage
	entity.StageEnteredAt = record.ChangedAt

	s.mu.Lock()
	s.entities[record.EntityID] = entity
	s.history[record.EntityID] = append(s.history[record.EntityID], record)
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) ListHistory(_ context.Context, entityID string) ([]domain.StageHistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.history[entityID]
	out := make([]domain.StageHistoryRecord, len(records))
	copy(out, records)
	return out, nil
}

// SaveDeal grava ou substitui o contrato de uma entidade
func (s *MemoryStore) SaveDeal(_ context.Context, deal domain.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[deal.EntityID]; !ok {
		return domain.ErrEntityNotFound
	}
	s.deals[deal.EntityID] = deal
	return nil
}

func (s *MemoryStore) FetchEntities(_ context.Context, filters domain.Filters) ([]domain.PipelineEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entities := make([]domain.PipelineEntity, 0, len(s.entities))
	for _, e := range s.entities {
		if filters.Matches(e) {
			entities = append(entities, e)
		}
	}
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].ID < entities[j].ID
	})
	return entities, nil
}

func (s *MemoryStore) FetchHistory(_ context.Context, entityIDs []string) ([]domain.StageHistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.StageHistoryRecord, 0)
	for _, id := range entityIDs {
		records = append(records, s.history[id]...)
	}
	return records, nil
}

func (s *MemoryStore) FetchDeals(_ context.Context, filters domain.Filters) ([]domain.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deals := make([]domain.Deal, 0, len(s.deals))
	for _, d := range s.deals {
		entity, ok := s.entities[d.EntityID]
		if !ok || !filters.Matches(entity) {
			continue
		}
		deals = append(deals, d)
	}
	sort.Slice(deals, func(i, j int) bool {
		return deals[i].EntityID < deals[j].EntityID
	})
	return deals, nil
}
