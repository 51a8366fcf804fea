package domain

import (
	"context"
	"sort"
)

// SnapshotReader é a fonte de dados somente leitura consumida pelo motor de análise
type SnapshotReader interface {
	FetchEntities(ctx context.Context, filters Filters) ([]PipelineEntity, error)
	FetchHistory(ctx context.Context, entityIDs []string) ([]StageHistoryRecord, error)
	FetchDeals(ctx context.Context, filters Filters) ([]Deal, error)
}

// Snapshot é uma visão imutável de entidades, históricos e contratos.
// As funções de agregação apenas leem um Snapshot e podem rodar em paralelo sobre ele.
type Snapshot struct {
	Entities []PipelineEntity
	History  map[string][]StageHistoryRecord // por entity id, ordenado por changed_at
	Deals    []Deal

	entityIndex map[string]int
}

func NewSnapshot(entities []PipelineEntity, history []StageHistoryRecord, deals []Deal) *Snapshot {
	byEntity := make(map[string][]StageHistoryRecord, len(entities))
	for _, r := range history {
		byEntity[r.EntityID] = append(byEntity[r.EntityID], r)
	}
	for _, records := range byEntity {
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].ChangedAt.Before(records[j].ChangedAt)
		})
	}

	index := make(map[string]int, len(entities))
	for i, e := range entities {
		index[e.ID] = i
	}

	return &Snapshot{
		Entities:    entities,
		History:     byEntity,
		Deals:       deals,
		entityIndex: index,
	}
}

func (s *Snapshot) Entity(id string) (PipelineEntity, bool) {
	i, ok := s.entityIndex[id]
	if !ok {
		return PipelineEntity{}, false
	}
	return s.Entities[i], true
}

// MatchingEntities retorna as entidades que atendem aos filtros
func (s *Snapshot) MatchingEntities(filters Filters) []PipelineEntity {
	matching := make([]PipelineEntity, 0, len(s.Entities))
	for _, e := range s.Entities {
		if filters.Matches(e) {
			matching = append(matching, e)
		}
	}
	return matching
}

// DealMatches verifica os filtros pela entidade dona do contrato.
// Sem filtros todo contrato é aceito; com filtros, contratos sem entidade conhecida são descartados.
func (s *Snapshot) DealMatches(d Deal, filters Filters) bool {
	if filters.IsEmpty() {
		return true
	}
	e, ok := s.Entity(d.EntityID)
	return ok && filters.Matches(e)
}

// Without retorna uma cópia do snapshot sem as entidades informadas e seus contratos
func (s *Snapshot) Without(ids []string) *Snapshot {
	if len(ids) == 0 {
		return s
	}

	skip := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		skip[id] = struct{}{}
	}

	entities := make([]PipelineEntity, 0, len(s.Entities))
	history := make([]StageHistoryRecord, 0)
	for _, e := range s.Entities {
		if _, ok := skip[e.ID]; ok {
			continue
		}
		entities = append(entities, e)
		history = append(history, s.History[e.ID]...)
	}

	deals := make([]Deal, 0, len(s.Deals))
	for _, d := range s.Deals {
		if _, ok := skip[d.EntityID]; !ok {
			deals = append(deals, d)
		}
	}

	return NewSnapshot(entities, history, deals)
}
