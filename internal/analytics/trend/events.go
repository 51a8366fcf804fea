package trend

import (
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

// CreationEvents retorna um evento por entidade criada
func CreationEvents(snap *domain.Snapshot, filters domain.Filters) []Event {
	events := make([]Event, 0)
	for _, e := range snap.MatchingEntities(filters) {
		records := snap.History[e.ID]
		if len(records) == 0 {
			continue
		}
		events = append(events, Event{At: records[0].ChangedAt, Value: 1})
	}
	return events
}

// StageEntryEvents retorna um evento para cada entrada na etapa
func StageEntryEvents(snap *domain.Snapshot, stage domain.Stage, filters domain.Filters) []Event {
	events := make([]Event, 0)
	for _, e := range snap.MatchingEntities(filters) {
		for _, r := range snap.History[e.ID] {
			if r.ToStage == stage {
				events = append(events, Event{At: r.ChangedAt, Value: e.EstimatedValueUSD})
			}
		}
	}
	return events
}

// DealStartEvents retorna o MRR normalizado de cada contrato na data de início
func DealStartEvents(snap *domain.Snapshot, filters domain.Filters) []Event {
	events := make([]Event, 0)
	for _, d := range snap.Deals {
		if !snap.DealMatches(d, filters) {
			continue
		}
		events = append(events, Event{At: d.StartDate, Value: d.MRRUSD})
	}
	return events
}
