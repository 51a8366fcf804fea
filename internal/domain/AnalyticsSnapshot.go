package domain

import (
	"time"
)

// AnalyticsSnapshotEntry representa uma análise mensal armazenada no banco
type AnalyticsSnapshotEntry struct {
	ID         int64            `json:"id"`
	Period     string           `json:"period"` // Período no formato mm-yyyy
	FiltersKey string           `json:"filters_key"`
	Filters    Filters          `json:"filters"`
	Result     *AggregateResult `json:"result"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
