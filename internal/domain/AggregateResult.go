package domain

import (
	"fmt"
	"strings"
	"time"
)

// BucketSize define a granularidade das séries temporais
type BucketSize string

const (
	BucketDay   BucketSize = "day"
	BucketWeek  BucketSize = "week"
	BucketMonth BucketSize = "month"
)

func ParseBucketSize(value string) (BucketSize, error) {
	size := BucketSize(strings.ToLower(strings.TrimSpace(value)))
	switch size {
	case BucketDay, BucketWeek, BucketMonth:
		return size, nil
	}
	return "", fmt.Errorf("%w: bucket size %q", ErrInvalidPeriod, value)
}

// MaxBucketCount limita o tamanho de cada série de tendência
const MaxBucketCount = 366

// ValidateBucketCount aceita de 1 a MaxBucketCount buckets
func ValidateBucketCount(count int) error {
	if count <= 0 || count > MaxBucketCount {
		return fmt.Errorf("%w: bucket count %d outside 1..%d", ErrInvalidPeriod, count, MaxBucketCount)
	}
	return nil
}

// TrendPoint é um ponto de uma série temporal agrupada por calendário
type TrendPoint struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	Value float64   `json:"value"`
}

// StageConversion resume a conversão de uma coorte entre duas etapas
type StageConversion struct {
	From         Stage   `json:"from"`
	To           Stage   `json:"to"`
	CohortSize   int     `json:"cohort_size"`
	Converted    int     `json:"converted"`
	Rate         float64 `json:"rate"`          // percentual, 1 casa decimal
	VelocityDays float64 `json:"velocity_days"` // média em dias, 1 casa decimal
}

type FunnelResult struct {
	StageEntries     map[Stage]int     `json:"stage_entries"`
	Conversions      []StageConversion `json:"conversions"`
	WeightedPipeline float64           `json:"weighted_pipeline"`
	OpenEntities     int               `json:"open_entities"`
}

// GoalProgress traz o percentual limitado a 100 para exibição e a razão real sem limite
type GoalProgress struct {
	Goal    float64 `json:"goal"`
	Display float64 `json:"display"`
	Ratio   float64 `json:"ratio"`
}

type RevenueResult struct {
	CurrentMRR       float64      `json:"current_mrr"`
	ARR              float64      `json:"arr"`
	MRRAtStart       float64      `json:"mrr_at_start"`
	MRRAtEnd         float64      `json:"mrr_at_end"`
	GrowthPercentage float64      `json:"growth_percentage"`
	ChurnedMRR       float64      `json:"churned_mrr"`
	ChurnRate        float64      `json:"churn_rate"`
	ContractFees     float64      `json:"contract_fees"`
	Won              int          `json:"won"`
	Lost             int          `json:"lost"`
	WinRate          float64      `json:"win_rate"`
	Goal             GoalProgress `json:"goal"`
}

type TrendResult struct {
	BucketSize  BucketSize   `json:"bucket_size"`
	BucketCount int          `json:"bucket_count"`
	NewEntities []TrendPoint `json:"new_entities"`
	WonDeals    []TrendPoint `json:"won_deals"`
	NewMRR      []TrendPoint `json:"new_mrr"`
}

// AggregateResult é o resultado completo de uma análise; criado a cada cálculo e nunca alterado
type AggregateResult struct {
	Period      Period        `json:"period"`
	Filters     Filters       `json:"filters"`
	GeneratedAt time.Time     `json:"generated_at"`
	Funnel      FunnelResult  `json:"funnel"`
	Revenue     RevenueResult `json:"revenue"`
	Trends      TrendResult   `json:"trends"`
	Insights    []Insight     `json:"insights"`
	Excluded    []string      `json:"excluded,omitempty"` // entidades com histórico inconsistente
}
