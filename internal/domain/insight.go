package domain

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Insight é um sinal qualitativo derivado dos agregados
type Insight struct {
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Metric      string   `json:"metric"`
	Value       float64  `json:"value"`
}

// Nomes das métricas expostas às regras de insight
const (
	MetricWinRate           = "win_rate"
	MetricMRRGrowth         = "mrr_growth"
	MetricChurnRate         = "churn_rate"
	MetricGoalRatio         = "goal_ratio"
	MetricCurrentMRR        = "current_mrr"
	MetricWeightedPipeline  = "weighted_pipeline"
	MetricPipelineCoverage  = "pipeline_coverage"
	MetricFirstStageEntries = "first_stage_entries"
	MetricClosedDeals       = "closed_deals"
)

// Metrics associa o nome de uma métrica ao seu valor calculado
type Metrics map[string]float64

// MetricsFrom extrai as métricas avaliadas pelas regras de insight
func MetricsFrom(result *AggregateResult) Metrics {
	coverage := 0.0
	if result.Revenue.CurrentMRR > 0 {
		coverage = result.Funnel.WeightedPipeline / result.Revenue.CurrentMRR
	}

	return Metrics{
		MetricWinRate:           result.Revenue.WinRate,
		MetricMRRGrowth:         result.Revenue.GrowthPercentage,
		MetricChurnRate:         result.Revenue.ChurnRate,
		MetricGoalRatio:         result.Revenue.Goal.Ratio,
		MetricCurrentMRR:        result.Revenue.CurrentMRR,
		MetricWeightedPipeline:  result.Funnel.WeightedPipeline,
		MetricPipelineCoverage:  coverage,
		MetricFirstStageEntries: float64(result.Funnel.StageEntries[StageProspecto]),
		MetricClosedDeals:       float64(result.Revenue.Won + result.Revenue.Lost),
	}
}
