package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

var thresholds = Thresholds{WinRateFloor: 25, ChurnRateCeiling: 5, PipelineCoverageFloor: 3}

func titles(insights []domain.Insight) []string {
	out := make([]string, 0, len(insights))
	for _, i := range insights {
		out = append(out, i.Title)
	}
	return out
}

func TestEvaluate_DefaultRules(t *testing.T) {
	tests := []struct {
		name    string
		metrics domain.Metrics
		want    []string
	}{
		{
			name: "período saudável",
			metrics: domain.Metrics{
				domain.MetricWinRate:           60,
				domain.MetricClosedDeals:       5,
				domain.MetricMRRGrowth:         12.5,
				domain.MetricChurnRate:         1,
				domain.MetricGoalRatio:         110,
				domain.MetricFirstStageEntries: 8,
				domain.MetricPipelineCoverage:  4,
				domain.MetricCurrentMRR:        10000,
			},
			want: []string{"MRR em crescimento", "Meta de MRR atingida"},
		},
		{
			name: "período com alertas",
			metrics: domain.Metrics{
				domain.MetricWinRate:           10,
				domain.MetricClosedDeals:       10,
				domain.MetricMRRGrowth:         -3,
				domain.MetricChurnRate:         9,
				domain.MetricGoalRatio:         40,
				domain.MetricFirstStageEntries: 0,
				domain.MetricPipelineCoverage:  1.2,
				domain.MetricCurrentMRR:        10000,
			},
			want: []string{
				"Taxa de ganho abaixo do esperado",
				"MRR em queda",
				"Cancelamentos acima do limite",
				"Nenhum novo prospecto",
				"Pipeline ponderado baixo",
			},
		},
		{
			name: "sem dados não dispara alertas dependentes",
			metrics: domain.Metrics{
				domain.MetricWinRate:           0,
				domain.MetricClosedDeals:       0,
				domain.MetricMRRGrowth:         0,
				domain.MetricChurnRate:         0,
				domain.MetricGoalRatio:         0,
				domain.MetricFirstStageEntries: 0,
				domain.MetricPipelineCoverage:  0,
				domain.MetricCurrentMRR:        0,
			},
			want: []string{"Nenhum novo prospecto"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.metrics, DefaultRules(thresholds))
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestEvaluate_DescriptionTemplate(t *testing.T) {
	rules := []Rule{
		{
			Name:        "mrr-high",
			Condition:   Condition{Metric: domain.MetricCurrentMRR, Operator: OpGreaterOrEqual, Threshold: 1000},
			Severity:    domain.SeveritySuccess,
			Title:       "MRR alto",
			Description: "MRR de {value} (mínimo {threshold})",
			Format:      FormatCurrency,
		},
	}

	got := Evaluate(domain.Metrics{domain.MetricCurrentMRR: 2500}, rules)

	require.Len(t, got, 1)
	assert.Equal(t, "MRR de $2,500.00 (mínimo $1,000.00)", got[0].Description)
	assert.Equal(t, domain.SeveritySuccess, got[0].Severity)
	assert.Equal(t, 2500.0, got[0].Value)
}

func TestEvaluate_UnknownMetricIsSkipped(t *testing.T) {
	rules := []Rule{
		{Name: "unknown", Condition: Condition{Metric: "nps", Operator: OpGreaterThan, Threshold: 0}, Title: "NPS"},
		{Name: "known", Condition: Condition{Metric: domain.MetricWinRate, Operator: OpGreaterThan, Threshold: 0}, Title: "Win"},
	}

	got := Evaluate(domain.Metrics{domain.MetricWinRate: 10}, rules)

	assert.Equal(t, []string{"Win"}, titles(got))
}

func TestEvaluate_NoRules(t *testing.T) {
	got := Evaluate(domain.Metrics{domain.MetricWinRate: 10}, nil)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}
