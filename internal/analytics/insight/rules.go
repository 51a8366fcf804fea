// Package insight traduz os agregados em sinais qualitativos a partir de regras declarativas.
package insight

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pipeline-analytics-api/internal/analytics/currency"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

type Operator string

const (
	OpGreaterThan    Operator = "gt"
	OpGreaterOrEqual Operator = "gte"
	OpLessThan       Operator = "lt"
	OpLessOrEqual    Operator = "lte"
	OpEqual          Operator = "eq"
)

func (o Operator) apply(value, threshold float64) bool {
	switch o {
	case OpGreaterThan:
		return value > threshold
	case OpGreaterOrEqual:
		return value >= threshold
	case OpLessThan:
		return value < threshold
	case OpLessOrEqual:
		return value <= threshold
	case OpEqual:
		return value == threshold
	}
	return false
}

// ValueFormat define como {value} e {threshold} aparecem na descrição
type ValueFormat string

const (
	FormatPercent  ValueFormat = "percent"
	FormatCurrency ValueFormat = "currency"
	FormatNumber   ValueFormat = "number"
	FormatRatio    ValueFormat = "ratio"
)

func (f ValueFormat) render(v float64) string {
	switch f {
	case FormatPercent:
		return fmt.Sprintf("%.1f%%", v)
	case FormatCurrency:
		return currency.Format(v, domain.ReportingCurrency)
	case FormatRatio:
		return fmt.Sprintf("%.1fx", v)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// Condition é um predicado sobre uma métrica
type Condition struct {
	Metric    string   `json:"metric"`
	Operator  Operator `json:"operator"`
	Threshold float64  `json:"threshold"`
}

// Rule gera um insight quando a condição principal e todas as condições em Requires são verdadeiras.
// A métrica da condição principal é o valor exibido no insight.
type Rule struct {
	Name string `json:"name"`
	Condition
	Requires    []Condition     `json:"requires,omitempty"`
	Severity    domain.Severity `json:"severity"`
	Title       string          `json:"title"`
	Description string          `json:"description"` // aceita {value} e {threshold}
	Format      ValueFormat     `json:"format"`
}

// Thresholds são os limites configuráveis das regras padrão
type Thresholds struct {
	WinRateFloor          float64
	ChurnRateCeiling      float64
	PipelineCoverageFloor float64
}

// DefaultRules retorna o conjunto de regras padrão com os limites informados
func DefaultRules(t Thresholds) []Rule {
	return []Rule{
		{
			Name:        "win-rate-low",
			Condition:   Condition{Metric: domain.MetricWinRate, Operator: OpLessThan, Threshold: t.WinRateFloor},
			Requires:    []Condition{{Metric: domain.MetricClosedDeals, Operator: OpGreaterThan, Threshold: 0}},
			Severity:    domain.SeverityWarning,
			Title:       "Taxa de ganho abaixo do esperado",
			Description: "A taxa de ganho do período foi {value}, abaixo do mínimo de {threshold}.",
			Format:      FormatPercent,
		},
		{
			Name:        "mrr-growth-positive",
			Condition:   Condition{Metric: domain.MetricMRRGrowth, Operator: OpGreaterThan, Threshold: 0},
			Severity:    domain.SeveritySuccess,
			Title:       "MRR em crescimento",
			Description: "O MRR cresceu {value} no período.",
			Format:      FormatPercent,
		},
		{
			Name:        "mrr-growth-negative",
			Condition:   Condition{Metric: domain.MetricMRRGrowth, Operator: OpLessThan, Threshold: 0},
			Severity:    domain.SeverityWarning,
			Title:       "MRR em queda",
			Description: "O MRR variou {value} no período.",
			Format:      FormatPercent,
		},
		{
			Name:        "churn-high",
			Condition:   Condition{Metric: domain.MetricChurnRate, Operator: OpGreaterThan, Threshold: t.ChurnRateCeiling},
			Severity:    domain.SeverityWarning,
			Title:       "Cancelamentos acima do limite",
			Description: "O churn do período foi {value}, acima do limite de {threshold}.",
			Format:      FormatPercent,
		},
		{
			Name:        "goal-reached",
			Condition:   Condition{Metric: domain.MetricGoalRatio, Operator: OpGreaterOrEqual, Threshold: 100},
			Severity:    domain.SeveritySuccess,
			Title:       "Meta de MRR atingida",
			Description: "O MRR atual corresponde a {value} da meta.",
			Format:      FormatPercent,
		},
		{
			Name:        "no-new-prospects",
			Condition:   Condition{Metric: domain.MetricFirstStageEntries, Operator: OpEqual, Threshold: 0},
			Severity:    domain.SeverityInfo,
			Title:       "Nenhum novo prospecto",
			Description: "Nenhuma entidade entrou no funil durante o período.",
			Format:      FormatNumber,
		},
		{
			Name:        "pipeline-coverage-low",
			Condition:   Condition{Metric: domain.MetricPipelineCoverage, Operator: OpLessThan, Threshold: t.PipelineCoverageFloor},
			Requires:    []Condition{{Metric: domain.MetricCurrentMRR, Operator: OpGreaterThan, Threshold: 0}},
			Severity:    domain.SeverityInfo,
			Title:       "Pipeline ponderado baixo",
			Description: "O pipeline ponderado cobre {value} do MRR atual; o mínimo recomendado é {threshold}.",
			Format:      FormatRatio,
		},
	}
}

// Evaluate aplica as regras em ordem e retorna os insights disparados.
// Regras que citam métricas desconhecidas são ignoradas.
func Evaluate(metrics domain.Metrics, rules []Rule) []domain.Insight {
	insights := make([]domain.Insight, 0)

	for _, rule := range rules {
		value, ok := metrics[rule.Metric]
		if !ok {
			logrus.WithFields(logrus.Fields{
				"rule":   rule.Name,
				"metric": rule.Metric,
			}).Warn("Regra de insight referencia métrica desconhecida")
			continue
		}

		if !rule.Operator.apply(value, rule.Threshold) || !requirementsHold(metrics, rule) {
			continue
		}

		description := strings.NewReplacer(
			"{value}", rule.Format.render(value),
			"{threshold}", rule.Format.render(rule.Threshold),
		).Replace(rule.Description)

		insights = append(insights, domain.Insight{
			Severity:    rule.Severity,
			Title:       rule.Title,
			Description: description,
			Metric:      rule.Metric,
			Value:       value,
		})
	}

	return insights
}

func requirementsHold(metrics domain.Metrics, rule Rule) bool {
	for _, cond := range rule.Requires {
		value, ok := metrics[cond.Metric]
		if !ok || !cond.Operator.apply(value, cond.Threshold) {
			return false
		}
	}
	return true
}
