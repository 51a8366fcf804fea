// Package funnel calcula métricas de fluxo entre etapas sobre um snapshot imutável.
package funnel

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/iter"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
	"github.com/vfg2006/pipeline-analytics-api/pkg/utils"
)

// StageEntries conta, por etapa, as entidades com ao menos uma entrada na etapa dentro do período.
// Todas as etapas estão presentes no resultado.
func StageEntries(snap *domain.Snapshot, period domain.Period, filters domain.Filters) map[domain.Stage]int {
	entries := make(map[domain.Stage]int, len(domain.Stages))
	for _, s := range domain.Stages {
		entries[s] = 0
	}

	for _, e := range snap.MatchingEntities(filters) {
		seen := make(map[domain.Stage]bool)
		for _, r := range snap.History[e.ID] {
			if seen[r.ToStage] || !period.Contains(r.ChangedAt) {
				continue
			}
			seen[r.ToStage] = true
			entries[r.ToStage]++
		}
	}

	return entries
}

type cohortMember struct {
	enteredAt   time.Time
	converted   bool
	convertedAt time.Time
}

// cohort agrupa as entidades pela primeira entrada em from dentro do período.
// Um membro converte quando algum registro posterior entra em to; só o primeiro conta.
func cohort(snap *domain.Snapshot, from, to domain.Stage, period domain.Period, filters domain.Filters) []cohortMember {
	members := make([]cohortMember, 0)

	for _, e := range snap.MatchingEntities(filters) {
		records := snap.History[e.ID]

		entry := -1
		for i, r := range records {
			if r.ToStage == from && period.Contains(r.ChangedAt) {
				entry = i
				break
			}
		}
		if entry < 0 {
			continue
		}

		member := cohortMember{enteredAt: records[entry].ChangedAt}
		for _, r := range records[entry+1:] {
			if r.ToStage == to {
				member.converted = true
				member.convertedAt = r.ChangedAt
				break
			}
		}
		members = append(members, member)
	}

	return members
}

// Convert calcula tamanho da coorte, conversão e velocidade de from para to
func Convert(snap *domain.Snapshot, from, to domain.Stage, period domain.Period, filters domain.Filters) domain.StageConversion {
	members := cohort(snap, from, to, period, filters)

	conversion := domain.StageConversion{
		From:       from,
		To:         to,
		CohortSize: len(members),
	}

	totalDays := decimal.Zero
	for _, m := range members {
		if !m.converted {
			continue
		}
		conversion.Converted++
		totalDays = totalDays.Add(decimal.NewFromFloat(utils.DaysBetween(m.enteredAt, m.convertedAt)))
	}

	conversion.Rate = clampPercentage(utils.Percentage(float64(conversion.Converted), float64(conversion.CohortSize)))
	if conversion.Converted > 0 {
		conversion.VelocityDays = totalDays.Div(decimal.NewFromInt(int64(conversion.Converted))).Round(1).InexactFloat64()
	}

	return conversion
}

// ConversionRate é o percentual da coorte de from que chegou a to, com uma casa decimal
func ConversionRate(snap *domain.Snapshot, from, to domain.Stage, period domain.Period, filters domain.Filters) float64 {
	return Convert(snap, from, to, period, filters).Rate
}

// Velocity é a média de dias entre a entrada em from e a primeira entrada posterior em to,
// considerando apenas os membros da coorte que completaram a transição
func Velocity(snap *domain.Snapshot, from, to domain.Stage, period domain.Period, filters domain.Filters) float64 {
	return Convert(snap, from, to, period, filters).VelocityDays
}

type stagePair struct {
	from domain.Stage
	to   domain.Stage
}

// pairs retorna as etapas abertas consecutivas e cada etapa aberta até GANADO
func pairs() []stagePair {
	open := domain.OpenStages()
	out := make([]stagePair, 0, 2*len(open))
	for i := 0; i+1 < len(open); i++ {
		out = append(out, stagePair{from: open[i], to: open[i+1]})
	}
	for _, s := range open {
		out = append(out, stagePair{from: s, to: domain.StageGanado})
	}
	return out
}

// Conversions calcula todos os pares de etapas em paralelo, um por goroutine
func Conversions(snap *domain.Snapshot, period domain.Period, filters domain.Filters) []domain.StageConversion {
	return iter.Map(pairs(), func(p *stagePair) domain.StageConversion {
		return Convert(snap, p.from, p.to, period, filters)
	})
}

// WeightedPipeline soma valor estimado × probabilidade da etapa das entidades abertas
func WeightedPipeline(snap *domain.Snapshot, filters domain.Filters, probs StageProbabilities) float64 {
	total := decimal.Zero
	for _, e := range snap.MatchingEntities(filters) {
		if !e.IsOpen() {
			continue
		}
		weighted := decimal.NewFromFloat(e.EstimatedValueUSD).Mul(decimal.NewFromFloat(probs[e.Stage]))
		total = total.Add(weighted)
	}
	return total.Round(2).InexactFloat64()
}

// Compute monta o resultado completo do funil
func Compute(snap *domain.Snapshot, period domain.Period, filters domain.Filters, probs StageProbabilities) domain.FunnelResult {
	open := 0
	for _, e := range snap.MatchingEntities(filters) {
		if e.IsOpen() {
			open++
		}
	}

	return domain.FunnelResult{
		StageEntries:     StageEntries(snap, period, filters),
		Conversions:      Conversions(snap, period, filters),
		WeightedPipeline: WeightedPipeline(snap, filters, probs),
		OpenEntities:     open,
	}
}

func clampPercentage(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
