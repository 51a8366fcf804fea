// Package revenue calcula receita recorrente e metas a partir dos valores já normalizados dos contratos.
// Nenhuma conversão de moeda acontece aqui.
package revenue

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
	"github.com/vfg2006/pipeline-analytics-api/pkg/utils"
)

func sumDeals(snap *domain.Snapshot, filters domain.Filters, value func(domain.Deal) float64, keep func(domain.Deal) bool) float64 {
	total := decimal.Zero
	for _, d := range snap.Deals {
		if !snap.DealMatches(d, filters) || !keep(d) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(value(d)))
	}
	return total.Round(2).InexactFloat64()
}

func mrr(d domain.Deal) float64 { return d.MRRUSD }

func fee(d domain.Deal) float64 { return d.FeeUSD }

// CurrentMRR soma o MRR dos contratos ativos
func CurrentMRR(snap *domain.Snapshot, filters domain.Filters) float64 {
	return sumDeals(snap, filters, mrr, func(d domain.Deal) bool {
		return d.Status == domain.DealStatusActive
	})
}

// ARR anualiza o MRR atual sem composição
func ARR(snap *domain.Snapshot, filters domain.Filters) float64 {
	return decimal.NewFromFloat(CurrentMRR(snap, filters)).Mul(decimal.NewFromInt(12)).Round(2).InexactFloat64()
}

// MRRAt soma o MRR em vigor no instante t: contratos iniciados até t e não cancelados até t.
// Contratos em espera não contam; cancelados sem data de cancelamento também não.
func MRRAt(snap *domain.Snapshot, filters domain.Filters, t time.Time) float64 {
	return sumDeals(snap, filters, mrr, func(d domain.Deal) bool {
		if d.StartDate.After(t) {
			return false
		}
		switch d.Status {
		case domain.DealStatusActive:
			return true
		case domain.DealStatusChurned:
			return d.ChurnedAt != nil && d.ChurnedAt.After(t)
		default:
			return false
		}
	})
}

// ChurnedMRR soma o MRR dos contratos cancelados dentro do período
func ChurnedMRR(snap *domain.Snapshot, period domain.Period, filters domain.Filters) float64 {
	return sumDeals(snap, filters, mrr, func(d domain.Deal) bool {
		return d.Status == domain.DealStatusChurned && d.ChurnedAt != nil && period.Contains(*d.ChurnedAt)
	})
}

// ChurnRate é o MRR cancelado no período sobre o MRR em vigor no início dele
func ChurnRate(snap *domain.Snapshot, period domain.Period, filters domain.Filters) float64 {
	return utils.Percentage(ChurnedMRR(snap, period, filters), MRRAt(snap, filters, period.Start))
}

// ContractFees soma as taxas de implantação dos contratos iniciados no período
func ContractFees(snap *domain.Snapshot, period domain.Period, filters domain.Filters) float64 {
	return sumDeals(snap, filters, fee, func(d domain.Deal) bool {
		return period.Contains(d.StartDate)
	})
}

// GrowthPercentage retorna a variação percentual; sem base anterior o crescimento é zero
func GrowthPercentage(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return utils.Percentage(current-previous, previous)
}

// GoalProgress retorna o progresso limitado a 100 para exibição junto com a razão real
func GoalProgress(current, goal float64) domain.GoalProgress {
	if goal <= 0 {
		return domain.GoalProgress{Goal: goal}
	}

	ratio := utils.Percentage(current, goal)
	display := ratio
	if display > 100 {
		display = 100
	}

	return domain.GoalProgress{Goal: goal, Display: display, Ratio: ratio}
}

// ClosedCounts conta as entidades que entraram em GANADO e em PERDIDO dentro do período
func ClosedCounts(snap *domain.Snapshot, period domain.Period, filters domain.Filters) (won, lost int) {
	for _, e := range snap.MatchingEntities(filters) {
		var countedWon, countedLost bool
		for _, r := range snap.History[e.ID] {
			if !period.Contains(r.ChangedAt) {
				continue
			}
			switch {
			case r.ToStage == domain.StageGanado && !countedWon:
				countedWon = true
				won++
			case r.ToStage == domain.StagePerdido && !countedLost:
				countedLost = true
				lost++
			}
		}
	}
	return won, lost
}

// WinRate é ganhos / (ganhos + perdidos) no período, zero sem negócios fechados
func WinRate(snap *domain.Snapshot, period domain.Period, filters domain.Filters) float64 {
	won, lost := ClosedCounts(snap, period, filters)
	return utils.Percentage(float64(won), float64(won+lost))
}

// Compute monta o resultado de receita do período
func Compute(snap *domain.Snapshot, period domain.Period, filters domain.Filters, mrrGoal float64) domain.RevenueResult {
	current := CurrentMRR(snap, filters)
	atStart := MRRAt(snap, filters, period.Start)
	atEnd := MRRAt(snap, filters, period.Last())
	won, lost := ClosedCounts(snap, period, filters)

	return domain.RevenueResult{
		CurrentMRR:       current,
		ARR:              ARR(snap, filters),
		MRRAtStart:       atStart,
		MRRAtEnd:         atEnd,
		GrowthPercentage: GrowthPercentage(atEnd, atStart),
		ChurnedMRR:       ChurnedMRR(snap, period, filters),
		ChurnRate:        ChurnRate(snap, period, filters),
		ContractFees:     ContractFees(snap, period, filters),
		Won:              won,
		Lost:             lost,
		WinRate:          utils.Percentage(float64(won), float64(won+lost)),
		Goal:             GoalProgress(current, mrrGoal),
	}
}
