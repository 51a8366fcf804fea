// Package trend agrupa eventos datados em séries de calendário de tamanho fixo.
package trend

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

// Mode define como os eventos de um bucket são agregados
type Mode int

const (
	ModeSum Mode = iota
	ModeCount
)

// Event é um valor associado a um instante
type Event struct {
	At    time.Time
	Value float64
}

// BucketStart retorna o início do bucket que contém t.
// Semanas começam na segunda-feira (ISO 8601) e meses no dia 1.
func BucketStart(t time.Time, size domain.BucketSize) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch size {
	case domain.BucketWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case domain.BucketMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

func shift(start time.Time, size domain.BucketSize, n int) time.Time {
	switch size {
	case domain.BucketWeek:
		return start.AddDate(0, 0, 7*n)
	case domain.BucketMonth:
		return start.AddDate(0, n, 0)
	default:
		return start.AddDate(0, 0, n)
	}
}

// Label formata o início do bucket: dia yyyy-mm-dd, semana ISO yyyy-Www, mês mm-yyyy
func Label(start time.Time, size domain.BucketSize) string {
	switch size {
	case domain.BucketWeek:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case domain.BucketMonth:
		return start.Format(domain.PeriodLayout)
	default:
		return start.Format(time.DateOnly)
	}
}

// Bucket gera exatamente count buckets consecutivos, o último contendo anchor.
// Eventos posteriores a anchor ou anteriores ao primeiro bucket são ignorados.
// Buckets sem eventos saem com valor zero.
func Bucket(events []Event, size domain.BucketSize, count int, anchor time.Time, mode Mode) []domain.TrendPoint {
	if count <= 0 {
		return []domain.TrendPoint{}
	}

	last := BucketStart(anchor, size)
	starts := make([]time.Time, count)
	for i := 0; i < count; i++ {
		starts[i] = shift(last, size, i-count+1)
	}

	totals := make([]decimal.Decimal, count)
	for _, ev := range events {
		if ev.At.Before(starts[0]) || ev.At.After(anchor) {
			continue
		}
		// último bucket cujo início não é posterior ao evento
		idx := sort.Search(count, func(i int) bool { return starts[i].After(ev.At) }) - 1
		if idx < 0 {
			continue
		}

		switch mode {
		case ModeCount:
			totals[idx] = totals[idx].Add(decimal.NewFromInt(1))
		default:
			totals[idx] = totals[idx].Add(decimal.NewFromFloat(ev.Value))
		}
	}

	points := make([]domain.TrendPoint, count)
	for i, start := range starts {
		points[i] = domain.TrendPoint{
			Label: Label(start, size),
			Start: start,
			Value: totals[i].Round(2).InexactFloat64(),
		}
	}
	return points
}
