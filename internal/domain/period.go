package domain

import (
	"fmt"
	"time"
)

// PeriodLayout é o formato mm-yyyy usado para identificar períodos mensais
const PeriodLayout = "01-2006"

// Period é um intervalo semiaberto [Start, End)
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewPeriod(start, end time.Time) (Period, error) {
	if !start.Before(end) {
		return Period{}, fmt.Errorf("%w: start %s must be before end %s", ErrInvalidPeriod, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return Period{Start: start, End: end}, nil
}

// MonthPeriod retorna o mês de calendário que contém t
func MonthPeriod(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Period{Start: start, End: start.AddDate(0, 1, 0)}
}

// ParseMonthPeriod interpreta um período no formato mm-yyyy
func ParseMonthPeriod(label string) (Period, error) {
	t, err := time.Parse(PeriodLayout, label)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, label)
	}
	return MonthPeriod(t), nil
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Previous retorna o período de mesma duração imediatamente anterior
func (p Period) Previous() Period {
	return Period{Start: p.Start.Add(-p.End.Sub(p.Start)), End: p.Start}
}

// Last retorna o último instante contido no período
func (p Period) Last() time.Time {
	return p.End.Add(-time.Nanosecond)
}

// Label retorna o mês de início no formato mm-yyyy
func (p Period) Label() string {
	return p.Start.Format(PeriodLayout)
}

// Filters restringe as agregações por dimensões categóricas; campos vazios aceitam qualquer valor
type Filters struct {
	Owner      string `json:"owner,omitempty"`
	Channel    string `json:"channel,omitempty"`
	Subchannel string `json:"subchannel,omitempty"`
}

func (f Filters) IsEmpty() bool {
	return f.Owner == "" && f.Channel == "" && f.Subchannel == ""
}

func (f Filters) Matches(e PipelineEntity) bool {
	if f.Owner != "" && f.Owner != e.Owner {
		return false
	}
	if f.Channel != "" && f.Channel != e.Channel {
		return false
	}
	if f.Subchannel != "" && f.Subchannel != e.Subchannel {
		return false
	}
	return true
}

// Key retorna uma representação estável dos filtros, usada em chaves de cache e snapshots
func (f Filters) Key() string {
	return fmt.Sprintf("owner=%s|channel=%s|subchannel=%s", f.Owner, f.Channel, f.Subchannel)
}
