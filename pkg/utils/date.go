package utils

import (
	"strings"
	"time"
)

// DateLayout é o formato das datas recebidas pela API e pela CLI
const DateLayout = time.DateOnly

// ParseDate interpreta uma data yyyy-mm-dd em UTC. Vazio retorna a data zero.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

// StartOfDay trunca t para a meia-noite UTC do mesmo dia
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween retorna a diferença entre duas datas em dias fracionários
func DaysBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}
