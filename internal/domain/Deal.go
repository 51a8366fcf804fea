package domain

import (
	"fmt"
	"strings"
	"time"
)

type DealStatus string

const (
	DealStatusActive  DealStatus = "ACTIVE"
	DealStatusOnHold  DealStatus = "ON_HOLD"
	DealStatusChurned DealStatus = "CHURNED"
)

func ParseDealStatus(value string) (DealStatus, error) {
	status := DealStatus(strings.ToUpper(strings.TrimSpace(value)))
	switch status {
	case DealStatusActive, DealStatusOnHold, DealStatusChurned:
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDealStatus, value)
}

// Deal é o contrato recorrente de um Projeto ganho.
// MRRUSD e FeeUSD são derivados pela normalização de moeda e nunca informados pelo chamador.
type Deal struct {
	EntityID     string     `json:"entity_id"`
	Currency     Currency   `json:"currency"`
	MRROriginal  float64    `json:"mrr_original"`
	FeeOriginal  float64    `json:"fee_original"`
	ExchangeRate *float64   `json:"exchange_rate"`
	MRRUSD       float64    `json:"mrr_usd"`
	FeeUSD       float64    `json:"fee_usd"`
	Status       DealStatus `json:"status"`
	StartDate    time.Time  `json:"start_date"`
	ChurnedAt    *time.Time `json:"churned_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UpsertDealRequest contém os valores originais de um contrato
type UpsertDealRequest struct {
	Currency     string     `json:"currency"`
	MRROriginal  float64    `json:"mrr_original"`
	FeeOriginal  float64    `json:"fee_original"`
	ExchangeRate *float64   `json:"exchange_rate"`
	Status       string     `json:"status"`
	StartDate    string     `json:"start_date"` // yyyy-mm-dd
	ChurnedAt    *time.Time `json:"churned_at"`
}
