package domain

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
)

// Currency é o código ISO 4217 de uma moeda aceita nos contratos
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyCOP Currency = "COP"
	CurrencyMXN Currency = "MXN"
	CurrencyEUR Currency = "EUR"
	CurrencyBRL Currency = "BRL"
)

// ReportingCurrency é a moeda em que todos os agregados são expressos
const ReportingCurrency = CurrencyUSD

var supportedCurrencies = map[Currency]struct{}{
	CurrencyUSD: {},
	CurrencyCOP: {},
	CurrencyMXN: {},
	CurrencyEUR: {},
	CurrencyBRL: {},
}

func ParseCurrency(value string) (Currency, error) {
	currency := Currency(strings.ToUpper(strings.TrimSpace(value)))
	if !currency.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, value)
	}
	return currency, nil
}

// IsValid exige que a moeda seja suportada e conhecida pela tabela ISO do go-money
func (c Currency) IsValid() bool {
	if _, ok := supportedCurrencies[c]; !ok {
		return false
	}
	return money.GetCurrency(string(c)) != nil
}

func (c Currency) IsReporting() bool {
	return c == ReportingCurrency
}

func (c Currency) String() string {
	return string(c)
}
