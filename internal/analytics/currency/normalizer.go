// Package currency converte valores de contratos para a moeda de relatório.
package currency

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

// Normalize converte amount para a moeda de relatório.
// Na moeda de relatório a taxa é ignorada; nas demais, amount é dividido pela taxa (unidades por dólar).
// O arredondamento é meio para cima com duas casas, aplicado uma única vez sobre o valor exato.
func Normalize(amount float64, currency domain.Currency, rate *float64) (float64, error) {
	if !currency.IsValid() {
		return 0, domain.ErrInvalidCurrency
	}

	value := decimal.NewFromFloat(amount)
	if currency.IsReporting() {
		return value.Round(2).InexactFloat64(), nil
	}

	if rate == nil || *rate <= 0 {
		return 0, domain.NewMissingExchangeRateError(currency, rate)
	}

	return value.Div(decimal.NewFromFloat(*rate)).Round(2).InexactFloat64(), nil
}

// NormalizeDeal preenche MRRUSD e FeeUSD a partir dos valores originais.
// Em caso de erro o contrato não é alterado.
func NormalizeDeal(deal *domain.Deal) error {
	mrr, err := Normalize(deal.MRROriginal, deal.Currency, deal.ExchangeRate)
	if err != nil {
		return err
	}

	fee, err := Normalize(deal.FeeOriginal, deal.Currency, deal.ExchangeRate)
	if err != nil {
		return err
	}

	if deal.Currency.IsReporting() {
		deal.ExchangeRate = nil
	}
	deal.MRRUSD = mrr
	deal.FeeUSD = fee

	return nil
}

// Format exibe um valor com o símbolo e as casas decimais da moeda
func Format(amount float64, currency domain.Currency) string {
	c := money.GetCurrency(string(currency))
	if c == nil {
		c = money.GetCurrency(string(domain.ReportingCurrency))
	}

	cents := decimal.NewFromFloat(amount).Shift(int32(c.Fraction)).Round(0).IntPart()
	return money.New(cents, c.Code).Display()
}
