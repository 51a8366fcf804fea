package currency

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

func ratePtr(r float64) *float64 {
	return &r
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency domain.Currency
		rate     *float64
		want     float64
		wantErr  error
	}{
		{
			name:     "moeda de relatório ignora a taxa",
			amount:   1234.567,
			currency: domain.CurrencyUSD,
			rate:     ratePtr(-1),
			want:     1234.57,
		},
		{
			name:     "moeda de relatório sem taxa",
			amount:   10.005,
			currency: domain.CurrencyUSD,
			want:     10.01,
		},
		{
			name:     "COP convertido pela taxa",
			amount:   4_200_000,
			currency: domain.CurrencyCOP,
			rate:     ratePtr(4200),
			want:     1000.00,
		},
		{
			name:     "EUR com taxa menor que um",
			amount:   100,
			currency: domain.CurrencyEUR,
			rate:     ratePtr(0.8),
			want:     125,
		},
		{
			name:     "arredondamento meio para cima aplicado uma vez",
			amount:   1,
			currency: domain.CurrencyMXN,
			rate:     ratePtr(8),
			want:     0.13,
		},
		{
			name:     "moeda estrangeira sem taxa",
			amount:   100,
			currency: domain.CurrencyBRL,
			wantErr:  domain.ErrMissingExchangeRate,
		},
		{
			name:     "taxa zero",
			amount:   100,
			currency: domain.CurrencyCOP,
			rate:     ratePtr(0),
			wantErr:  domain.ErrMissingExchangeRate,
		},
		{
			name:     "taxa negativa",
			amount:   100,
			currency: domain.CurrencyCOP,
			rate:     ratePtr(-4200),
			wantErr:  domain.ErrMissingExchangeRate,
		},
		{
			name:     "moeda não suportada",
			amount:   100,
			currency: domain.Currency("ARS"),
			rate:     ratePtr(900),
			wantErr:  domain.ErrInvalidCurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.amount, tt.currency, tt.rate)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Zero(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_MissingRateErrorCarriesCurrency(t *testing.T) {
	_, err := Normalize(100, domain.CurrencyCOP, nil)

	var rateErr *domain.MissingExchangeRateError
	require.True(t, errors.As(err, &rateErr))
	assert.Equal(t, domain.CurrencyCOP, rateErr.Currency)
	assert.Nil(t, rateErr.Rate)
}

func TestNormalize_RoundTrip(t *testing.T) {
	cases := []struct {
		amount float64
		rate   float64
	}{
		{amount: 4_200_000, rate: 4200},
		{amount: 123.45, rate: 0.5},
		{amount: 999.99, rate: 1},
		{amount: 17_350.10, rate: 2.5},
	}

	for _, c := range cases {
		usd, err := Normalize(c.amount, domain.CurrencyCOP, ratePtr(c.rate))
		require.NoError(t, err)

		back, err := Normalize(usd*c.rate, domain.CurrencyUSD, nil)
		require.NoError(t, err)
		assert.InDelta(t, c.amount, back, 0.01)
	}
}

func TestNormalizeDeal(t *testing.T) {
	t.Run("preenche valores derivados", func(t *testing.T) {
		deal := &domain.Deal{
			EntityID:     "P1",
			Currency:     domain.CurrencyCOP,
			MRROriginal:  4_200_000,
			FeeOriginal:  2_100_000,
			ExchangeRate: ratePtr(4200),
		}

		require.NoError(t, NormalizeDeal(deal))
		assert.Equal(t, 1000.00, deal.MRRUSD)
		assert.Equal(t, 500.00, deal.FeeUSD)
	})

	t.Run("descarta taxa na moeda de relatório", func(t *testing.T) {
		deal := &domain.Deal{Currency: domain.CurrencyUSD, MRROriginal: 500, ExchangeRate: ratePtr(3)}

		require.NoError(t, NormalizeDeal(deal))
		assert.Nil(t, deal.ExchangeRate)
		assert.Equal(t, 500.0, deal.MRRUSD)
	})

	t.Run("erro não altera o contrato", func(t *testing.T) {
		deal := &domain.Deal{Currency: domain.CurrencyEUR, MRROriginal: 10, MRRUSD: 7}

		err := NormalizeDeal(deal)
		assert.ErrorIs(t, err, domain.ErrMissingExchangeRate)
		assert.Equal(t, 7.0, deal.MRRUSD)
	})
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$1,500.00", Format(1500, domain.CurrencyUSD))
	assert.Equal(t, "$0.13", Format(0.125, domain.CurrencyUSD))
}
