package utils

import "github.com/shopspring/decimal"

// Round arredonda meio para longe de zero na quantidade de casas informada,
// a partir da representação decimal exata do valor
func Round(f float64, places int32) float64 {
	if f == 0 {
		return 0
	}

	return decimal.NewFromFloat(f).Round(places).InexactFloat64()
}

func RoundWithTwoDecimalPlace(f float64) float64 {
	return Round(f, 2)
}

func RoundWithOneDecimalPlace(f float64) float64 {
	return Round(f, 1)
}

// Percentage retorna part/total*100 com uma casa decimal, ou 0 quando total é zero
func Percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}

	return decimal.NewFromFloat(part).
		Div(decimal.NewFromFloat(total)).
		Mul(decimal.NewFromInt(100)).
		Round(1).
		InexactFloat64()
}
