package domain

import (
	"errors"
	"fmt"
)

// Erros base do motor de análise do funil
var (
	ErrInvalidStage        = errors.New("invalid stage")
	ErrStaleTransition     = errors.New("stale transition")
	ErrMissingExchangeRate = errors.New("missing exchange rate")
	ErrDataInconsistency   = errors.New("data inconsistency")

	ErrEntityNotFound     = errors.New("pipeline entity not found")
	ErrEntityAlreadyExist = errors.New("pipeline entity already exists")
	ErrInvalidCurrency    = errors.New("invalid currency")
	ErrInvalidDealStatus  = errors.New("invalid deal status")
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrOutOfOrderChange   = errors.New("stage change is not after the current stage entry")
	ErrInvalidEntityKind  = errors.New("invalid entity kind")
	ErrSnapshotNotFound   = errors.New("analytics snapshot not found")
	ErrDealNotAllowed     = errors.New("deal requires a project in a won stage")
)

// InvalidStageError indica um valor de etapa não reconhecido
type InvalidStageError struct {
	Value string
}

func NewInvalidStageError(value string) *InvalidStageError {
	return &InvalidStageError{Value: value}
}

func (e *InvalidStageError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidStage.Error(), e.Value)
}

func (e *InvalidStageError) Unwrap() error {
	return ErrInvalidStage
}

// StaleTransitionError indica que a etapa informada não corresponde à etapa atual da entidade
type StaleTransitionError struct {
	EntityID string
	Expected Stage // etapa informada pelo chamador
	Actual   Stage // etapa registrada no momento da tentativa
}

func NewStaleTransitionError(entityID string, expected, actual Stage) *StaleTransitionError {
	return &StaleTransitionError{EntityID: entityID, Expected: expected, Actual: actual}
}

func (e *StaleTransitionError) Error() string {
	return fmt.Sprintf("%s: entity %s is in stage %s, not %s", ErrStaleTransition.Error(), e.EntityID, e.Actual, e.Expected)
}

func (e *StaleTransitionError) Unwrap() error {
	return ErrStaleTransition
}

// MissingExchangeRateError indica valor em moeda estrangeira sem taxa de câmbio positiva
type MissingExchangeRateError struct {
	Currency Currency
	Rate     *float64
}

func NewMissingExchangeRateError(currency Currency, rate *float64) *MissingExchangeRateError {
	return &MissingExchangeRateError{Currency: currency, Rate: rate}
}

func (e *MissingExchangeRateError) Error() string {
	if e.Rate == nil {
		return fmt.Sprintf("%s: no rate for %s", ErrMissingExchangeRate.Error(), e.Currency)
	}
	return fmt.Sprintf("%s: rate %v for %s must be positive", ErrMissingExchangeRate.Error(), *e.Rate, e.Currency)
}

func (e *MissingExchangeRateError) Unwrap() error {
	return ErrMissingExchangeRate
}

// DataInconsistencyError indica um histórico que não explica a etapa atual da entidade
type DataInconsistencyError struct {
	EntityID string
	Details  string
}

func NewDataInconsistencyError(entityID, details string) *DataInconsistencyError {
	return &DataInconsistencyError{EntityID: entityID, Details: details}
}

func (e *DataInconsistencyError) Error() string {
	return fmt.Sprintf("%s: entity %s: %s", ErrDataInconsistency.Error(), e.EntityID, e.Details)
}

func (e *DataInconsistencyError) Unwrap() error {
	return ErrDataInconsistency
}
