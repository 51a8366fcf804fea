package apiErrors

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Códigos de erro da API
const (
	// Erros de autenticação
	ErrInvalidToken          = "AUTH_006" // Token inválido
	ErrExpiredToken          = "AUTH_007" // Token expirado
	ErrInsufficientPrivilege = "AUTH_008" // Privilégios insuficientes

	// Erros de validação
	ErrInvalidRequest      = "VAL_001" // Requisição inválida
	ErrMissingRequiredData = "VAL_002" // Dados obrigatórios ausentes
	ErrInvalidFormat       = "VAL_003" // Formato de dados inválido
	ErrInvalidStage        = "VAL_004" // Etapa desconhecida
	ErrInvalidPeriod       = "VAL_005" // Período inválido

	// Erros do funil
	ErrStaleTransition     = "PIP_001" // Etapa de origem desatualizada
	ErrMissingExchangeRate = "PIP_002" // Câmbio ausente para moeda estrangeira
	ErrDataInconsistency   = "PIP_003" // Histórico inconsistente
	ErrNotFound            = "PIP_004" // Recurso não encontrado
	ErrAlreadyExists       = "PIP_005" // Recurso já existe
	ErrDealNotAllowed      = "PIP_006" // Contrato para entidade que não é projeto ganho

	// Erros do servidor
	ErrInternalServer    = "SRV_001" // Erro interno do servidor
	ErrDatabaseOperation = "SRV_002" // Erro de operação de banco de dados
)

// Mapeamento de códigos de erro para status HTTP
var httpStatusMap = map[string]int{
	ErrInvalidToken:          http.StatusUnauthorized,
	ErrExpiredToken:          http.StatusUnauthorized,
	ErrInsufficientPrivilege: http.StatusForbidden,
	ErrInvalidRequest:        http.StatusBadRequest,
	ErrMissingRequiredData:   http.StatusBadRequest,
	ErrInvalidFormat:         http.StatusBadRequest,
	ErrInvalidStage:          http.StatusBadRequest,
	ErrInvalidPeriod:         http.StatusBadRequest,
	ErrStaleTransition:       http.StatusConflict,
	ErrMissingExchangeRate:   http.StatusUnprocessableEntity,
	ErrDataInconsistency:     http.StatusInternalServerError,
	ErrNotFound:              http.StatusNotFound,
	ErrAlreadyExists:         http.StatusConflict,
	ErrDealNotAllowed:        http.StatusUnprocessableEntity,
	ErrInternalServer:        http.StatusInternalServerError,
	ErrDatabaseOperation:     http.StatusInternalServerError,
}

// APIError representa um erro de API padronizado
type APIError struct {
	Code    string `json:"code"`              // Código de erro para o cliente
	Message string `json:"message,omitempty"` // Mensagem descritiva (opcional)
	Details any    `json:"details,omitempty"` // Detalhes adicionais (opcional)
}

// StatusFor retorna o status HTTP de um código
func StatusFor(code string) int {
	if status, exists := httpStatusMap[code]; exists {
		return status
	}
	return http.StatusInternalServerError
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	apiErr := APIError{
		Code:    code,
		Message: message,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(code))
	json.NewEncoder(w).Encode(apiErr)
}

// CodeFor traduz um erro de domínio para o código da API
func CodeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidStage):
		return ErrInvalidStage
	case errors.Is(err, domain.ErrInvalidPeriod):
		return ErrInvalidPeriod
	case errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidDealStatus),
		errors.Is(err, domain.ErrInvalidEntityKind),
		errors.Is(err, domain.ErrOutOfOrderChange):
		return ErrInvalidRequest
	case errors.Is(err, domain.ErrStaleTransition):
		return ErrStaleTransition
	case errors.Is(err, domain.ErrMissingExchangeRate):
		return ErrMissingExchangeRate
	case errors.Is(err, domain.ErrDataInconsistency):
		return ErrDataInconsistency
	case errors.Is(err, domain.ErrEntityNotFound),
		errors.Is(err, domain.ErrSnapshotNotFound):
		return ErrNotFound
	case errors.Is(err, domain.ErrEntityAlreadyExist):
		return ErrAlreadyExists
	case errors.Is(err, domain.ErrDealNotAllowed):
		return ErrDealNotAllowed
	default:
		return ErrInternalServer
	}
}

// WriteDomainError escreve err com o código correspondente.
// Erros internos não expõem a mensagem original.
func WriteDomainError(w http.ResponseWriter, err error) {
	code := CodeFor(err)
	if code == ErrInternalServer {
		WriteError(w, code, "Erro interno do servidor", nil)
		return
	}

	var details any
	var stale *domain.StaleTransitionError
	if errors.As(err, &stale) {
		details = map[string]string{
			"entity_id":     stale.EntityID,
			"expected":      string(stale.Expected),
			"current_stage": string(stale.Actual),
		}
	}

	WriteError(w, code, err.Error(), details)
}
