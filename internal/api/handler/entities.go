package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
	"github.com/vfg2006/pipeline-analytics-api/internal/usecases/pipeline"
	"github.com/vfg2006/pipeline-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/pipeline-analytics-api/pkg/log"
)

// TimeInStageResponse é a resposta do tempo acumulado em uma etapa
type TimeInStageResponse struct {
	EntityID string       `json:"entity_id"`
	Stage    domain.Stage `json:"stage"`
	Seconds  float64      `json:"seconds"`
	Duration string       `json:"duration"`
}

func entityID(r *http.Request) string {
	return httprouter.ParamsFromContext(r.Context()).ByName("id")
}

// CreateEntity abre uma entidade no funil
func CreateEntity(service pipeline.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var req domain.CreateEntityRequest
		if err := decodeJSON(w, r, &req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		entity, err := service.CreateEntity(r.Context(), req)
		if err != nil {
			logger.WithError(err).Warn("entities: erro ao criar entidade")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, http.StatusCreated, entity)
	})
}

// RecordTransition registra a mudança de etapa informando a etapa de origem esperada
func RecordTransition(service pipeline.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context()).WithField("entity_id", entityID(r))

		var req domain.TransitionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}
		if req.FromStage == "" || req.ToStage == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "from_stage e to_stage são obrigatórios", nil)
			return
		}

		// origem desconhecida nunca é a etapa atual e cai em etapa desatualizada
		from := domain.NormalizeStage(req.FromStage)
		to, err := domain.ParseStage(req.ToStage)
		if err != nil {
			apiErrors.WriteDomainError(w, err)
			return
		}

		record, err := service.RecordTransition(r.Context(), entityID(r), from, to)
		if err != nil {
			logger.WithError(err).Warn("entities: transição rejeitada")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, http.StatusCreated, record)
	})
}

// GetEntityHistory retorna o histórico de etapas da entidade
func GetEntityHistory(service pipeline.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		history, err := service.History(r.Context(), entityID(r))
		if err != nil {
			log.ForContext(r.Context()).WithError(err).WithField("entity_id", entityID(r)).Warn("entities: erro ao buscar histórico")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, http.StatusOK, history)
	})
}

// GetTimeInStage retorna quanto tempo a entidade passou na etapa informada em ?stage=
func GetTimeInStage(service pipeline.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("stage")
		if raw == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "É necessário informar a etapa", nil)
			return
		}

		stage, err := domain.ParseStage(raw)
		if err != nil {
			apiErrors.WriteDomainError(w, err)
			return
		}

		elapsed, err := service.TimeInStage(r.Context(), entityID(r), stage)
		if err != nil {
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, http.StatusOK, TimeInStageResponse{
			EntityID: entityID(r),
			Stage:    stage,
			Seconds:  elapsed.Seconds(),
			Duration: elapsed.String(),
		})
	})
}

// UpsertDeal cria ou atualiza o contrato da entidade
func UpsertDeal(service pipeline.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req domain.UpsertDealRequest
		if err := decodeJSON(w, r, &req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		deal, err := service.UpsertDeal(r.Context(), entityID(r), req)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).WithField("entity_id", entityID(r)).Warn("entities: erro ao salvar contrato")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, http.StatusOK, deal)
	})
}
