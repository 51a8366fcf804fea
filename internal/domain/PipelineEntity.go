package domain

import "time"

type EntityKind string

const (
	EntityKindLead    EntityKind = "LEAD"
	EntityKindProject EntityKind = "PROJECT"
)

// PipelineEntity representa um Lead ou Projeto que percorre o funil
type PipelineEntity struct {
	ID                string     `json:"id"`
	Kind              EntityKind `json:"kind"`
	Name              string     `json:"name"`
	Stage             Stage      `json:"stage"`
	StageEnteredAt    time.Time  `json:"stage_entered_at"` // sempre igual ao changed_at do último registro de histórico
	Owner             string     `json:"owner"`
	Channel           string     `json:"channel"`
	Subchannel        string     `json:"subchannel"`
	EstimatedValueUSD float64    `json:"estimated_value_usd"`
	CreatedAt         time.Time  `json:"created_at"`
}

// IsOpen indica se a entidade ainda está em uma etapa não terminal
func (e PipelineEntity) IsOpen() bool {
	return !e.Stage.IsTerminal()
}

// StageHistoryRecord é um registro imutável de mudança de etapa
type StageHistoryRecord struct {
	ID        string    `json:"id"`
	EntityID  string    `json:"entity_id"`
	FromStage *Stage    `json:"from_stage"` // nil no registro de criação
	ToStage   Stage     `json:"to_stage"`
	ChangedAt time.Time `json:"changed_at"`
}

// IsCreation indica se o registro é o primeiro do histórico da entidade
func (r StageHistoryRecord) IsCreation() bool {
	return r.FromStage == nil
}

// CreateEntityRequest contém os dados necessários para abrir uma entidade no funil
type CreateEntityRequest struct {
	Kind           EntityKind `json:"kind"`
	Name           string     `json:"name"`
	Stage          string     `json:"stage"`
	Owner          string     `json:"owner"`
	Channel        string     `json:"channel"`
	Subchannel     string     `json:"subchannel"`
	EstimatedValue float64    `json:"estimated_value"`
	Currency       string     `json:"currency"`
	ExchangeRate   *float64   `json:"exchange_rate"`
}

// TransitionRequest é o corpo da requisição de mudança de etapa
type TransitionRequest struct {
	FromStage string `json:"from_stage"`
	ToStage   string `json:"to_stage"`
}

func StagePtr(s Stage) *Stage {
	return &s
}
