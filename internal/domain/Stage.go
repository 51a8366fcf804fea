package domain

import "strings"

// Stage representa uma etapa do funil de vendas
type Stage string

const (
	StageProspecto   Stage = "PROSPECTO"
	StageContactado  Stage = "CONTACTADO"
	StageReunion     Stage = "REUNION"
	StagePropuesta   Stage = "PROPUESTA"
	StageNegociacion Stage = "NEGOCIACION"
	StageGanado      Stage = "GANADO"
	StagePerdido     Stage = "PERDIDO"
)

// Stages lista todas as etapas na ordem de exibição do funil
var Stages = []Stage{
	StageProspecto,
	StageContactado,
	StageReunion,
	StagePropuesta,
	StageNegociacion,
	StageGanado,
	StagePerdido,
}

var stageOrder = func() map[Stage]int {
	order := make(map[Stage]int, len(Stages))
	for i, s := range Stages {
		order[s] = i
	}
	return order
}()

// NormalizeStage padroniza caixa e espaços sem validar a etapa
func NormalizeStage(value string) Stage {
	return Stage(strings.ToUpper(strings.TrimSpace(value)))
}

// ParseStage converte uma string para Stage, rejeitando valores desconhecidos
func ParseStage(value string) (Stage, error) {
	stage := NormalizeStage(value)
	if !stage.IsValid() {
		return "", NewInvalidStageError(value)
	}
	return stage, nil
}

func (s Stage) IsValid() bool {
	_, ok := stageOrder[s]
	return ok
}

// Order retorna a posição da etapa no funil, -1 para etapas desconhecidas
func (s Stage) Order() int {
	order, ok := stageOrder[s]
	if !ok {
		return -1
	}
	return order
}

// IsTerminal indica se a etapa representa um negócio fechado (ganho ou perdido)
func (s Stage) IsTerminal() bool {
	return s == StageGanado || s == StagePerdido
}

// IsFurtherAlong compara a posição de duas etapas no funil
func (s Stage) IsFurtherAlong(other Stage) bool {
	return s.Order() > other.Order()
}

// OpenStages retorna as etapas não terminais, em ordem
func OpenStages() []Stage {
	open := make([]Stage, 0, len(Stages))
	for _, s := range Stages {
		if !s.IsTerminal() {
			open = append(open, s)
		}
	}
	return open
}

func (s Stage) String() string {
	return string(s)
}
