package funnel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

// StageProbabilities é a chance de fechamento atribuída a cada etapa aberta.
// É uma entrada de configuração; etapas ausentes valem zero.
type StageProbabilities map[domain.Stage]float64

// DefaultStageProbabilities é usada quando nenhuma tabela é configurada
func DefaultStageProbabilities() StageProbabilities {
	return StageProbabilities{
		domain.StageProspecto:   0.05,
		domain.StageContactado:  0.10,
		domain.StageReunion:     0.25,
		domain.StagePropuesta:   0.50,
		domain.StageNegociacion: 0.75,
	}
}

// ParseStageProbabilities lê uma tabela no formato "PROSPECTO:0.05,CONTACTADO:0.1"
func ParseStageProbabilities(raw string) (StageProbabilities, error) {
	probs := StageProbabilities{}
	if strings.TrimSpace(raw) == "" {
		return probs, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("probabilidade de etapa mal formatada: %q", pair)
		}

		stage, err := domain.ParseStage(parts[0])
		if err != nil {
			return nil, err
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("probabilidade inválida para %s: %w", stage, err)
		}
		probs[stage] = value
	}

	return probs, probs.Validate()
}

// Validate exige valores em [0, 1] e não decrescentes na ordem das etapas abertas
func (p StageProbabilities) Validate() error {
	for stage, value := range p {
		if stage.IsTerminal() {
			return fmt.Errorf("etapa terminal %s não recebe probabilidade", stage)
		}
		if value < 0 || value > 1 {
			return fmt.Errorf("probabilidade de %s fora do intervalo [0, 1]: %v", stage, value)
		}
	}

	previous := 0.0
	for _, stage := range domain.OpenStages() {
		value := p[stage]
		if value < previous {
			return fmt.Errorf("probabilidade de %s (%v) menor que a da etapa anterior (%v)", stage, value, previous)
		}
		previous = value
	}

	return nil
}
