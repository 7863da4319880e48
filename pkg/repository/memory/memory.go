package memory

import (
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
)

// Memory is an in-memory Repository for tests and local runs
type Memory struct {
	risk      *riskRepository
	treatment *treatmentRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		risk:      newRiskRepository(),
		treatment: newTreatmentRepository(),
	}
}

func (m *Memory) Risk() interfaces.RiskRepository {
	return m.risk
}

func (m *Memory) Treatment() interfaces.TreatmentRepository {
	return m.treatment
}

func (m *Memory) Close() error {
	return nil
}
