package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

type StatsUseCase struct {
	repo  interfaces.Repository
	clock Clock
}

func NewStatsUseCase(repo interfaces.Repository, clock Clock) *StatsUseCase {
	return &StatsUseCase{
		repo:  repo,
		clock: clock,
	}
}

// RegistryOverview summarizes the active risk register
type RegistryOverview struct {
	TotalRisks        int64
	RisksBySeverity   map[types.Severity]int64
	RisksByStatus     map[types.RiskStatus]int64
	RisksDueForReview int64
	OverdueTreatments int64
}

// Overview counts the active register by severity band and status, plus the
// risks due for review and overdue treatments. Counting happens in the
// gateway, not here.
func (uc *StatsUseCase) Overview(ctx context.Context) (*RegistryOverview, error) {
	now := uc.clock()

	total, err := uc.repo.Risk().Count(ctx, model.RiskFilter{ActiveOnly: true})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count risks")
	}

	overview := &RegistryOverview{
		TotalRisks:      total,
		RisksBySeverity: make(map[types.Severity]int64, len(types.AllSeverities())),
		RisksByStatus:   make(map[types.RiskStatus]int64, len(types.AllRiskStatuses())),
	}

	for _, severity := range types.AllSeverities() {
		count, err := uc.repo.Risk().Count(ctx, model.RiskFilter{
			Severity:   severity,
			ActiveOnly: true,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to count risks by severity",
				goerr.V("severity", severity))
		}
		overview.RisksBySeverity[severity] = count
	}

	for _, status := range types.AllRiskStatuses() {
		count, err := uc.repo.Risk().Count(ctx, model.RiskFilter{
			Status:     status,
			ActiveOnly: true,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to count risks by status",
				goerr.V("status", status))
		}
		overview.RisksByStatus[status] = count
	}

	reviewDue, err := uc.repo.Risk().Count(ctx, model.RiskFilter{
		ReviewDueAt: &now,
		ActiveOnly:  true,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count risks due for review")
	}
	overview.RisksDueForReview = reviewDue

	overdue, err := uc.repo.Treatment().Count(ctx, model.TreatmentFilter{
		OverdueAt:  &now,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count overdue treatments")
	}
	overview.OverdueTreatments = overdue

	return overview, nil
}
