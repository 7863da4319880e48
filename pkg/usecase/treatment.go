package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/service/notify"
	"github.com/secmon-lab/themis/pkg/utils/logging"
)

type TreatmentUseCase struct {
	repo     interfaces.Repository
	clock    Clock
	notifier notify.Service
}

func NewTreatmentUseCase(repo interfaces.Repository, clock Clock, notifier notify.Service) *TreatmentUseCase {
	return &TreatmentUseCase{
		repo:     repo,
		clock:    clock,
		notifier: notifier,
	}
}

// CreateTreatmentOptions holds the optional fields for treatment creation
type CreateTreatmentOptions struct {
	Status     types.TreatmentStatus
	DueDate    *time.Time
	Assignee   string
	Cost       *float64
	ControlIDs []types.ControlID
}

// CreateTreatment registers a new treatment for an existing risk. Creating any
// treatment means the organization has begun responding, so a risk still in
// IDENTIFIED or ASSESSED advances to MITIGATING as a side effect.
func (uc *TreatmentUseCase) CreateTreatment(ctx context.Context, riskID model.RiskID, name, description string, treatmentType types.TreatmentType, creatorID string, opts *CreateTreatmentOptions) (*model.Treatment, error) {
	risk, err := uc.repo.Risk().Get(ctx, riskID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, riskID))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, riskID))
	}

	now := uc.clock()

	var options []model.TreatmentOption
	if opts != nil {
		if opts.Status != "" {
			options = append(options, model.WithTreatmentStatus(opts.Status))
		}
		if opts.DueDate != nil {
			options = append(options, model.WithDueDate(*opts.DueDate))
		}
		if opts.Assignee != "" {
			options = append(options, model.WithAssignee(opts.Assignee))
		}
		if opts.Cost != nil {
			options = append(options, model.WithCost(*opts.Cost))
		}
		if len(opts.ControlIDs) > 0 {
			options = append(options, model.WithTreatmentControls(opts.ControlIDs...))
		}
	}

	treatment, err := model.NewTreatment(riskID, name, description, treatmentType, creatorID, now, options...)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Treatment().Put(ctx, treatment); err != nil {
		return nil, goerr.Wrap(err, "failed to save treatment", goerr.V(TreatmentIDKey, treatment.ID()))
	}

	switch risk.Status() {
	case types.RiskStatusIdentified, types.RiskStatusAssessed:
		from := risk.Status()
		if err := risk.UpdateStatus(types.RiskStatusMitigating, creatorID, now); err != nil {
			return nil, err
		}
		if err := uc.repo.Risk().Put(ctx, risk); err != nil {
			return nil, goerr.Wrap(err, "failed to save risk", goerr.V(RiskIDKey, riskID))
		}
		uc.notifyRiskStatus(ctx, risk, from)
	}

	return treatment, nil
}

// GetTreatment retrieves a treatment by ID
func (uc *TreatmentUseCase) GetTreatment(ctx context.Context, id model.TreatmentID) (*model.Treatment, error) {
	return uc.getTreatment(ctx, id)
}

func (uc *TreatmentUseCase) getTreatment(ctx context.Context, id model.TreatmentID) (*model.Treatment, error) {
	treatment, err := uc.repo.Treatment().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrTreatmentNotFound, "treatment not found", goerr.V(TreatmentIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get treatment", goerr.V(TreatmentIDKey, id))
	}
	return treatment, nil
}

func (uc *TreatmentUseCase) mutate(ctx context.Context, id model.TreatmentID, fn func(*model.Treatment) error) (*model.Treatment, error) {
	treatment, err := uc.getTreatment(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(treatment); err != nil {
		return nil, err
	}

	if err := uc.repo.Treatment().Put(ctx, treatment); err != nil {
		return nil, goerr.Wrap(err, "failed to save treatment", goerr.V(TreatmentIDKey, id))
	}
	return treatment, nil
}

// UpdateTreatmentStatus sets the execution status of a treatment and
// propagates the change onto the owning risk:
//
//   - VERIFIED mitigation: when every active treatment of the risk is verified
//     or cancelled and a residual assessment exists, the risk is confirmed at
//     MITIGATING. It deliberately stays there pending explicit closure.
//   - An implemented or verified ACCEPT, TRANSFER, or AVOID treatment moves the
//     risk to the matching terminal status.
//
// The risk is saved only when a propagation rule fired. The two saves are not
// one transaction; RiskUseCase.ReconcileRiskStatus recovers from a crash
// between them.
func (uc *TreatmentUseCase) UpdateTreatmentStatus(ctx context.Context, id model.TreatmentID, status types.TreatmentStatus, actorID string) (*model.Treatment, error) {
	now := uc.clock()
	treatment, err := uc.mutate(ctx, id, func(t *model.Treatment) error {
		return t.UpdateStatus(status, actorID, now)
	})
	if err != nil {
		return nil, err
	}

	if err := uc.propagateToRisk(ctx, treatment, actorID, now); err != nil {
		return nil, err
	}

	return treatment, nil
}

func (uc *TreatmentUseCase) propagateToRisk(ctx context.Context, treatment *model.Treatment, actorID string, now time.Time) error {
	var target types.RiskStatus

	switch treatment.Type() {
	case types.TreatmentTypeMitigate:
		if treatment.Status() != types.TreatmentStatusVerified {
			return nil
		}
		done, err := uc.allTreatmentsSettled(ctx, treatment.RiskID())
		if err != nil {
			return err
		}
		if !done {
			return nil
		}
		target = types.RiskStatusMitigating

	case types.TreatmentTypeAccept:
		if !treatment.Status().IsCompleted() {
			return nil
		}
		target = types.RiskStatusAccepted

	case types.TreatmentTypeTransfer:
		if !treatment.Status().IsCompleted() {
			return nil
		}
		target = types.RiskStatusTransferred

	case types.TreatmentTypeAvoid:
		if !treatment.Status().IsCompleted() {
			return nil
		}
		target = types.RiskStatusAvoided

	default:
		return nil
	}

	risk, err := uc.repo.Risk().Get(ctx, treatment.RiskID())
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, treatment.RiskID()))
		}
		return goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, treatment.RiskID()))
	}

	// The completed-mitigation rule only confirms MITIGATING once a residual
	// assessment is recorded
	if treatment.Type() == types.TreatmentTypeMitigate && risk.ResidualScore() == nil {
		return nil
	}

	from := risk.Status()
	if err := risk.UpdateStatus(target, actorID, now); err != nil {
		return err
	}
	if err := uc.repo.Risk().Put(ctx, risk); err != nil {
		return goerr.Wrap(err, "failed to save risk", goerr.V(RiskIDKey, risk.ID()))
	}

	if from != target {
		uc.notifyRiskStatus(ctx, risk, from)
	}
	return nil
}

// allTreatmentsSettled reports whether every active treatment of the risk is
// VERIFIED or CANCELLED
func (uc *TreatmentUseCase) allTreatmentsSettled(ctx context.Context, riskID model.RiskID) (bool, error) {
	treatments, err := uc.repo.Treatment().ListByRisk(ctx, riskID, true)
	if err != nil {
		return false, goerr.Wrap(err, "failed to list treatments", goerr.V(RiskIDKey, riskID))
	}

	for _, t := range treatments {
		switch t.Status() {
		case types.TreatmentStatusVerified, types.TreatmentStatusCancelled:
		default:
			return false, nil
		}
	}
	return true, nil
}

func (uc *TreatmentUseCase) notifyRiskStatus(ctx context.Context, risk *model.Risk, from types.RiskStatus) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.RiskStatusChanged(ctx, risk, from); err != nil {
		// Notification failures never fail the operation
		logging.From(ctx).Warn("Failed to notify risk status change",
			"risk_id", risk.ID(), "error", err.Error())
	}
}

// UpdateTreatmentDetails replaces name and description
func (uc *TreatmentUseCase) UpdateTreatmentDetails(ctx context.Context, id model.TreatmentID, name, description string, actorID string) (*model.Treatment, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(t *model.Treatment) error {
		return t.UpdateDetails(name, description, actorID, now)
	})
}

// SetTreatmentDueDate sets or clears the target completion date
func (uc *TreatmentUseCase) SetTreatmentDueDate(ctx context.Context, id model.TreatmentID, dueDate *time.Time, actorID string) (*model.Treatment, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(t *model.Treatment) error {
		t.SetDueDate(dueDate, actorID, now)
		return nil
	})
}

// SetTreatmentAssignee sets the person responsible for execution
func (uc *TreatmentUseCase) SetTreatmentAssignee(ctx context.Context, id model.TreatmentID, assignee string, actorID string) (*model.Treatment, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(t *model.Treatment) error {
		t.SetAssignee(assignee, actorID, now)
		return nil
	})
}

// SetTreatmentCost sets the estimated cost. Negative costs fail.
func (uc *TreatmentUseCase) SetTreatmentCost(ctx context.Context, id model.TreatmentID, cost float64, actorID string) (*model.Treatment, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(t *model.Treatment) error {
		return t.SetCost(cost, actorID, now)
	})
}

// LinkTreatmentControl links a control to a treatment
func (uc *TreatmentUseCase) LinkTreatmentControl(ctx context.Context, id model.TreatmentID, controlID types.ControlID, actorID string) (*model.Treatment, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(t *model.Treatment) error {
		return t.LinkControl(controlID, actorID, now)
	})
}

// UnlinkTreatmentControl removes a control link from a treatment
func (uc *TreatmentUseCase) UnlinkTreatmentControl(ctx context.Context, id model.TreatmentID, controlID types.ControlID, actorID string) (*model.Treatment, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(t *model.Treatment) error {
		return t.UnlinkControl(controlID, actorID, now)
	})
}

// DeactivateTreatment retires a treatment
func (uc *TreatmentUseCase) DeactivateTreatment(ctx context.Context, id model.TreatmentID, actorID string) (*model.Treatment, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(t *model.Treatment) error {
		t.Deactivate(actorID, now)
		return nil
	})
}

// ListTreatmentsByRisk retrieves the treatments referencing a risk
func (uc *TreatmentUseCase) ListTreatmentsByRisk(ctx context.Context, riskID model.RiskID, activeOnly bool) ([]*model.Treatment, error) {
	treatments, err := uc.repo.Treatment().ListByRisk(ctx, riskID, activeOnly)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list treatments", goerr.V(RiskIDKey, riskID))
	}
	return treatments, nil
}

// ListTreatments retrieves treatments matching the filter
func (uc *TreatmentUseCase) ListTreatments(ctx context.Context, filter model.TreatmentFilter) ([]*model.Treatment, error) {
	treatments, err := uc.repo.Treatment().List(ctx, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list treatments")
	}
	return treatments, nil
}

// ListOverdueTreatments retrieves the active treatments past their due date
func (uc *TreatmentUseCase) ListOverdueTreatments(ctx context.Context) ([]*model.Treatment, error) {
	now := uc.clock()
	return uc.ListTreatments(ctx, model.TreatmentFilter{
		OverdueAt:  &now,
		ActiveOnly: true,
	})
}
