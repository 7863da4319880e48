package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/service/notify"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// reconcileConcurrency bounds the parallel risk loads in ReconcileAll
const reconcileConcurrency = 8

type RiskUseCase struct {
	repo     interfaces.Repository
	clock    Clock
	notifier notify.Service
}

func NewRiskUseCase(repo interfaces.Repository, clock Clock, notifier notify.Service) *RiskUseCase {
	return &RiskUseCase{
		repo:     repo,
		clock:    clock,
		notifier: notifier,
	}
}

// CreateRiskOptions holds the optional fields for risk creation
type CreateRiskOptions struct {
	Status             types.RiskStatus
	ReviewPeriodMonths int
	Tags               []string
	ControlIDs         []types.ControlID
	AssetIDs           []types.AssetID
}

// CreateRisk registers a new risk with its inherent assessment. When a review
// period is given, the whole operation fails if the cadence is invalid.
func (uc *RiskUseCase) CreateRisk(ctx context.Context, name, description string, category types.RiskCategory, impact types.Impact, likelihood types.Likelihood, creatorID string, opts *CreateRiskOptions) (*model.Risk, error) {
	now := uc.clock()

	var options []model.RiskOption
	if opts != nil {
		if opts.ReviewPeriodMonths != 0 {
			cadence, err := model.NewReviewCadence(opts.ReviewPeriodMonths, nil, nil)
			if err != nil {
				return nil, goerr.Wrap(err, "invalid review period")
			}
			options = append(options, model.WithReviewCadence(cadence))
		}
		if opts.Status != "" {
			options = append(options, model.WithStatus(opts.Status))
		}
		if len(opts.Tags) > 0 {
			options = append(options, model.WithTags(opts.Tags...))
		}
		if len(opts.ControlIDs) > 0 {
			options = append(options, model.WithControls(opts.ControlIDs...))
		}
		if len(opts.AssetIDs) > 0 {
			options = append(options, model.WithAssets(opts.AssetIDs...))
		}
	}

	risk, err := model.NewRisk(name, description, category, impact, likelihood, creatorID, now, options...)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Risk().Put(ctx, risk); err != nil {
		return nil, goerr.Wrap(err, "failed to save risk", goerr.V(RiskIDKey, risk.ID()))
	}

	return risk, nil
}

// GetRisk retrieves a risk by ID
func (uc *RiskUseCase) GetRisk(ctx context.Context, id model.RiskID) (*model.Risk, error) {
	return uc.getRisk(ctx, id)
}

func (uc *RiskUseCase) getRisk(ctx context.Context, id model.RiskID) (*model.Risk, error) {
	risk, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, id))
	}
	return risk, nil
}

// mutate runs one load → mutate → persist round trip on a risk. Domain rule
// violations from fn are surfaced unchanged.
func (uc *RiskUseCase) mutate(ctx context.Context, id model.RiskID, fn func(*model.Risk) error) (*model.Risk, error) {
	risk, err := uc.getRisk(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(risk); err != nil {
		return nil, err
	}

	if err := uc.repo.Risk().Put(ctx, risk); err != nil {
		return nil, goerr.Wrap(err, "failed to save risk", goerr.V(RiskIDKey, id))
	}
	return risk, nil
}

// Assessment is one impact/likelihood pair
type Assessment struct {
	Impact     types.Impact
	Likelihood types.Likelihood
}

// UpdateRiskAssessment updates the inherent and/or residual assessment of a
// risk. At least one pair is required.
func (uc *RiskUseCase) UpdateRiskAssessment(ctx context.Context, id model.RiskID, inherent, residual *Assessment, actorID string) (*model.Risk, error) {
	if inherent == nil && residual == nil {
		return nil, goerr.Wrap(model.ErrInvalidField, "at least one assessment is required",
			goerr.V(model.FieldKey, "assessment"))
	}

	now := uc.clock()
	return uc.mutate(ctx, id, func(risk *model.Risk) error {
		if inherent != nil {
			if err := risk.UpdateInherentAssessment(inherent.Impact, inherent.Likelihood, actorID, now); err != nil {
				return err
			}
		}
		if residual != nil {
			if err := risk.UpdateResidualAssessment(residual.Impact, residual.Likelihood, actorID, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateRiskStatus sets the lifecycle status of a risk
func (uc *RiskUseCase) UpdateRiskStatus(ctx context.Context, id model.RiskID, status types.RiskStatus, actorID string) (*model.Risk, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(risk *model.Risk) error {
		return risk.UpdateStatus(status, actorID, now)
	})
}

// CloseRisk closes a risk. Fails unless a residual assessment is recorded.
func (uc *RiskUseCase) CloseRisk(ctx context.Context, id model.RiskID, actorID string) (*model.Risk, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(risk *model.Risk) error {
		return risk.Close(actorID, now)
	})
}

// UpdateRiskDetails replaces name, description, and category
func (uc *RiskUseCase) UpdateRiskDetails(ctx context.Context, id model.RiskID, name, description string, category types.RiskCategory, actorID string) (*model.Risk, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(risk *model.Risk) error {
		return risk.UpdateDetails(name, description, category, actorID, now)
	})
}

// AssignRiskOwner records the accountable person for a risk
func (uc *RiskUseCase) AssignRiskOwner(ctx context.Context, id model.RiskID, userID, name, department string, actorID string) (*model.Risk, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(risk *model.Risk) error {
		return risk.AssignOwner(userID, name, department, actorID, now)
	})
}

// SetRiskReviewPeriod sets the periodic review cadence in months
func (uc *RiskUseCase) SetRiskReviewPeriod(ctx context.Context, id model.RiskID, months int, actorID string) (*model.Risk, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(risk *model.Risk) error {
		return risk.SetReviewPeriod(months, actorID, now)
	})
}

// MarkRiskReviewed records a completed review and schedules the next one
func (uc *RiskUseCase) MarkRiskReviewed(ctx context.Context, id model.RiskID, actorID string) (*model.Risk, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(risk *model.Risk) error {
		return risk.MarkReviewed(now, actorID, now)
	})
}

// SetRiskTags replaces the tag set of a risk
func (uc *RiskUseCase) SetRiskTags(ctx context.Context, id model.RiskID, tags []string, actorID string) (*model.Risk, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(risk *model.Risk) error {
		risk.SetTags(tags, actorID, now)
		return nil
	})
}

// LinkControl links a control to a risk
func (uc *RiskUseCase) LinkControl(ctx context.Context, id model.RiskID, controlID types.ControlID, actorID string) (*model.Risk, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(risk *model.Risk) error {
		return risk.LinkControl(controlID, actorID, now)
	})
}

// UnlinkControl removes a control link from a risk
func (uc *RiskUseCase) UnlinkControl(ctx context.Context, id model.RiskID, controlID types.ControlID, actorID string) (*model.Risk, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(risk *model.Risk) error {
		return risk.UnlinkControl(controlID, actorID, now)
	})
}

// LinkAsset links an asset to a risk
func (uc *RiskUseCase) LinkAsset(ctx context.Context, id model.RiskID, assetID types.AssetID, actorID string) (*model.Risk, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(risk *model.Risk) error {
		return risk.LinkAsset(assetID, actorID, now)
	})
}

// UnlinkAsset removes an asset link from a risk
func (uc *RiskUseCase) UnlinkAsset(ctx context.Context, id model.RiskID, assetID types.AssetID, actorID string) (*model.Risk, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(risk *model.Risk) error {
		return risk.UnlinkAsset(assetID, actorID, now)
	})
}

// DeactivateRisk retires a risk from the active register
func (uc *RiskUseCase) DeactivateRisk(ctx context.Context, id model.RiskID, actorID string) (*model.Risk, error) {
	now := uc.clock()
	return uc.mutate(ctx, id, func(risk *model.Risk) error {
		risk.Deactivate(actorID, now)
		return nil
	})
}

// ListRisks retrieves risks matching the filter
func (uc *RiskUseCase) ListRisks(ctx context.Context, filter model.RiskFilter) ([]*model.Risk, error) {
	risks, err := uc.repo.Risk().List(ctx, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks")
	}
	return risks, nil
}

// ListRisksForReview retrieves the active risks whose periodic review is due
func (uc *RiskUseCase) ListRisksForReview(ctx context.Context) ([]*model.Risk, error) {
	now := uc.clock()
	return uc.ListRisks(ctx, model.RiskFilter{
		ReviewDueAt: &now,
		ActiveOnly:  true,
	})
}

// deriveStatusFromTreatments re-applies the treatment propagation rules to a
// risk. Returns the derived status and whether any rule fired.
func deriveStatusFromTreatments(risk *model.Risk, treatments []*model.Treatment) (types.RiskStatus, bool) {
	if len(treatments) == 0 {
		return "", false
	}

	// Terminal strategies win over the mitigation track
	for _, t := range treatments {
		if !t.Status().IsCompleted() {
			continue
		}
		switch t.Type() {
		case types.TreatmentTypeAccept:
			return types.RiskStatusAccepted, true
		case types.TreatmentTypeTransfer:
			return types.RiskStatusTransferred, true
		case types.TreatmentTypeAvoid:
			return types.RiskStatusAvoided, true
		}
	}

	switch risk.Status() {
	case types.RiskStatusIdentified, types.RiskStatusAssessed:
		// Any treatment means the organization has begun responding
		return types.RiskStatusMitigating, true
	}
	return "", false
}

// ReconcileRiskStatus re-derives a risk's status from its treatments. The
// treatment save and the risk save are separate writes, so a crash between
// them can leave the risk behind; this pass is the idempotent recovery.
func (uc *RiskUseCase) ReconcileRiskStatus(ctx context.Context, id model.RiskID, actorID string) (*model.Risk, error) {
	risk, err := uc.getRisk(ctx, id)
	if err != nil {
		return nil, err
	}

	treatments, err := uc.repo.Treatment().ListByRisk(ctx, id, true)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list treatments", goerr.V(RiskIDKey, id))
	}

	status, changed := deriveStatusFromTreatments(risk, treatments)
	if !changed || status == risk.Status() {
		return risk, nil
	}

	from := risk.Status()
	now := uc.clock()
	if err := risk.UpdateStatus(status, actorID, now); err != nil {
		return nil, err
	}
	if err := uc.repo.Risk().Put(ctx, risk); err != nil {
		return nil, goerr.Wrap(err, "failed to save risk", goerr.V(RiskIDKey, id))
	}

	logging.From(ctx).Info("Reconciled risk status",
		"risk_id", id, "from", from, "to", status)
	return risk, nil
}

// ReconcileAll runs a reconciliation pass over every active risk
func (uc *RiskUseCase) ReconcileAll(ctx context.Context, actorID string) error {
	risks, err := uc.ListRisks(ctx, model.RiskFilter{ActiveOnly: true})
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(reconcileConcurrency)
	for _, risk := range risks {
		eg.Go(func() error {
			if _, err := uc.ReconcileRiskStatus(ctx, risk.ID(), actorID); err != nil {
				return goerr.Wrap(err, "failed to reconcile risk", goerr.V(RiskIDKey, risk.ID()))
			}
			return nil
		})
	}
	return eg.Wait()
}
