package model

import (
	"time"

	"github.com/secmon-lab/themis/pkg/domain/types"
)

// RiskRecord is the flat persistence snapshot of a Risk. Repositories store
// and load records; domain logic always works on the aggregate.
type RiskRecord struct {
	ID                 RiskID
	Name               string
	Description        string
	Category           types.RiskCategory
	Status             types.RiskStatus
	InherentImpact     types.Impact
	InherentLikelihood types.Likelihood
	InherentScore      int
	InherentSeverity   types.Severity
	ResidualImpact     *types.Impact
	ResidualLikelihood *types.Likelihood
	ResidualScore      *int
	ResidualSeverity   *types.Severity
	Owner              *Owner
	ControlIDs         []types.ControlID
	AssetIDs           []types.AssetID
	ReviewPeriodMonths *int
	LastReviewedAt     *time.Time
	NextReviewAt       *time.Time
	Tags               []string
	Active             bool
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedBy          string
	UpdatedAt          time.Time
}

// Record returns the persistence snapshot of the risk
func (r *Risk) Record() RiskRecord {
	rec := RiskRecord{
		ID:                 r.id,
		Name:               r.name,
		Description:        r.description,
		Category:           r.category,
		Status:             r.status,
		InherentImpact:     r.inherentImpact,
		InherentLikelihood: r.inherentLikelihood,
		InherentScore:      r.inherentScore.Value(),
		InherentSeverity:   r.inherentScore.Severity(),
		ControlIDs:         append([]types.ControlID(nil), r.controlIDs...),
		AssetIDs:           append([]types.AssetID(nil), r.assetIDs...),
		Tags:               append([]string(nil), r.tags...),
		Active:             r.active,
		CreatedBy:          r.createdBy,
		CreatedAt:          r.createdAt,
		UpdatedBy:          r.updatedBy,
		UpdatedAt:          r.updatedAt,
	}
	if r.residualImpact != nil {
		v := *r.residualImpact
		rec.ResidualImpact = &v
	}
	if r.residualLikelihood != nil {
		v := *r.residualLikelihood
		rec.ResidualLikelihood = &v
	}
	if r.residualScore != nil {
		score := r.residualScore.Value()
		severity := r.residualScore.Severity()
		rec.ResidualScore = &score
		rec.ResidualSeverity = &severity
	}
	if r.owner != nil {
		owner := *r.owner
		rec.Owner = &owner
	}
	if r.review != nil {
		months := r.review.Months()
		rec.ReviewPeriodMonths = &months
		rec.LastReviewedAt = r.review.LastReviewed()
		rec.NextReviewAt = r.review.NextReview()
	}
	return rec
}

// RiskFromRecord rebuilds a risk aggregate from its persistence snapshot.
// Stored data is trusted; severity bands are recomputed from the stored score
// so the banding rules have a single implementation.
func RiskFromRecord(rec RiskRecord) *Risk {
	r := &Risk{
		id:                 rec.ID,
		name:               rec.Name,
		description:        rec.Description,
		category:           rec.Category,
		status:             rec.Status,
		inherentImpact:     rec.InherentImpact,
		inherentLikelihood: rec.InherentLikelihood,
		inherentScore: RiskScore{
			value:    rec.InherentScore,
			severity: types.SeverityForScore(rec.InherentScore),
		},
		controlIDs: append([]types.ControlID(nil), rec.ControlIDs...),
		assetIDs:   append([]types.AssetID(nil), rec.AssetIDs...),
		tags:       append([]string(nil), rec.Tags...),
		active:     rec.Active,
		createdBy:  rec.CreatedBy,
		createdAt:  rec.CreatedAt,
		updatedBy:  rec.UpdatedBy,
		updatedAt:  rec.UpdatedAt,
	}
	if rec.ResidualImpact != nil {
		v := *rec.ResidualImpact
		r.residualImpact = &v
	}
	if rec.ResidualLikelihood != nil {
		v := *rec.ResidualLikelihood
		r.residualLikelihood = &v
	}
	if rec.ResidualScore != nil {
		score := RiskScore{
			value:    *rec.ResidualScore,
			severity: types.SeverityForScore(*rec.ResidualScore),
		}
		r.residualScore = &score
	}
	if rec.Owner != nil {
		owner := *rec.Owner
		r.owner = &owner
	}
	if rec.ReviewPeriodMonths != nil {
		cadence := ReviewCadence{months: *rec.ReviewPeriodMonths}
		if rec.LastReviewedAt != nil {
			t := *rec.LastReviewedAt
			cadence.lastReviewed = &t
		}
		if rec.NextReviewAt != nil {
			t := *rec.NextReviewAt
			cadence.nextReview = &t
		}
		r.review = &cadence
	}
	return r
}

// TreatmentRecord is the flat persistence snapshot of a Treatment
type TreatmentRecord struct {
	ID            TreatmentID
	RiskID        RiskID
	Name          string
	Description   string
	Type          types.TreatmentType
	Status        types.TreatmentStatus
	DueDate       *time.Time
	CompletedDate *time.Time
	Assignee      string
	Cost          *float64
	ControlIDs    []types.ControlID
	Active        bool
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedBy     string
	UpdatedAt     time.Time
}

// Record returns the persistence snapshot of the treatment
func (t *Treatment) Record() TreatmentRecord {
	rec := TreatmentRecord{
		ID:          t.id,
		RiskID:      t.riskID,
		Name:        t.name,
		Description: t.description,
		Type:        t.treatmentType,
		Status:      t.status,
		Assignee:    t.assignee,
		ControlIDs:  append([]types.ControlID(nil), t.controlIDs...),
		Active:      t.active,
		CreatedBy:   t.createdBy,
		CreatedAt:   t.createdAt,
		UpdatedBy:   t.updatedBy,
		UpdatedAt:   t.updatedAt,
	}
	if t.dueDate != nil {
		d := *t.dueDate
		rec.DueDate = &d
	}
	if t.completedDate != nil {
		d := *t.completedDate
		rec.CompletedDate = &d
	}
	if t.cost != nil {
		c := *t.cost
		rec.Cost = &c
	}
	return rec
}

// TreatmentFromRecord rebuilds a treatment aggregate from its persistence
// snapshot. Stored data is trusted.
func TreatmentFromRecord(rec TreatmentRecord) *Treatment {
	t := &Treatment{
		id:            rec.ID,
		riskID:        rec.RiskID,
		name:          rec.Name,
		description:   rec.Description,
		treatmentType: rec.Type,
		status:        rec.Status,
		assignee:      rec.Assignee,
		controlIDs:    append([]types.ControlID(nil), rec.ControlIDs...),
		active:        rec.Active,
		createdBy:     rec.CreatedBy,
		createdAt:     rec.CreatedAt,
		updatedBy:     rec.UpdatedBy,
		updatedAt:     rec.UpdatedAt,
	}
	if rec.DueDate != nil {
		d := *rec.DueDate
		t.dueDate = &d
	}
	if rec.CompletedDate != nil {
		d := *rec.CompletedDate
		t.completedDate = &d
	}
	if rec.Cost != nil {
		c := *rec.Cost
		t.cost = &c
	}
	return t
}
