package model

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// Owner identifies the person accountable for a risk
type Owner struct {
	UserID     string
	Name       string
	Department string
	AssignedAt time.Time
}

// Risk is the aggregate root of the risk register. All fields are private;
// state changes go through the mutation methods so the scoring, status, and
// audit invariants hold at all times.
type Risk struct {
	id                 RiskID
	name               string
	description        string
	category           types.RiskCategory
	status             types.RiskStatus
	inherentImpact     types.Impact
	inherentLikelihood types.Likelihood
	inherentScore      RiskScore
	residualImpact     *types.Impact
	residualLikelihood *types.Likelihood
	residualScore      *RiskScore
	owner              *Owner
	controlIDs         []types.ControlID
	assetIDs           []types.AssetID
	review             *ReviewCadence
	tags               []string
	active             bool
	createdBy          string
	createdAt          time.Time
	updatedBy          string
	updatedAt          time.Time
}

// RiskOption configures optional fields at risk creation
type RiskOption func(*Risk)

// WithStatus sets an explicit initial status instead of IDENTIFIED
func WithStatus(status types.RiskStatus) RiskOption {
	return func(r *Risk) {
		r.status = status
	}
}

// WithReviewCadence sets the periodic review cadence
func WithReviewCadence(cadence ReviewCadence) RiskOption {
	return func(r *Risk) {
		c := cadence
		r.review = &c
	}
}

// WithTags sets the initial tag set
func WithTags(tags ...string) RiskOption {
	return func(r *Risk) {
		r.tags = normalizeTags(tags)
	}
}

// WithControls links the initial set of control IDs
func WithControls(ids ...types.ControlID) RiskOption {
	return func(r *Risk) {
		r.controlIDs = dedupeControlIDs(ids)
	}
}

// WithAssets links the initial set of asset IDs
func WithAssets(ids ...types.AssetID) RiskOption {
	return func(r *Risk) {
		r.assetIDs = dedupeAssetIDs(ids)
	}
}

// NewRisk creates a risk with its inherent assessment. The inherent score is
// derived immediately; residual assessment and treatments come later.
func NewRisk(name, description string, category types.RiskCategory, impact types.Impact, likelihood types.Likelihood, createdBy string, now time.Time, options ...RiskOption) (*Risk, error) {
	score, err := NewRiskScore(impact, likelihood)
	if err != nil {
		return nil, err
	}

	r := &Risk{
		id:                 NewRiskID(),
		name:               name,
		description:        description,
		category:           category,
		status:             types.RiskStatusIdentified,
		inherentImpact:     impact,
		inherentLikelihood: likelihood,
		inherentScore:      score,
		active:             true,
		createdBy:          createdBy,
		createdAt:          now,
		updatedBy:          createdBy,
		updatedAt:          now,
	}
	for _, opt := range options {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func validateRiskName(name string) error {
	length := utf8.RuneCountInString(name)
	if length < 3 || length > 200 {
		return goerr.Wrap(ErrInvalidField, "risk name must be 3 to 200 characters",
			goerr.V(FieldKey, "name"), goerr.V(ValueKey, name))
	}
	return nil
}

func validateRiskDescription(description string) error {
	if utf8.RuneCountInString(description) > 2000 {
		return goerr.Wrap(ErrInvalidField, "risk description must be at most 2000 characters",
			goerr.V(FieldKey, "description"))
	}
	return nil
}

func validateRiskCategory(category types.RiskCategory) error {
	if !category.IsValid() {
		return goerr.Wrap(ErrInvalidField, "unknown risk category",
			goerr.V(FieldKey, "category"), goerr.V(ValueKey, category))
	}
	return nil
}

func (r *Risk) validate() error {
	if err := validateRiskName(r.name); err != nil {
		return err
	}
	if err := validateRiskDescription(r.description); err != nil {
		return err
	}
	if err := validateRiskCategory(r.category); err != nil {
		return err
	}
	if r.createdBy == "" {
		return goerr.Wrap(ErrInvalidField, "creator is required",
			goerr.V(FieldKey, "createdBy"))
	}
	if !r.status.IsValid() {
		return goerr.Wrap(ErrInvalidField, "unknown risk status",
			goerr.V(FieldKey, "status"), goerr.V(ValueKey, r.status))
	}
	if r.status == types.RiskStatusClosed && r.residualScore == nil {
		return goerr.Wrap(ErrIllegalTransition, "risk cannot be closed without a residual assessment",
			goerr.V(FieldKey, "status"))
	}
	for _, id := range r.controlIDs {
		if err := id.Validate(); err != nil {
			return goerr.Wrap(ErrInvalidField, "invalid control ID",
				goerr.V(FieldKey, "controlIds"), goerr.V(ValueKey, id))
		}
	}
	for _, id := range r.assetIDs {
		if err := id.Validate(); err != nil {
			return goerr.Wrap(ErrInvalidField, "invalid asset ID",
				goerr.V(FieldKey, "assetIds"), goerr.V(ValueKey, id))
		}
		if string(id) == string(r.id) {
			return goerr.Wrap(ErrInvalidField, "asset cannot reference its own risk",
				goerr.V(FieldKey, "assetIds"), goerr.V(ValueKey, id))
		}
	}
	return nil
}

func (r *Risk) touch(actor string, now time.Time) {
	r.updatedBy = actor
	r.updatedAt = now
}

// UpdateInherentAssessment recalculates the inherent score. A risk still in
// IDENTIFIED advances to ASSESSED once scored; later statuses never regress.
func (r *Risk) UpdateInherentAssessment(impact types.Impact, likelihood types.Likelihood, actor string, now time.Time) error {
	score, err := NewRiskScore(impact, likelihood)
	if err != nil {
		return err
	}

	r.inherentImpact = impact
	r.inherentLikelihood = likelihood
	r.inherentScore = score
	if r.status == types.RiskStatusIdentified {
		r.status = types.RiskStatusAssessed
	}
	r.touch(actor, now)
	return nil
}

// UpdateResidualAssessment recalculates the residual score. Status is not
// affected.
func (r *Risk) UpdateResidualAssessment(impact types.Impact, likelihood types.Likelihood, actor string, now time.Time) error {
	score, err := NewRiskScore(impact, likelihood)
	if err != nil {
		return err
	}

	r.residualImpact = &impact
	r.residualLikelihood = &likelihood
	r.residualScore = &score
	r.touch(actor, now)
	return nil
}

// UpdateStatus sets the lifecycle status. Closing requires a recorded residual
// assessment; all other transitions are accepted.
func (r *Risk) UpdateStatus(status types.RiskStatus, actor string, now time.Time) error {
	if !status.IsValid() {
		return goerr.Wrap(ErrInvalidField, "unknown risk status",
			goerr.V(FieldKey, "status"), goerr.V(ValueKey, status))
	}
	if status == types.RiskStatusClosed && r.residualScore == nil {
		return goerr.Wrap(ErrIllegalTransition, "risk cannot be closed without a residual assessment",
			goerr.V("current", r.status), goerr.V("requested", status))
	}

	r.status = status
	r.touch(actor, now)
	return nil
}

// Close transitions the risk to CLOSED, requiring a residual assessment
func (r *Risk) Close(actor string, now time.Time) error {
	return r.UpdateStatus(types.RiskStatusClosed, actor, now)
}

// UpdateDetails replaces name, description, and category
func (r *Risk) UpdateDetails(name, description string, category types.RiskCategory, actor string, now time.Time) error {
	if err := validateRiskName(name); err != nil {
		return err
	}
	if err := validateRiskDescription(description); err != nil {
		return err
	}
	if err := validateRiskCategory(category); err != nil {
		return err
	}

	r.name = name
	r.description = description
	r.category = category
	r.touch(actor, now)
	return nil
}

// AssignOwner records the accountable person for this risk
func (r *Risk) AssignOwner(userID, name, department string, actor string, now time.Time) error {
	if userID == "" {
		return goerr.Wrap(ErrInvalidField, "owner user ID is required",
			goerr.V(FieldKey, "owner.userId"))
	}
	if name == "" {
		return goerr.Wrap(ErrInvalidField, "owner name is required",
			goerr.V(FieldKey, "owner.name"))
	}

	r.owner = &Owner{
		UserID:     userID,
		Name:       name,
		Department: department,
		AssignedAt: now,
	}
	r.touch(actor, now)
	return nil
}

// SetReviewPeriod sets the review period in months, carrying the last review
// date forward when one exists
func (r *Risk) SetReviewPeriod(months int, actor string, now time.Time) error {
	var last *time.Time
	if r.review != nil {
		last = r.review.LastReviewed()
	}
	cadence, err := NewReviewCadence(months, last, nil)
	if err != nil {
		return err
	}

	r.review = &cadence
	r.touch(actor, now)
	return nil
}

// MarkReviewed records a completed review and schedules the next one
func (r *Risk) MarkReviewed(reviewedAt time.Time, actor string, now time.Time) error {
	if r.review == nil {
		return goerr.Wrap(ErrIllegalTransition, "risk has no review cadence",
			goerr.V("risk_id", r.id))
	}

	next := r.review.Reviewed(reviewedAt)
	r.review = &next
	r.touch(actor, now)
	return nil
}

// SetTags replaces the tag set, dropping empties and duplicates
func (r *Risk) SetTags(tags []string, actor string, now time.Time) {
	r.tags = normalizeTags(tags)
	r.touch(actor, now)
}

// LinkControl adds a control reference. Linking an already linked control fails.
func (r *Risk) LinkControl(id types.ControlID, actor string, now time.Time) error {
	if err := id.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidField, "invalid control ID",
			goerr.V(FieldKey, "controlId"), goerr.V(ValueKey, id))
	}
	for _, existing := range r.controlIDs {
		if existing == id {
			return goerr.Wrap(ErrAlreadyLinked, "control is already linked to this risk",
				goerr.V("control_id", id))
		}
	}

	r.controlIDs = append(r.controlIDs, id)
	r.touch(actor, now)
	return nil
}

// UnlinkControl removes a control reference. Unlinking an unknown control fails.
func (r *Risk) UnlinkControl(id types.ControlID, actor string, now time.Time) error {
	for i, existing := range r.controlIDs {
		if existing == id {
			r.controlIDs = append(r.controlIDs[:i], r.controlIDs[i+1:]...)
			r.touch(actor, now)
			return nil
		}
	}
	return goerr.Wrap(ErrNotLinked, "control is not linked to this risk",
		goerr.V("control_id", id))
}

// LinkAsset adds an asset reference. Linking an already linked asset or the
// risk's own ID fails.
func (r *Risk) LinkAsset(id types.AssetID, actor string, now time.Time) error {
	if err := id.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidField, "invalid asset ID",
			goerr.V(FieldKey, "assetId"), goerr.V(ValueKey, id))
	}
	if string(id) == string(r.id) {
		return goerr.Wrap(ErrInvalidField, "asset cannot reference its own risk",
			goerr.V(FieldKey, "assetId"), goerr.V(ValueKey, id))
	}
	for _, existing := range r.assetIDs {
		if existing == id {
			return goerr.Wrap(ErrAlreadyLinked, "asset is already linked to this risk",
				goerr.V("asset_id", id))
		}
	}

	r.assetIDs = append(r.assetIDs, id)
	r.touch(actor, now)
	return nil
}

// UnlinkAsset removes an asset reference. Unlinking an unknown asset fails.
func (r *Risk) UnlinkAsset(id types.AssetID, actor string, now time.Time) error {
	for i, existing := range r.assetIDs {
		if existing == id {
			r.assetIDs = append(r.assetIDs[:i], r.assetIDs[i+1:]...)
			r.touch(actor, now)
			return nil
		}
	}
	return goerr.Wrap(ErrNotLinked, "asset is not linked to this risk",
		goerr.V("asset_id", id))
}

// Deactivate retires the risk from the active register. Records are never
// physically deleted.
func (r *Risk) Deactivate(actor string, now time.Time) {
	r.active = false
	r.touch(actor, now)
}

// ReductionPercentage returns the score reduction achieved by treatment,
// rounded to whole percent. The second return is false until a residual
// assessment exists.
func (r *Risk) ReductionPercentage() (int, bool) {
	if r.residualScore == nil {
		return 0, false
	}
	inherent := r.inherentScore.Value()
	if inherent == 0 {
		return 0, true
	}
	residual := r.residualScore.Value()
	return int(math.Round(float64(inherent-residual) / float64(inherent) * 100)), true
}

// IsReviewDue reports whether a periodic review is due at the given time
func (r *Risk) IsReviewDue(asOf time.Time) bool {
	return r.review != nil && r.review.IsDue(asOf)
}

// ID returns the risk identifier
func (r *Risk) ID() RiskID { return r.id }

// Name returns the risk name
func (r *Risk) Name() string { return r.name }

// Description returns the risk description
func (r *Risk) Description() string { return r.description }

// Category returns the risk category
func (r *Risk) Category() types.RiskCategory { return r.category }

// Status returns the lifecycle status
func (r *Risk) Status() types.RiskStatus { return r.status }

// InherentImpact returns the impact level before treatment
func (r *Risk) InherentImpact() types.Impact { return r.inherentImpact }

// InherentLikelihood returns the likelihood level before treatment
func (r *Risk) InherentLikelihood() types.Likelihood { return r.inherentLikelihood }

// InherentScore returns the score derived from the inherent assessment
func (r *Risk) InherentScore() RiskScore { return r.inherentScore }

// ResidualImpact returns the impact level after treatment, if assessed
func (r *Risk) ResidualImpact() *types.Impact {
	if r.residualImpact == nil {
		return nil
	}
	v := *r.residualImpact
	return &v
}

// ResidualLikelihood returns the likelihood level after treatment, if assessed
func (r *Risk) ResidualLikelihood() *types.Likelihood {
	if r.residualLikelihood == nil {
		return nil
	}
	v := *r.residualLikelihood
	return &v
}

// ResidualScore returns the score derived from the residual assessment, if any
func (r *Risk) ResidualScore() *RiskScore {
	if r.residualScore == nil {
		return nil
	}
	v := *r.residualScore
	return &v
}

// Owner returns the accountable person, if assigned
func (r *Risk) Owner() *Owner {
	if r.owner == nil {
		return nil
	}
	v := *r.owner
	return &v
}

// ControlIDs returns the linked control references
func (r *Risk) ControlIDs() []types.ControlID {
	return append([]types.ControlID(nil), r.controlIDs...)
}

// AssetIDs returns the linked asset references
func (r *Risk) AssetIDs() []types.AssetID {
	return append([]types.AssetID(nil), r.assetIDs...)
}

// Review returns the review cadence, if configured
func (r *Risk) Review() *ReviewCadence {
	if r.review == nil {
		return nil
	}
	v := *r.review
	return &v
}

// Tags returns the tag set
func (r *Risk) Tags() []string {
	return append([]string(nil), r.tags...)
}

// IsActive reports whether the risk is still part of the active register
func (r *Risk) IsActive() bool { return r.active }

// CreatedBy returns the creating user
func (r *Risk) CreatedBy() string { return r.createdBy }

// CreatedAt returns the creation time
func (r *Risk) CreatedAt() time.Time { return r.createdAt }

// UpdatedBy returns the user of the most recent change
func (r *Risk) UpdatedBy() string { return r.updatedBy }

// UpdatedAt returns the time of the most recent change
func (r *Risk) UpdatedAt() time.Time { return r.updatedAt }

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func dedupeControlIDs(ids []types.ControlID) []types.ControlID {
	seen := make(map[types.ControlID]bool, len(ids))
	var out []types.ControlID
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func dedupeAssetIDs(ids []types.AssetID) []types.AssetID {
	seen := make(map[types.AssetID]bool, len(ids))
	var out []types.AssetID
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
