package model

import (
	"time"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// Treatment is a remediation activity addressing one risk. It references its
// Risk by ID and is never embedded in it.
type Treatment struct {
	id            TreatmentID
	riskID        RiskID
	name          string
	description   string
	treatmentType types.TreatmentType
	status        types.TreatmentStatus
	dueDate       *time.Time
	completedDate *time.Time
	assignee      string
	cost          *float64
	controlIDs    []types.ControlID
	active        bool
	createdBy     string
	createdAt     time.Time
	updatedBy     string
	updatedAt     time.Time
}

// TreatmentOption configures optional fields at treatment creation
type TreatmentOption func(*Treatment)

// WithTreatmentStatus sets an explicit initial status instead of PLANNED
func WithTreatmentStatus(status types.TreatmentStatus) TreatmentOption {
	return func(t *Treatment) {
		t.status = status
	}
}

// WithDueDate sets the target completion date
func WithDueDate(dueDate time.Time) TreatmentOption {
	return func(t *Treatment) {
		d := dueDate
		t.dueDate = &d
	}
}

// WithAssignee sets the person responsible for execution
func WithAssignee(assignee string) TreatmentOption {
	return func(t *Treatment) {
		t.assignee = assignee
	}
}

// WithCost sets the estimated cost of the treatment
func WithCost(cost float64) TreatmentOption {
	return func(t *Treatment) {
		c := cost
		t.cost = &c
	}
}

// WithTreatmentControls links the initial set of control IDs
func WithTreatmentControls(ids ...types.ControlID) TreatmentOption {
	return func(t *Treatment) {
		t.controlIDs = dedupeControlIDs(ids)
	}
}

// NewTreatment creates a treatment for the given risk. Whether the risk exists
// is the coordinator's concern, not checked here.
func NewTreatment(riskID RiskID, name, description string, treatmentType types.TreatmentType, createdBy string, now time.Time, options ...TreatmentOption) (*Treatment, error) {
	t := &Treatment{
		id:            NewTreatmentID(),
		riskID:        riskID,
		name:          name,
		description:   description,
		treatmentType: treatmentType,
		status:        types.TreatmentStatusPlanned,
		active:        true,
		createdBy:     createdBy,
		createdAt:     now,
		updatedBy:     createdBy,
		updatedAt:     now,
	}
	for _, opt := range options {
		opt(t)
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	if t.status.IsCompleted() {
		d := now
		t.completedDate = &d
	}
	return t, nil
}

func validateTreatmentName(name string) error {
	length := utf8.RuneCountInString(name)
	if length < 1 || length > 200 {
		return goerr.Wrap(ErrInvalidField, "treatment name must be 1 to 200 characters",
			goerr.V(FieldKey, "name"), goerr.V(ValueKey, name))
	}
	return nil
}

func validateTreatmentDescription(description string) error {
	if utf8.RuneCountInString(description) > 1000 {
		return goerr.Wrap(ErrInvalidField, "treatment description must be at most 1000 characters",
			goerr.V(FieldKey, "description"))
	}
	return nil
}

func (t *Treatment) validate() error {
	if t.riskID == "" {
		return goerr.Wrap(ErrInvalidField, "risk ID is required",
			goerr.V(FieldKey, "riskId"))
	}
	if err := validateTreatmentName(t.name); err != nil {
		return err
	}
	if err := validateTreatmentDescription(t.description); err != nil {
		return err
	}
	if !t.treatmentType.IsValid() {
		return goerr.Wrap(ErrInvalidField, "unknown treatment type",
			goerr.V(FieldKey, "type"), goerr.V(ValueKey, t.treatmentType))
	}
	if !t.status.IsValid() {
		return goerr.Wrap(ErrInvalidField, "unknown treatment status",
			goerr.V(FieldKey, "status"), goerr.V(ValueKey, t.status))
	}
	if t.createdBy == "" {
		return goerr.Wrap(ErrInvalidField, "creator is required",
			goerr.V(FieldKey, "createdBy"))
	}
	if t.cost != nil && *t.cost < 0 {
		return goerr.Wrap(ErrInvalidField, "treatment cost cannot be negative",
			goerr.V(FieldKey, "cost"), goerr.V(ValueKey, *t.cost))
	}
	for _, id := range t.controlIDs {
		if err := id.Validate(); err != nil {
			return goerr.Wrap(ErrInvalidField, "invalid control ID",
				goerr.V(FieldKey, "controlIds"), goerr.V(ValueKey, id))
		}
	}
	return nil
}

func (t *Treatment) touch(actor string, now time.Time) {
	t.updatedBy = actor
	t.updatedAt = now
}

// UpdateStatus sets the execution status. The completion date is derived: set
// the first time status reaches IMPLEMENTED or VERIFIED, cleared when status
// regresses to PLANNED or IN_PROGRESS.
func (t *Treatment) UpdateStatus(status types.TreatmentStatus, actor string, now time.Time) error {
	if !status.IsValid() {
		return goerr.Wrap(ErrInvalidField, "unknown treatment status",
			goerr.V(FieldKey, "status"), goerr.V(ValueKey, status))
	}

	switch {
	case status.IsCompleted():
		if t.completedDate == nil {
			d := now
			t.completedDate = &d
		}
	case status == types.TreatmentStatusPlanned || status == types.TreatmentStatusInProgress:
		t.completedDate = nil
	}
	t.status = status
	t.touch(actor, now)
	return nil
}

// UpdateDetails replaces name and description
func (t *Treatment) UpdateDetails(name, description string, actor string, now time.Time) error {
	if err := validateTreatmentName(name); err != nil {
		return err
	}
	if err := validateTreatmentDescription(description); err != nil {
		return err
	}

	t.name = name
	t.description = description
	t.touch(actor, now)
	return nil
}

// SetDueDate sets or clears the target completion date
func (t *Treatment) SetDueDate(dueDate *time.Time, actor string, now time.Time) {
	if dueDate == nil {
		t.dueDate = nil
	} else {
		d := *dueDate
		t.dueDate = &d
	}
	t.touch(actor, now)
}

// SetAssignee sets the person responsible for execution. An empty assignee
// clears the assignment.
func (t *Treatment) SetAssignee(assignee string, actor string, now time.Time) {
	t.assignee = assignee
	t.touch(actor, now)
}

// SetCost sets the estimated cost. Negative values fail.
func (t *Treatment) SetCost(cost float64, actor string, now time.Time) error {
	if cost < 0 {
		return goerr.Wrap(ErrInvalidField, "treatment cost cannot be negative",
			goerr.V(FieldKey, "cost"), goerr.V(ValueKey, cost))
	}

	c := cost
	t.cost = &c
	t.touch(actor, now)
	return nil
}

// LinkControl adds a control reference. Linking an already linked control fails.
func (t *Treatment) LinkControl(id types.ControlID, actor string, now time.Time) error {
	if err := id.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidField, "invalid control ID",
			goerr.V(FieldKey, "controlId"), goerr.V(ValueKey, id))
	}
	for _, existing := range t.controlIDs {
		if existing == id {
			return goerr.Wrap(ErrAlreadyLinked, "control is already linked to this treatment",
				goerr.V("control_id", id))
		}
	}

	t.controlIDs = append(t.controlIDs, id)
	t.touch(actor, now)
	return nil
}

// UnlinkControl removes a control reference. Unlinking an unknown control fails.
func (t *Treatment) UnlinkControl(id types.ControlID, actor string, now time.Time) error {
	for i, existing := range t.controlIDs {
		if existing == id {
			t.controlIDs = append(t.controlIDs[:i], t.controlIDs[i+1:]...)
			t.touch(actor, now)
			return nil
		}
	}
	return goerr.Wrap(ErrNotLinked, "control is not linked to this treatment",
		goerr.V("control_id", id))
}

// Deactivate retires the treatment. Records are never physically deleted.
func (t *Treatment) Deactivate(actor string, now time.Time) {
	t.active = false
	t.touch(actor, now)
}

// Progress returns the completion percentage for the current status
func (t *Treatment) Progress() int {
	return t.status.Progress()
}

// IsOverdue reports whether the due date has passed while the treatment is
// still pending. Implemented, verified, and cancelled treatments are never
// overdue.
func (t *Treatment) IsOverdue(asOf time.Time) bool {
	if t.dueDate == nil {
		return false
	}
	if t.status.ExcludesOverdue() {
		return false
	}
	return asOf.After(*t.dueDate)
}

// ID returns the treatment identifier
func (t *Treatment) ID() TreatmentID { return t.id }

// RiskID returns the identifier of the risk this treatment addresses
func (t *Treatment) RiskID() RiskID { return t.riskID }

// Name returns the treatment name
func (t *Treatment) Name() string { return t.name }

// Description returns the treatment description
func (t *Treatment) Description() string { return t.description }

// Type returns the treatment strategy
func (t *Treatment) Type() types.TreatmentType { return t.treatmentType }

// Status returns the execution status
func (t *Treatment) Status() types.TreatmentStatus { return t.status }

// DueDate returns the target completion date, if set
func (t *Treatment) DueDate() *time.Time {
	if t.dueDate == nil {
		return nil
	}
	d := *t.dueDate
	return &d
}

// CompletedDate returns the derived completion date, if reached
func (t *Treatment) CompletedDate() *time.Time {
	if t.completedDate == nil {
		return nil
	}
	d := *t.completedDate
	return &d
}

// Assignee returns the person responsible for execution, empty if unassigned
func (t *Treatment) Assignee() string { return t.assignee }

// Cost returns the estimated cost, if set
func (t *Treatment) Cost() *float64 {
	if t.cost == nil {
		return nil
	}
	c := *t.cost
	return &c
}

// ControlIDs returns the linked control references
func (t *Treatment) ControlIDs() []types.ControlID {
	return append([]types.ControlID(nil), t.controlIDs...)
}

// IsActive reports whether the treatment is still active
func (t *Treatment) IsActive() bool { return t.active }

// CreatedBy returns the creating user
func (t *Treatment) CreatedBy() string { return t.createdBy }

// CreatedAt returns the creation time
func (t *Treatment) CreatedAt() time.Time { return t.createdAt }

// UpdatedBy returns the user of the most recent change
func (t *Treatment) UpdatedBy() string { return t.updatedBy }

// UpdatedAt returns the time of the most recent change
func (t *Treatment) UpdatedAt() time.Time { return t.updatedAt }
