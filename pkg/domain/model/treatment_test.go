package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

func newTestTreatment(t *testing.T, options ...model.TreatmentOption) *model.Treatment {
	t.Helper()
	treatment, err := model.NewTreatment(
		model.NewRiskID(),
		"Roll out patch automation",
		"Automate OS patching for all production hosts",
		types.TreatmentTypeMitigate,
		"U_ALICE",
		testTime,
		options...,
	)
	if err != nil {
		t.Fatalf("NewTreatment() unexpected error: %v", err)
	}
	return treatment
}

func TestNewTreatment(t *testing.T) {
	dueDate := testTime.AddDate(0, 1, 0)
	treatment := newTestTreatment(t,
		model.WithDueDate(dueDate),
		model.WithAssignee("U_BOB"),
		model.WithCost(12500),
	)

	if treatment.ID() == "" {
		t.Error("ID() should be generated")
	}
	if treatment.Status() != types.TreatmentStatusPlanned {
		t.Errorf("Status() = %v, want PLANNED", treatment.Status())
	}
	if treatment.Progress() != 10 {
		t.Errorf("Progress() = %v, want 10", treatment.Progress())
	}
	if treatment.CompletedDate() != nil {
		t.Error("CompletedDate() should be nil on creation")
	}
	if got := treatment.DueDate(); got == nil || !got.Equal(dueDate) {
		t.Errorf("DueDate() = %v, want %v", got, dueDate)
	}
	if treatment.Assignee() != "U_BOB" {
		t.Errorf("Assignee() = %v, want U_BOB", treatment.Assignee())
	}
	if cost := treatment.Cost(); cost == nil || *cost != 12500 {
		t.Errorf("Cost() = %v, want 12500", cost)
	}
	if !treatment.IsActive() {
		t.Error("IsActive() should be true on creation")
	}
}

func TestNewTreatment_Validation(t *testing.T) {
	riskID := model.NewRiskID()

	tests := []struct {
		name          string
		riskID        model.RiskID
		treatmentName string
		description   string
		treatmentType types.TreatmentType
		createdBy     string
		options       []model.TreatmentOption
	}{
		{
			name:          "missing risk ID",
			riskID:        "",
			treatmentName: "Valid name",
			treatmentType: types.TreatmentTypeMitigate,
			createdBy:     "U_ALICE",
		},
		{
			name:          "empty name",
			riskID:        riskID,
			treatmentName: "",
			treatmentType: types.TreatmentTypeMitigate,
			createdBy:     "U_ALICE",
		},
		{
			name:          "name too long",
			riskID:        riskID,
			treatmentName: stringOfLength(201),
			treatmentType: types.TreatmentTypeMitigate,
			createdBy:     "U_ALICE",
		},
		{
			name:          "description too long",
			riskID:        riskID,
			treatmentName: "Valid name",
			description:   stringOfLength(1001),
			treatmentType: types.TreatmentTypeMitigate,
			createdBy:     "U_ALICE",
		},
		{
			name:          "unknown type",
			riskID:        riskID,
			treatmentName: "Valid name",
			treatmentType: types.TreatmentType("IGNORE"),
			createdBy:     "U_ALICE",
		},
		{
			name:          "missing creator",
			riskID:        riskID,
			treatmentName: "Valid name",
			treatmentType: types.TreatmentTypeMitigate,
			createdBy:     "",
		},
		{
			name:          "negative cost",
			riskID:        riskID,
			treatmentName: "Valid name",
			treatmentType: types.TreatmentTypeMitigate,
			createdBy:     "U_ALICE",
			options:       []model.TreatmentOption{model.WithCost(-100)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.NewTreatment(tt.riskID, tt.treatmentName, tt.description, tt.treatmentType, tt.createdBy, testTime, tt.options...)
			if !errors.Is(err, model.ErrInvalidField) {
				t.Errorf("NewTreatment() error = %v, want ErrInvalidField", err)
			}
		})
	}
}

func TestTreatment_CompletedDateLifecycle(t *testing.T) {
	treatment := newTestTreatment(t)
	implementedAt := testTime.Add(24 * time.Hour)
	verifiedAt := testTime.Add(48 * time.Hour)

	if err := treatment.UpdateStatus(types.TreatmentStatusImplemented, "U_BOB", implementedAt); err != nil {
		t.Fatalf("UpdateStatus(IMPLEMENTED) unexpected error: %v", err)
	}
	completed := treatment.CompletedDate()
	if completed == nil || !completed.Equal(implementedAt) {
		t.Errorf("CompletedDate() = %v, want %v", completed, implementedAt)
	}

	// Moving on to VERIFIED keeps the first completion date
	if err := treatment.UpdateStatus(types.TreatmentStatusVerified, "U_BOB", verifiedAt); err != nil {
		t.Fatalf("UpdateStatus(VERIFIED) unexpected error: %v", err)
	}
	completed = treatment.CompletedDate()
	if completed == nil || !completed.Equal(implementedAt) {
		t.Errorf("CompletedDate() = %v, want first completion %v", completed, implementedAt)
	}

	// Regressing clears the completion date
	if err := treatment.UpdateStatus(types.TreatmentStatusInProgress, "U_BOB", verifiedAt); err != nil {
		t.Fatalf("UpdateStatus(IN_PROGRESS) unexpected error: %v", err)
	}
	if treatment.CompletedDate() != nil {
		t.Errorf("CompletedDate() = %v, want nil after regression", treatment.CompletedDate())
	}
}

func TestTreatment_CompletedDateUntouchedByTerminalStatuses(t *testing.T) {
	treatment := newTestTreatment(t)
	implementedAt := testTime.Add(24 * time.Hour)

	if err := treatment.UpdateStatus(types.TreatmentStatusImplemented, "U_BOB", implementedAt); err != nil {
		t.Fatalf("UpdateStatus(IMPLEMENTED) unexpected error: %v", err)
	}
	if err := treatment.UpdateStatus(types.TreatmentStatusIneffective, "U_BOB", implementedAt.Add(time.Hour)); err != nil {
		t.Fatalf("UpdateStatus(INEFFECTIVE) unexpected error: %v", err)
	}

	completed := treatment.CompletedDate()
	if completed == nil || !completed.Equal(implementedAt) {
		t.Errorf("CompletedDate() = %v, want %v preserved by INEFFECTIVE", completed, implementedAt)
	}
}

func TestTreatment_IsOverdue(t *testing.T) {
	pastDue := testTime.AddDate(0, -1, 0)

	tests := []struct {
		name   string
		status types.TreatmentStatus
		due    *time.Time
		asOf   time.Time
		want   bool
	}{
		{
			name:   "past due while planned",
			status: types.TreatmentStatusPlanned,
			due:    &pastDue,
			asOf:   testTime,
			want:   true,
		},
		{
			name:   "past due while in progress",
			status: types.TreatmentStatusInProgress,
			due:    &pastDue,
			asOf:   testTime,
			want:   true,
		},
		{
			name:   "past due while ineffective",
			status: types.TreatmentStatusIneffective,
			due:    &pastDue,
			asOf:   testTime,
			want:   true,
		},
		{
			name:   "implemented is never overdue",
			status: types.TreatmentStatusImplemented,
			due:    &pastDue,
			asOf:   testTime,
			want:   false,
		},
		{
			name:   "verified is never overdue",
			status: types.TreatmentStatusVerified,
			due:    &pastDue,
			asOf:   testTime,
			want:   false,
		},
		{
			name:   "cancelled is never overdue",
			status: types.TreatmentStatusCancelled,
			due:    &pastDue,
			asOf:   testTime,
			want:   false,
		},
		{
			name:   "no due date",
			status: types.TreatmentStatusPlanned,
			due:    nil,
			asOf:   testTime,
			want:   false,
		},
		{
			name:   "on the due date is not overdue",
			status: types.TreatmentStatusPlanned,
			due:    &testTime,
			asOf:   testTime,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			treatment := newTestTreatment(t)
			treatment.SetDueDate(tt.due, "U_ALICE", testTime)
			if err := treatment.UpdateStatus(tt.status, "U_ALICE", testTime); err != nil {
				t.Fatalf("UpdateStatus() unexpected error: %v", err)
			}
			if got := treatment.IsOverdue(tt.asOf); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTreatment_SetCost(t *testing.T) {
	treatment := newTestTreatment(t)

	if err := treatment.SetCost(-1, "U_ALICE", testTime); !errors.Is(err, model.ErrInvalidField) {
		t.Errorf("SetCost(-1) error = %v, want ErrInvalidField", err)
	}
	if err := treatment.SetCost(0, "U_ALICE", testTime); err != nil {
		t.Fatalf("SetCost(0) unexpected error: %v", err)
	}
	if cost := treatment.Cost(); cost == nil || *cost != 0 {
		t.Errorf("Cost() = %v, want 0", cost)
	}
}

func TestTreatment_ControlLinks(t *testing.T) {
	treatment := newTestTreatment(t)

	if err := treatment.LinkControl("SI-2", "U_ALICE", testTime); err != nil {
		t.Fatalf("LinkControl() unexpected error: %v", err)
	}
	if err := treatment.LinkControl("SI-2", "U_ALICE", testTime); !errors.Is(err, model.ErrAlreadyLinked) {
		t.Errorf("LinkControl() duplicate error = %v, want ErrAlreadyLinked", err)
	}
	if err := treatment.UnlinkControl("SI-99", "U_ALICE", testTime); !errors.Is(err, model.ErrNotLinked) {
		t.Errorf("UnlinkControl() missing error = %v, want ErrNotLinked", err)
	}
}

func TestTreatment_RecordRoundTrip(t *testing.T) {
	dueDate := testTime.AddDate(0, 2, 0)
	treatment := newTestTreatment(t,
		model.WithDueDate(dueDate),
		model.WithAssignee("U_BOB"),
		model.WithCost(9800.50),
		model.WithTreatmentControls("SI-2"),
	)
	if err := treatment.UpdateStatus(types.TreatmentStatusImplemented, "U_BOB", testTime.Add(time.Hour)); err != nil {
		t.Fatalf("UpdateStatus() unexpected error: %v", err)
	}

	rebuilt := model.TreatmentFromRecord(treatment.Record())

	if rebuilt.ID() != treatment.ID() {
		t.Errorf("ID mismatch: %v != %v", rebuilt.ID(), treatment.ID())
	}
	if rebuilt.RiskID() != treatment.RiskID() {
		t.Errorf("RiskID mismatch: %v != %v", rebuilt.RiskID(), treatment.RiskID())
	}
	if rebuilt.Status() != types.TreatmentStatusImplemented {
		t.Errorf("Status mismatch: %v", rebuilt.Status())
	}
	rebuiltCompleted, originalCompleted := rebuilt.CompletedDate(), treatment.CompletedDate()
	if rebuiltCompleted == nil || originalCompleted == nil || !rebuiltCompleted.Equal(*originalCompleted) {
		t.Errorf("CompletedDate mismatch: %v != %v", rebuiltCompleted, originalCompleted)
	}
	if cost := rebuilt.Cost(); cost == nil || *cost != 9800.50 {
		t.Errorf("Cost mismatch: %v", cost)
	}
	if len(rebuilt.ControlIDs()) != 1 {
		t.Errorf("ControlIDs mismatch: %v", rebuilt.ControlIDs())
	}
}
