package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

var testTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestRisk(t *testing.T, options ...model.RiskOption) *model.Risk {
	t.Helper()
	risk, err := model.NewRisk(
		"Unpatched production servers",
		"Several production hosts are missing critical security patches",
		types.RiskCategoryTechnology,
		types.ImpactMajor,
		types.LikelihoodLikely,
		"U_ALICE",
		testTime,
		options...,
	)
	if err != nil {
		t.Fatalf("NewRisk() unexpected error: %v", err)
	}
	return risk
}

func TestNewRisk(t *testing.T) {
	risk := newTestRisk(t)

	if risk.ID() == "" {
		t.Error("ID() should be generated")
	}
	if risk.Status() != types.RiskStatusIdentified {
		t.Errorf("Status() = %v, want IDENTIFIED", risk.Status())
	}
	if !risk.IsActive() {
		t.Error("IsActive() should be true on creation")
	}
	if risk.InherentScore().Value() != 16 {
		t.Errorf("InherentScore().Value() = %v, want 16", risk.InherentScore().Value())
	}
	if risk.InherentScore().Severity() != types.SeverityHigh {
		t.Errorf("InherentScore().Severity() = %v, want HIGH", risk.InherentScore().Severity())
	}
	if risk.ResidualScore() != nil {
		t.Error("ResidualScore() should be nil on creation")
	}
	if risk.CreatedBy() != "U_ALICE" || risk.UpdatedBy() != "U_ALICE" {
		t.Errorf("audit users = %v/%v, want U_ALICE", risk.CreatedBy(), risk.UpdatedBy())
	}
	if !risk.CreatedAt().Equal(testTime) || !risk.UpdatedAt().Equal(testTime) {
		t.Errorf("audit times = %v/%v, want %v", risk.CreatedAt(), risk.UpdatedAt(), testTime)
	}
}

func TestNewRisk_Validation(t *testing.T) {
	tests := []struct {
		name        string
		riskName    string
		description string
		category    types.RiskCategory
		impact      types.Impact
		likelihood  types.Likelihood
		createdBy   string
	}{
		{
			name:        "name too short",
			riskName:    "ab",
			description: "desc",
			category:    types.RiskCategoryTechnology,
			impact:      types.ImpactMajor,
			likelihood:  types.LikelihoodLikely,
			createdBy:   "U_ALICE",
		},
		{
			name:        "name too long",
			riskName:    stringOfLength(201),
			description: "desc",
			category:    types.RiskCategoryTechnology,
			impact:      types.ImpactMajor,
			likelihood:  types.LikelihoodLikely,
			createdBy:   "U_ALICE",
		},
		{
			name:        "description too long",
			riskName:    "Valid name",
			description: stringOfLength(2001),
			category:    types.RiskCategoryTechnology,
			impact:      types.ImpactMajor,
			likelihood:  types.LikelihoodLikely,
			createdBy:   "U_ALICE",
		},
		{
			name:        "unknown category",
			riskName:    "Valid name",
			description: "desc",
			category:    types.RiskCategory("LEGAL"),
			impact:      types.ImpactMajor,
			likelihood:  types.LikelihoodLikely,
			createdBy:   "U_ALICE",
		},
		{
			name:        "unknown impact",
			riskName:    "Valid name",
			description: "desc",
			category:    types.RiskCategoryTechnology,
			impact:      types.Impact("HUGE"),
			likelihood:  types.LikelihoodLikely,
			createdBy:   "U_ALICE",
		},
		{
			name:        "missing creator",
			riskName:    "Valid name",
			description: "desc",
			category:    types.RiskCategoryTechnology,
			impact:      types.ImpactMajor,
			likelihood:  types.LikelihoodLikely,
			createdBy:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.NewRisk(tt.riskName, tt.description, tt.category, tt.impact, tt.likelihood, tt.createdBy, testTime)
			if !errors.Is(err, model.ErrInvalidField) {
				t.Errorf("NewRisk() error = %v, want ErrInvalidField", err)
			}
		})
	}
}

func TestNewRisk_ClosedWithoutResidualRejected(t *testing.T) {
	_, err := model.NewRisk(
		"Closed from the start",
		"",
		types.RiskCategoryOperational,
		types.ImpactMinor,
		types.LikelihoodRare,
		"U_ALICE",
		testTime,
		model.WithStatus(types.RiskStatusClosed),
	)
	if !errors.Is(err, model.ErrIllegalTransition) {
		t.Errorf("NewRisk() error = %v, want ErrIllegalTransition", err)
	}
}

func TestNewRisk_Options(t *testing.T) {
	risk := newTestRisk(t,
		model.WithStatus(types.RiskStatusMitigating),
		model.WithTags("patching", "patching", " infra ", ""),
		model.WithControls("AC-2", "AC-2", "SI-2"),
	)

	if risk.Status() != types.RiskStatusMitigating {
		t.Errorf("Status() = %v, want MITIGATING", risk.Status())
	}

	tags := risk.Tags()
	if len(tags) != 2 || tags[0] != "patching" || tags[1] != "infra" {
		t.Errorf("Tags() = %v, want [patching infra]", tags)
	}

	controls := risk.ControlIDs()
	if len(controls) != 2 {
		t.Errorf("ControlIDs() = %v, want two entries", controls)
	}
}

func TestRisk_UpdateInherentAssessment(t *testing.T) {
	risk := newTestRisk(t)
	later := testTime.Add(time.Hour)

	if err := risk.UpdateInherentAssessment(types.ImpactSevere, types.LikelihoodAlmostCertain, "U_BOB", later); err != nil {
		t.Fatalf("UpdateInherentAssessment() unexpected error: %v", err)
	}

	if risk.Status() != types.RiskStatusAssessed {
		t.Errorf("Status() = %v, want ASSESSED after first assessment", risk.Status())
	}
	if risk.InherentScore().Value() != 25 {
		t.Errorf("InherentScore().Value() = %v, want 25", risk.InherentScore().Value())
	}
	if risk.UpdatedBy() != "U_BOB" {
		t.Errorf("UpdatedBy() = %v, want U_BOB", risk.UpdatedBy())
	}

	// Repeating the assessment must not regress the status
	if err := risk.UpdateStatus(types.RiskStatusMitigating, "U_BOB", later); err != nil {
		t.Fatalf("UpdateStatus() unexpected error: %v", err)
	}
	if err := risk.UpdateInherentAssessment(types.ImpactModerate, types.LikelihoodPossible, "U_BOB", later); err != nil {
		t.Fatalf("UpdateInherentAssessment() unexpected error: %v", err)
	}
	if risk.Status() != types.RiskStatusMitigating {
		t.Errorf("Status() = %v, want MITIGATING to be preserved", risk.Status())
	}
}

func TestRisk_UpdateResidualAssessment(t *testing.T) {
	risk := newTestRisk(t)

	if err := risk.UpdateResidualAssessment(types.ImpactMinor, types.LikelihoodUnlikely, "U_BOB", testTime); err != nil {
		t.Fatalf("UpdateResidualAssessment() unexpected error: %v", err)
	}

	residual := risk.ResidualScore()
	if residual == nil {
		t.Fatal("ResidualScore() = nil, want score")
	}
	if residual.Value() != 4 {
		t.Errorf("ResidualScore().Value() = %v, want 4", residual.Value())
	}
	if risk.Status() != types.RiskStatusIdentified {
		t.Errorf("Status() = %v, residual assessment must not change status", risk.Status())
	}
}

func TestRisk_CloseRequiresResidual(t *testing.T) {
	risk := newTestRisk(t)

	if err := risk.Close("U_ALICE", testTime); !errors.Is(err, model.ErrIllegalTransition) {
		t.Errorf("Close() without residual error = %v, want ErrIllegalTransition", err)
	}
	if risk.Status() == types.RiskStatusClosed {
		t.Error("Status() should not be CLOSED after failed close")
	}

	if err := risk.UpdateResidualAssessment(types.ImpactMinor, types.LikelihoodRare, "U_ALICE", testTime); err != nil {
		t.Fatalf("UpdateResidualAssessment() unexpected error: %v", err)
	}
	if err := risk.Close("U_ALICE", testTime); err != nil {
		t.Fatalf("Close() after residual unexpected error: %v", err)
	}
	if risk.Status() != types.RiskStatusClosed {
		t.Errorf("Status() = %v, want CLOSED", risk.Status())
	}
}

func TestRisk_UpdateStatus(t *testing.T) {
	risk := newTestRisk(t)

	// Transitions other than CLOSED carry no preconditions
	if err := risk.UpdateStatus(types.RiskStatusAccepted, "U_ALICE", testTime); err != nil {
		t.Fatalf("UpdateStatus(ACCEPTED) unexpected error: %v", err)
	}
	if err := risk.UpdateStatus(types.RiskStatusIdentified, "U_ALICE", testTime); err != nil {
		t.Fatalf("UpdateStatus(IDENTIFIED) unexpected error: %v", err)
	}

	if err := risk.UpdateStatus(types.RiskStatus("OPEN"), "U_ALICE", testTime); !errors.Is(err, model.ErrInvalidField) {
		t.Errorf("UpdateStatus(OPEN) error = %v, want ErrInvalidField", err)
	}
}

func TestRisk_ReductionPercentage(t *testing.T) {
	risk := newTestRisk(t) // inherent 16

	if _, ok := risk.ReductionPercentage(); ok {
		t.Error("ReductionPercentage() should be undefined without residual")
	}

	if err := risk.UpdateResidualAssessment(types.ImpactMinor, types.LikelihoodUnlikely, "U_ALICE", testTime); err != nil {
		t.Fatalf("UpdateResidualAssessment() unexpected error: %v", err)
	}

	// (16 - 4) / 16 = 75%
	got, ok := risk.ReductionPercentage()
	if !ok {
		t.Fatal("ReductionPercentage() should be defined with residual")
	}
	if got != 75 {
		t.Errorf("ReductionPercentage() = %v, want 75", got)
	}

	// (16 - 6) / 16 = 62.5% rounds to 63
	if err := risk.UpdateResidualAssessment(types.ImpactMinor, types.LikelihoodPossible, "U_ALICE", testTime); err != nil {
		t.Fatalf("UpdateResidualAssessment() unexpected error: %v", err)
	}
	got, _ = risk.ReductionPercentage()
	if got != 63 {
		t.Errorf("ReductionPercentage() = %v, want 63", got)
	}
}

func TestRisk_ControlLinks(t *testing.T) {
	risk := newTestRisk(t)

	if err := risk.LinkControl("AC-2", "U_ALICE", testTime); err != nil {
		t.Fatalf("LinkControl() unexpected error: %v", err)
	}
	if err := risk.LinkControl("AC-2", "U_ALICE", testTime); !errors.Is(err, model.ErrAlreadyLinked) {
		t.Errorf("LinkControl() duplicate error = %v, want ErrAlreadyLinked", err)
	}
	if err := risk.UnlinkControl("AC-2", "U_ALICE", testTime); err != nil {
		t.Fatalf("UnlinkControl() unexpected error: %v", err)
	}
	if err := risk.UnlinkControl("AC-2", "U_ALICE", testTime); !errors.Is(err, model.ErrNotLinked) {
		t.Errorf("UnlinkControl() missing error = %v, want ErrNotLinked", err)
	}
}

func TestRisk_AssetLinks(t *testing.T) {
	risk := newTestRisk(t)

	if err := risk.LinkAsset("asset-001", "U_ALICE", testTime); err != nil {
		t.Fatalf("LinkAsset() unexpected error: %v", err)
	}
	if err := risk.LinkAsset("asset-001", "U_ALICE", testTime); !errors.Is(err, model.ErrAlreadyLinked) {
		t.Errorf("LinkAsset() duplicate error = %v, want ErrAlreadyLinked", err)
	}

	// A risk cannot list itself as an affected asset
	self := types.AssetID(risk.ID())
	if err := risk.LinkAsset(self, "U_ALICE", testTime); !errors.Is(err, model.ErrInvalidField) {
		t.Errorf("LinkAsset(self) error = %v, want ErrInvalidField", err)
	}

	if err := risk.UnlinkAsset("asset-999", "U_ALICE", testTime); !errors.Is(err, model.ErrNotLinked) {
		t.Errorf("UnlinkAsset() missing error = %v, want ErrNotLinked", err)
	}
}

func TestRisk_ReviewFlow(t *testing.T) {
	risk := newTestRisk(t)

	if err := risk.MarkReviewed(testTime, "U_ALICE", testTime); !errors.Is(err, model.ErrIllegalTransition) {
		t.Errorf("MarkReviewed() without cadence error = %v, want ErrIllegalTransition", err)
	}

	if err := risk.SetReviewPeriod(0, "U_ALICE", testTime); !errors.Is(err, model.ErrInvalidField) {
		t.Errorf("SetReviewPeriod(0) error = %v, want ErrInvalidField", err)
	}

	if err := risk.SetReviewPeriod(6, "U_ALICE", testTime); err != nil {
		t.Fatalf("SetReviewPeriod() unexpected error: %v", err)
	}
	if risk.IsReviewDue(testTime.AddDate(1, 0, 0)) {
		t.Error("IsReviewDue() should be false before the first recorded review")
	}

	reviewedAt := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	if err := risk.MarkReviewed(reviewedAt, "U_ALICE", reviewedAt); err != nil {
		t.Fatalf("MarkReviewed() unexpected error: %v", err)
	}

	if risk.IsReviewDue(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Error("IsReviewDue() should be false before the next review date")
	}
	if !risk.IsReviewDue(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("IsReviewDue() should be true on the next review date")
	}

	// Changing the period keeps the last review and recomputes the next one
	if err := risk.SetReviewPeriod(3, "U_ALICE", reviewedAt); err != nil {
		t.Fatalf("SetReviewPeriod() unexpected error: %v", err)
	}
	review := risk.Review()
	if review == nil {
		t.Fatal("Review() = nil, want cadence")
	}
	wantNext := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	next := review.NextReview()
	if next == nil || !next.Equal(wantNext) {
		t.Errorf("NextReview() = %v, want %v", next, wantNext)
	}
}

func TestRisk_AssignOwner(t *testing.T) {
	risk := newTestRisk(t)

	if err := risk.AssignOwner("", "Dana", "Security", "U_ALICE", testTime); !errors.Is(err, model.ErrInvalidField) {
		t.Errorf("AssignOwner() without user ID error = %v, want ErrInvalidField", err)
	}

	if err := risk.AssignOwner("U_DANA", "Dana", "Security", "U_ALICE", testTime); err != nil {
		t.Fatalf("AssignOwner() unexpected error: %v", err)
	}

	owner := risk.Owner()
	if owner == nil {
		t.Fatal("Owner() = nil, want assigned owner")
	}
	if owner.UserID != "U_DANA" || owner.Department != "Security" {
		t.Errorf("Owner() = %+v, want U_DANA in Security", owner)
	}
	if !owner.AssignedAt.Equal(testTime) {
		t.Errorf("Owner().AssignedAt = %v, want %v", owner.AssignedAt, testTime)
	}
}

func TestRisk_Deactivate(t *testing.T) {
	risk := newTestRisk(t)

	risk.Deactivate("U_ALICE", testTime)
	if risk.IsActive() {
		t.Error("IsActive() should be false after Deactivate")
	}
}

func TestRisk_RecordRoundTrip(t *testing.T) {
	risk := newTestRisk(t, model.WithTags("infra"), model.WithControls("AC-2"), model.WithAssets("asset-001"))
	if err := risk.UpdateResidualAssessment(types.ImpactMinor, types.LikelihoodUnlikely, "U_BOB", testTime); err != nil {
		t.Fatalf("UpdateResidualAssessment() unexpected error: %v", err)
	}
	if err := risk.AssignOwner("U_DANA", "Dana", "Security", "U_BOB", testTime); err != nil {
		t.Fatalf("AssignOwner() unexpected error: %v", err)
	}
	if err := risk.SetReviewPeriod(6, "U_BOB", testTime); err != nil {
		t.Fatalf("SetReviewPeriod() unexpected error: %v", err)
	}
	if err := risk.MarkReviewed(testTime, "U_BOB", testTime); err != nil {
		t.Fatalf("MarkReviewed() unexpected error: %v", err)
	}

	rebuilt := model.RiskFromRecord(risk.Record())

	if rebuilt.ID() != risk.ID() {
		t.Errorf("ID mismatch: %v != %v", rebuilt.ID(), risk.ID())
	}
	if rebuilt.Status() != risk.Status() {
		t.Errorf("Status mismatch: %v != %v", rebuilt.Status(), risk.Status())
	}
	if rebuilt.InherentScore() != risk.InherentScore() {
		t.Errorf("InherentScore mismatch: %v != %v", rebuilt.InherentScore(), risk.InherentScore())
	}
	rebuiltResidual, originalResidual := rebuilt.ResidualScore(), risk.ResidualScore()
	if rebuiltResidual == nil || originalResidual == nil || *rebuiltResidual != *originalResidual {
		t.Errorf("ResidualScore mismatch: %v != %v", rebuiltResidual, originalResidual)
	}
	if rebuilt.Owner() == nil || rebuilt.Owner().UserID != "U_DANA" {
		t.Errorf("Owner mismatch: %+v", rebuilt.Owner())
	}
	rebuiltReview := rebuilt.Review()
	if rebuiltReview == nil || rebuiltReview.Months() != 6 {
		t.Fatalf("Review mismatch: %+v", rebuiltReview)
	}
	wantNext := testTime.AddDate(0, 6, 0)
	if next := rebuiltReview.NextReview(); next == nil || !next.Equal(wantNext) {
		t.Errorf("NextReview mismatch: %v, want %v", next, wantNext)
	}
	if len(rebuilt.ControlIDs()) != 1 || len(rebuilt.AssetIDs()) != 1 || len(rebuilt.Tags()) != 1 {
		t.Errorf("link lists mismatch: %v %v %v", rebuilt.ControlIDs(), rebuilt.AssetIDs(), rebuilt.Tags())
	}
}

func stringOfLength(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = 'x'
	}
	return string(buf)
}
