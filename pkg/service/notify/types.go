package notify

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

// Service delivers risk register notifications. Implementations must be safe
// to call with a nil receiver check skipped; callers hold the nil check.
type Service interface {
	// RiskStatusChanged announces a risk lifecycle transition
	RiskStatusChanged(ctx context.Context, risk *model.Risk, from types.RiskStatus) error

	// ReviewDue reminds that a risk's periodic review is due
	ReviewDue(ctx context.Context, risk *model.Risk) error

	// TreatmentOverdue warns that a treatment has passed its due date
	TreatmentOverdue(ctx context.Context, treatment *model.Treatment, risk *model.Risk) error

	// AppetiteExceeded warns that a risk's severity is beyond the tolerated
	// limit for its category
	AppetiteExceeded(ctx context.Context, risk *model.Risk, limit types.Severity) error
}
