package interfaces

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/model"
)

type TreatmentRepository interface {
	// Get retrieves a treatment by ID
	Get(ctx context.Context, id model.TreatmentID) (*model.Treatment, error)

	// Put stores a treatment, inserting or replacing by ID
	Put(ctx context.Context, treatment *model.Treatment) error

	// ListByRisk retrieves the treatments referencing a risk
	ListByRisk(ctx context.Context, riskID model.RiskID, activeOnly bool) ([]*model.Treatment, error)

	// List retrieves treatments matching the filter
	List(ctx context.Context, filter model.TreatmentFilter) ([]*model.Treatment, error)

	// Count returns the number of treatments matching the filter, ignoring pagination
	Count(ctx context.Context, filter model.TreatmentFilter) (int64, error)
}
