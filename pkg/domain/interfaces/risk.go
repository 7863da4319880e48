package interfaces

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/model"
)

type RiskRepository interface {
	// Get retrieves a risk by ID
	Get(ctx context.Context, id model.RiskID) (*model.Risk, error)

	// Put stores a risk, inserting or replacing by ID
	Put(ctx context.Context, risk *model.Risk) error

	// List retrieves risks matching the filter
	List(ctx context.Context, filter model.RiskFilter) ([]*model.Risk, error)

	// Count returns the number of risks matching the filter, ignoring pagination
	Count(ctx context.Context, filter model.RiskFilter) (int64, error)
}
