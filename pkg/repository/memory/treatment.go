package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type treatmentRepository struct {
	mu         sync.RWMutex
	treatments map[model.TreatmentID]model.TreatmentRecord
}

func newTreatmentRepository() *treatmentRepository {
	return &treatmentRepository{
		treatments: make(map[model.TreatmentID]model.TreatmentRecord),
	}
}

func (r *treatmentRepository) Get(ctx context.Context, id model.TreatmentID) (*model.Treatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.treatments[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "treatment not found", goerr.V("id", id))
	}

	return model.TreatmentFromRecord(rec), nil
}

func (r *treatmentRepository) Put(ctx context.Context, treatment *model.Treatment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := treatment.Record()
	r.treatments[rec.ID] = rec
	return nil
}

func (r *treatmentRepository) ListByRisk(ctx context.Context, riskID model.RiskID, activeOnly bool) ([]*model.Treatment, error) {
	return r.List(ctx, model.TreatmentFilter{
		RiskID:     riskID,
		ActiveOnly: activeOnly,
	})
}

func (r *treatmentRepository) List(ctx context.Context, filter model.TreatmentFilter) ([]*model.Treatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []model.TreatmentRecord
	for _, rec := range r.treatments {
		if matchTreatmentRecord(rec, filter) {
			matched = append(matched, rec)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	matched = paginateTreatments(matched, filter.Limit, filter.Offset)

	treatments := make([]*model.Treatment, 0, len(matched))
	for _, rec := range matched {
		treatments = append(treatments, model.TreatmentFromRecord(rec))
	}
	return treatments, nil
}

func (r *treatmentRepository) Count(ctx context.Context, filter model.TreatmentFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, rec := range r.treatments {
		if matchTreatmentRecord(rec, filter) {
			count++
		}
	}
	return count, nil
}

func matchTreatmentRecord(rec model.TreatmentRecord, filter model.TreatmentFilter) bool {
	if filter.ActiveOnly && !rec.Active {
		return false
	}
	if filter.RiskID != "" && rec.RiskID != filter.RiskID {
		return false
	}
	if filter.Status != "" && rec.Status != filter.Status {
		return false
	}
	if filter.Type != "" && rec.Type != filter.Type {
		return false
	}
	if filter.Assignee != "" && rec.Assignee != filter.Assignee {
		return false
	}
	if filter.OverdueAt != nil {
		if rec.DueDate == nil || !rec.DueDate.Before(*filter.OverdueAt) {
			return false
		}
		if rec.Status.ExcludesOverdue() {
			return false
		}
	}
	return true
}

func paginateTreatments(recs []model.TreatmentRecord, limit, offset int) []model.TreatmentRecord {
	if offset > 0 {
		if offset >= len(recs) {
			return nil
		}
		recs = recs[offset:]
	}
	if limit > 0 && limit < len(recs) {
		recs = recs[:limit]
	}
	return recs
}
