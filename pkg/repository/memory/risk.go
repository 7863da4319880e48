package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type riskRepository struct {
	mu    sync.RWMutex
	risks map[model.RiskID]model.RiskRecord
}

func newRiskRepository() *riskRepository {
	return &riskRepository{
		risks: make(map[model.RiskID]model.RiskRecord),
	}
}

func (r *riskRepository) Get(ctx context.Context, id model.RiskID) (*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.risks[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id))
	}

	// Rebuilding from the record yields an independent copy
	return model.RiskFromRecord(rec), nil
}

func (r *riskRepository) Put(ctx context.Context, risk *model.Risk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := risk.Record()
	r.risks[rec.ID] = rec
	return nil
}

func (r *riskRepository) List(ctx context.Context, filter model.RiskFilter) ([]*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []model.RiskRecord
	for _, rec := range r.risks {
		if matchRiskRecord(rec, filter) {
			matched = append(matched, rec)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	matched = paginateRisks(matched, filter.Limit, filter.Offset)

	risks := make([]*model.Risk, 0, len(matched))
	for _, rec := range matched {
		risks = append(risks, model.RiskFromRecord(rec))
	}
	return risks, nil
}

func (r *riskRepository) Count(ctx context.Context, filter model.RiskFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, rec := range r.risks {
		if matchRiskRecord(rec, filter) {
			count++
		}
	}
	return count, nil
}

func matchRiskRecord(rec model.RiskRecord, filter model.RiskFilter) bool {
	if filter.ActiveOnly && !rec.Active {
		return false
	}
	if filter.Category != "" && rec.Category != filter.Category {
		return false
	}
	if filter.Status != "" && rec.Status != filter.Status {
		return false
	}
	if filter.Severity != "" && rec.InherentSeverity != filter.Severity {
		return false
	}
	if filter.OwnerID != "" && (rec.Owner == nil || rec.Owner.UserID != filter.OwnerID) {
		return false
	}
	if filter.ControlID != "" {
		found := false
		for _, id := range rec.ControlIDs {
			if id == filter.ControlID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.AssetID != "" {
		found := false
		for _, id := range rec.AssetIDs {
			if id == filter.AssetID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Tag != "" {
		found := false
		for _, tag := range rec.Tags {
			if tag == filter.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.ReviewDueAt != nil {
		if rec.NextReviewAt == nil || rec.NextReviewAt.After(*filter.ReviewDueAt) {
			return false
		}
	}
	return true
}

func paginateRisks(recs []model.RiskRecord, limit, offset int) []model.RiskRecord {
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
