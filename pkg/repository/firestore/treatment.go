package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type treatmentDocument struct {
	ID            string     `firestore:"id"`
	RiskID        string     `firestore:"risk_id"`
	Name          string     `firestore:"name"`
	Description   string     `firestore:"description"`
	Type          string     `firestore:"type"`
	Status        string     `firestore:"status"`
	DueDate       *time.Time `firestore:"due_date"`
	CompletedDate *time.Time `firestore:"completed_date"`
	Assignee      string     `firestore:"assignee"`
	Cost          *float64   `firestore:"cost"`
	ControlIDs    []string   `firestore:"control_ids"`
	Active        bool       `firestore:"active"`
	CreatedBy     string     `firestore:"created_by"`
	CreatedAt     time.Time  `firestore:"created_at"`
	UpdatedBy     string     `firestore:"updated_by"`
	UpdatedAt     time.Time  `firestore:"updated_at"`
}

func treatmentToDocument(rec model.TreatmentRecord) *treatmentDocument {
	return &treatmentDocument{
		ID:            string(rec.ID),
		RiskID:        string(rec.RiskID),
		Name:          rec.Name,
		Description:   rec.Description,
		Type:          string(rec.Type),
		Status:        string(rec.Status),
		DueDate:       rec.DueDate,
		CompletedDate: rec.CompletedDate,
		Assignee:      rec.Assignee,
		Cost:          rec.Cost,
		ControlIDs:    controlIDsToStrings(rec.ControlIDs),
		Active:        rec.Active,
		CreatedBy:     rec.CreatedBy,
		CreatedAt:     rec.CreatedAt,
		UpdatedBy:     rec.UpdatedBy,
		UpdatedAt:     rec.UpdatedAt,
	}
}

func documentToTreatment(doc treatmentDocument) *model.Treatment {
	rec := model.TreatmentRecord{
		ID:            model.TreatmentID(doc.ID),
		RiskID:        model.RiskID(doc.RiskID),
		Name:          doc.Name,
		Description:   doc.Description,
		Type:          types.TreatmentType(doc.Type),
		Status:        types.TreatmentStatus(doc.Status),
		DueDate:       doc.DueDate,
		CompletedDate: doc.CompletedDate,
		Assignee:      doc.Assignee,
		Cost:          doc.Cost,
		ControlIDs:    stringsToControlIDs(doc.ControlIDs),
		Active:        doc.Active,
		CreatedBy:     doc.CreatedBy,
		CreatedAt:     doc.CreatedAt,
		UpdatedBy:     doc.UpdatedBy,
		UpdatedAt:     doc.UpdatedAt,
	}
	return model.TreatmentFromRecord(rec)
}

type treatmentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTreatmentRepository(client *firestore.Client) *treatmentRepository {
	return &treatmentRepository{
		client: client,
	}
}

func (r *treatmentRepository) treatmentsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_treatments"
	}
	return "treatments"
}

func (r *treatmentRepository) Get(ctx context.Context, id model.TreatmentID) (*model.Treatment, error) {
	docRef := r.client.Collection(r.treatmentsCollection()).Doc(string(id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "treatment not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get treatment", goerr.V("id", id))
	}

	var treatmentDoc treatmentDocument
	if err := doc.DataTo(&treatmentDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal treatment", goerr.V("id", id))
	}

	return documentToTreatment(treatmentDoc), nil
}

func (r *treatmentRepository) Put(ctx context.Context, treatment *model.Treatment) error {
	rec := treatment.Record()
	docRef := r.client.Collection(r.treatmentsCollection()).Doc(string(rec.ID))
	if _, err := docRef.Set(ctx, treatmentToDocument(rec)); err != nil {
		return goerr.Wrap(err, "failed to put treatment", goerr.V("id", rec.ID))
	}
	return nil
}

func (r *treatmentRepository) ListByRisk(ctx context.Context, riskID model.RiskID, activeOnly bool) ([]*model.Treatment, error) {
	return r.List(ctx, model.TreatmentFilter{
		RiskID:     riskID,
		ActiveOnly: activeOnly,
	})
}

// treatmentResidualFilter holds the predicates evaluated client-side. The
// overdue status exclusion is a NOT-IN condition Firestore cannot combine with
// the due date range filter.
type treatmentResidualFilter struct {
	excludeDone bool
}

func (f treatmentResidualFilter) empty() bool {
	return !f.excludeDone
}

func (f treatmentResidualFilter) match(doc treatmentDocument) bool {
	if f.excludeDone && types.TreatmentStatus(doc.Status).ExcludesOverdue() {
		return false
	}
	return true
}

// buildQuery pushes as much of the filter as Firestore supports into the
// query and returns the remainder for client-side evaluation
func (r *treatmentRepository) buildQuery(filter model.TreatmentFilter) (firestore.Query, treatmentResidualFilter) {
	q := r.client.Collection(r.treatmentsCollection()).Query
	var residual treatmentResidualFilter

	if filter.ActiveOnly {
		q = q.Where("active", "==", true)
	}
	if filter.RiskID != "" {
		q = q.Where("risk_id", "==", string(filter.RiskID))
	}
	if filter.Status != "" {
		q = q.Where("status", "==", string(filter.Status))
	}
	if filter.Type != "" {
		q = q.Where("type", "==", string(filter.Type))
	}
	if filter.Assignee != "" {
		q = q.Where("assignee", "==", filter.Assignee)
	}

	if filter.OverdueAt != nil {
		q = q.Where("due_date", "<", *filter.OverdueAt)
		q = q.OrderBy("due_date", firestore.Asc)
		// Applied even when a status is pushed down: a completed status
		// combined with OverdueAt must match nothing
		residual.excludeDone = true
	} else {
		q = q.OrderBy("created_at", firestore.Asc)
	}

	return q, residual
}

func (r *treatmentRepository) List(ctx context.Context, filter model.TreatmentFilter) ([]*model.Treatment, error) {
	q, residual := r.buildQuery(filter)

	pushDownPagination := residual.empty()
	if pushDownPagination {
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var docs []treatmentDocument
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate treatments")
		}

		var treatmentDoc treatmentDocument
		if err := doc.DataTo(&treatmentDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal treatment")
		}
		if !residual.match(treatmentDoc) {
			continue
		}
		docs = append(docs, treatmentDoc)
	}

	if !pushDownPagination {
		docs = sliceDocs(docs, filter.Limit, filter.Offset)
	}

	treatments := make([]*model.Treatment, 0, len(docs))
	for _, doc := range docs {
		treatments = append(treatments, documentToTreatment(doc))
	}
	return treatments, nil
}

func (r *treatmentRepository) Count(ctx context.Context, filter model.TreatmentFilter) (int64, error) {
	filter.Limit = 0
	filter.Offset = 0
	q, residual := r.buildQuery(filter)

	if residual.empty() {
		results, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
		if err != nil {
			return 0, goerr.Wrap(err, "failed to count treatments")
		}
		value, ok := results["all"]
		if !ok {
			return 0, goerr.New("count result missing from aggregation")
		}
		return value.(*firestorepb.Value).GetIntegerValue(), nil
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var count int64
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to iterate treatments")
		}

		var treatmentDoc treatmentDocument
		if err := doc.DataTo(&treatmentDoc); err != nil {
			return 0, goerr.Wrap(err, "failed to unmarshal treatment")
		}
		if residual.match(treatmentDoc) {
			count++
		}
	}
	return count, nil
}
