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

type ownerDocument struct {
	UserID     string    `firestore:"user_id"`
	Name       string    `firestore:"name"`
	Department string    `firestore:"department"`
	AssignedAt time.Time `firestore:"assigned_at"`
}

type riskDocument struct {
	ID                 string         `firestore:"id"`
	Name               string         `firestore:"name"`
	Description        string         `firestore:"description"`
	Category           string         `firestore:"category"`
	Status             string         `firestore:"status"`
	InherentImpact     string         `firestore:"inherent_impact"`
	InherentLikelihood string         `firestore:"inherent_likelihood"`
	InherentScore      int            `firestore:"inherent_score"`
	InherentSeverity   string         `firestore:"inherent_severity"`
	ResidualImpact     *string        `firestore:"residual_impact"`
	ResidualLikelihood *string        `firestore:"residual_likelihood"`
	ResidualScore      *int           `firestore:"residual_score"`
	ResidualSeverity   *string        `firestore:"residual_severity"`
	Owner              *ownerDocument `firestore:"owner"`
	ControlIDs         []string       `firestore:"control_ids"`
	AssetIDs           []string       `firestore:"asset_ids"`
	ReviewPeriodMonths *int           `firestore:"review_period_months"`
	LastReviewedAt     *time.Time     `firestore:"last_reviewed_at"`
	NextReviewAt       *time.Time     `firestore:"next_review_at"`
	Tags               []string       `firestore:"tags"`
	Active             bool           `firestore:"active"`
	CreatedBy          string         `firestore:"created_by"`
	CreatedAt          time.Time      `firestore:"created_at"`
	UpdatedBy          string         `firestore:"updated_by"`
	UpdatedAt          time.Time      `firestore:"updated_at"`
}

func riskToDocument(rec model.RiskRecord) *riskDocument {
	doc := &riskDocument{
		ID:                 string(rec.ID),
		Name:               rec.Name,
		Description:        rec.Description,
		Category:           string(rec.Category),
		Status:             string(rec.Status),
		InherentImpact:     string(rec.InherentImpact),
		InherentLikelihood: string(rec.InherentLikelihood),
		InherentScore:      rec.InherentScore,
		InherentSeverity:   string(rec.InherentSeverity),
		ControlIDs:         controlIDsToStrings(rec.ControlIDs),
		AssetIDs:           assetIDsToStrings(rec.AssetIDs),
		ReviewPeriodMonths: rec.ReviewPeriodMonths,
		LastReviewedAt:     rec.LastReviewedAt,
		NextReviewAt:       rec.NextReviewAt,
		Tags:               rec.Tags,
		Active:             rec.Active,
		CreatedBy:          rec.CreatedBy,
		CreatedAt:          rec.CreatedAt,
		UpdatedBy:          rec.UpdatedBy,
		UpdatedAt:          rec.UpdatedAt,
	}
	if rec.ResidualImpact != nil {
		v := string(*rec.ResidualImpact)
		doc.ResidualImpact = &v
	}
	if rec.ResidualLikelihood != nil {
		v := string(*rec.ResidualLikelihood)
		doc.ResidualLikelihood = &v
	}
	if rec.ResidualScore != nil {
		doc.ResidualScore = rec.ResidualScore
	}
	if rec.ResidualSeverity != nil {
		v := string(*rec.ResidualSeverity)
		doc.ResidualSeverity = &v
	}
	if rec.Owner != nil {
		doc.Owner = &ownerDocument{
			UserID:     rec.Owner.UserID,
			Name:       rec.Owner.Name,
			Department: rec.Owner.Department,
			AssignedAt: rec.Owner.AssignedAt,
		}
	}
	return doc
}

func documentToRisk(doc riskDocument) *model.Risk {
	rec := model.RiskRecord{
		ID:                 model.RiskID(doc.ID),
		Name:               doc.Name,
		Description:        doc.Description,
		Category:           types.RiskCategory(doc.Category),
		Status:             types.RiskStatus(doc.Status),
		InherentImpact:     types.Impact(doc.InherentImpact),
		InherentLikelihood: types.Likelihood(doc.InherentLikelihood),
		InherentScore:      doc.InherentScore,
		InherentSeverity:   types.Severity(doc.InherentSeverity),
		ControlIDs:         stringsToControlIDs(doc.ControlIDs),
		AssetIDs:           stringsToAssetIDs(doc.AssetIDs),
		ReviewPeriodMonths: doc.ReviewPeriodMonths,
		LastReviewedAt:     doc.LastReviewedAt,
		NextReviewAt:       doc.NextReviewAt,
		Tags:               doc.Tags,
		Active:             doc.Active,
		CreatedBy:          doc.CreatedBy,
		CreatedAt:          doc.CreatedAt,
		UpdatedBy:          doc.UpdatedBy,
		UpdatedAt:          doc.UpdatedAt,
	}
	if doc.ResidualImpact != nil {
		v := types.Impact(*doc.ResidualImpact)
		rec.ResidualImpact = &v
	}
	if doc.ResidualLikelihood != nil {
		v := types.Likelihood(*doc.ResidualLikelihood)
		rec.ResidualLikelihood = &v
	}
	if doc.ResidualScore != nil {
		rec.ResidualScore = doc.ResidualScore
	}
	if doc.ResidualSeverity != nil {
		v := types.Severity(*doc.ResidualSeverity)
		rec.ResidualSeverity = &v
	}
	if doc.Owner != nil {
		rec.Owner = &model.Owner{
			UserID:     doc.Owner.UserID,
			Name:       doc.Owner.Name,
			Department: doc.Owner.Department,
			AssignedAt: doc.Owner.AssignedAt,
		}
	}
	return model.RiskFromRecord(rec)
}

func controlIDsToStrings(ids []types.ControlID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func stringsToControlIDs(ids []string) []types.ControlID {
	out := make([]types.ControlID, len(ids))
	for i, id := range ids {
		out[i] = types.ControlID(id)
	}
	return out
}

func assetIDsToStrings(ids []types.AssetID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func stringsToAssetIDs(ids []string) []types.AssetID {
	out := make([]types.AssetID, len(ids))
	for i, id := range ids {
		out[i] = types.AssetID(id)
	}
	return out
}

type riskRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRiskRepository(client *firestore.Client) *riskRepository {
	return &riskRepository{
		client: client,
	}
}

func (r *riskRepository) risksCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_risks"
	}
	return "risks"
}

func (r *riskRepository) Get(ctx context.Context, id model.RiskID) (*model.Risk, error) {
	docRef := r.client.Collection(r.risksCollection()).Doc(string(id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("id", id))
	}

	var riskDoc riskDocument
	if err := doc.DataTo(&riskDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal risk", goerr.V("id", id))
	}

	return documentToRisk(riskDoc), nil
}

func (r *riskRepository) Put(ctx context.Context, risk *model.Risk) error {
	rec := risk.Record()
	docRef := r.client.Collection(r.risksCollection()).Doc(string(rec.ID))
	if _, err := docRef.Set(ctx, riskToDocument(rec)); err != nil {
		return goerr.Wrap(err, "failed to put risk", goerr.V("id", rec.ID))
	}
	return nil
}

// riskResidualFilter holds the predicates Firestore cannot evaluate in the
// pushed-down query: only one array-contains clause is allowed per query, so
// extra list predicates are applied client-side.
type riskResidualFilter struct {
	controlID types.ControlID
	assetID   types.AssetID
	tag       string
}

func (f riskResidualFilter) empty() bool {
	return f.controlID == "" && f.assetID == "" && f.tag == ""
}

func (f riskResidualFilter) match(doc riskDocument) bool {
	if f.controlID != "" && !containsString(doc.ControlIDs, string(f.controlID)) {
		return false
	}
	if f.assetID != "" && !containsString(doc.AssetIDs, string(f.assetID)) {
		return false
	}
	if f.tag != "" && !containsString(doc.Tags, f.tag) {
		return false
	}
	return true
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// buildQuery pushes as much of the filter as Firestore supports into the
// query and returns the remainder for client-side evaluation. The first
// OrderBy must match the inequality field when one is present.
func (r *riskRepository) buildQuery(filter model.RiskFilter) (firestore.Query, riskResidualFilter) {
	q := r.client.Collection(r.risksCollection()).Query
	var residual riskResidualFilter

	if filter.ActiveOnly {
		q = q.Where("active", "==", true)
	}
	if filter.Category != "" {
		q = q.Where("category", "==", string(filter.Category))
	}
	if filter.Status != "" {
		q = q.Where("status", "==", string(filter.Status))
	}
	if filter.Severity != "" {
		q = q.Where("inherent_severity", "==", string(filter.Severity))
	}
	if filter.OwnerID != "" {
		q = q.Where("owner.user_id", "==", filter.OwnerID)
	}

	switch {
	case filter.ControlID != "":
		q = q.Where("control_ids", "array-contains", string(filter.ControlID))
		residual.assetID = filter.AssetID
		residual.tag = filter.Tag
	case filter.AssetID != "":
		q = q.Where("asset_ids", "array-contains", string(filter.AssetID))
		residual.tag = filter.Tag
	case filter.Tag != "":
		q = q.Where("tags", "array-contains", filter.Tag)
	}

	if filter.ReviewDueAt != nil {
		q = q.Where("next_review_at", "<=", *filter.ReviewDueAt)
		q = q.OrderBy("next_review_at", firestore.Asc)
	} else {
		q = q.OrderBy("created_at", firestore.Asc)
	}

	return q, residual
}

func (r *riskRepository) List(ctx context.Context, filter model.RiskFilter) ([]*model.Risk, error) {
	q, residual := r.buildQuery(filter)

	// Pagination can only be pushed down when nothing is filtered client-side
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

	var docs []riskDocument
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risks")
		}

		var riskDoc riskDocument
		if err := doc.DataTo(&riskDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal risk")
		}
		if !residual.match(riskDoc) {
			continue
		}
		docs = append(docs, riskDoc)
	}

	if !pushDownPagination {
		docs = sliceDocs(docs, filter.Limit, filter.Offset)
	}

	risks := make([]*model.Risk, 0, len(docs))
	for _, doc := range docs {
		risks = append(risks, documentToRisk(doc))
	}
	return risks, nil
}

func (r *riskRepository) Count(ctx context.Context, filter model.RiskFilter) (int64, error) {
	filter.Limit = 0
	filter.Offset = 0
	q, residual := r.buildQuery(filter)

	if residual.empty() {
		results, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
		if err != nil {
			return 0, goerr.Wrap(err, "failed to count risks")
		}
		value, ok := results["all"]
		if !ok {
			return 0, goerr.New("count result missing from aggregation")
		}
		return value.(*firestorepb.Value).GetIntegerValue(), nil
	}

	// Array predicates beyond the first must be counted client-side
	iter := q.Documents(ctx)
	defer iter.Stop()

	var count int64
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to iterate risks")
		}

		var riskDoc riskDocument
		if err := doc.DataTo(&riskDoc); err != nil {
			return 0, goerr.Wrap(err, "failed to unmarshal risk")
		}
		if residual.match(riskDoc) {
			count++
		}
	}
	return count, nil
}

func sliceDocs[T any](docs []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(docs) {
			return nil
		}
		docs = docs[offset:]
	}
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return docs
}
