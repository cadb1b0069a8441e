package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ersonp/kin-core/internal/domain/entities"
	"github.com/ersonp/kin-core/internal/domain/ports"
)

// DefaultParallelism bounds intent fan-out when none is configured.
const DefaultParallelism = 4

// intentNamespace seeds derived intent IDs.
var intentNamespace = uuid.MustParse("6f1c2a8e-4b7d-4e59-9a63-0d2f5b8c7e14")

func newID() string {
	return uuid.New().String()
}

// OrientEdge builds the stored edge for "other is t of focal". Directional
// types are stored from the other person's side, (other, focal, t);
// symmetric types from the focal side, (focal, other, t).
func OrientEdge(focalID, otherID string, t entities.RelationType) entities.Relationship {
	if t.IsSymmetric() {
		return entities.Relationship{PersonID: focalID, RelatedID: otherID, Type: t}
	}
	return entities.Relationship{PersonID: otherID, RelatedID: focalID, Type: t}
}

// IntentID returns the idempotency key of an intent: the client-supplied ID
// when present, else a UUIDv5 over the intent's content.
func IntentID(focalID string, in entities.Intent) string {
	if id := strings.TrimSpace(in.ID); id != "" {
		return id
	}
	var attrs []byte
	if in.NewPerson != nil {
		norm := *in.NewPerson
		norm.FirstName = entities.NormalizeName(norm.FirstName)
		norm.MiddleName = entities.NormalizeName(norm.MiddleName)
		norm.LastName = entities.NormalizeName(norm.LastName)
		norm.Nickname = entities.NormalizeName(norm.Nickname)
		norm.BirthDate = strings.TrimSpace(norm.BirthDate)
		attrs, _ = json.Marshal(norm)
	}
	key := strings.Join([]string{
		focalID,
		string(in.Category),
		strings.TrimSpace(in.ExistingPersonID),
		string(attrs),
		in.Notes,
	}, "|")
	return uuid.NewSHA1(intentNamespace, []byte(key)).String()
}

// Materializer applies batches of relationship intents against a focal member.
type Materializer struct {
	members     ports.MemberStore
	edges       ports.EdgeStore
	ledger      ports.IntentLedger
	audit       ports.AuditLog
	factory     *MemberService
	index       *KinshipIndex
	parallelism int
	logger      *log.Logger
}

// NewMaterializer creates a Materializer. parallelism <= 0 uses DefaultParallelism.
func NewMaterializer(
	db ports.RelationalDB,
	factory *MemberService,
	index *KinshipIndex,
	parallelism int,
	logger *log.Logger,
) *Materializer {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	return &Materializer{
		members:     db,
		edges:       db,
		ledger:      db,
		audit:       db,
		factory:     factory,
		index:       index,
		parallelism: parallelism,
		logger:      componentLogger(logger, "materializer"),
	}
}

// Apply runs every intent in req concurrently and reports one outcome per
// intent in submission order. Failed intents do not undo successful ones.
// An error is returned only when the focal member is missing or unknown.
//
// Intents already applied by an earlier request (same intent ID) are not
// applied again; their recorded outcome is returned with Replayed set.
// Intents sharing an ID within one request are applied once.
func (m *Materializer) Apply(ctx context.Context, req entities.BatchRequest) (*entities.BatchResult, error) {
	focalID := strings.TrimSpace(req.FocalID)
	if focalID == "" {
		return nil, fmt.Errorf("%w: focal member id is required", entities.ErrValidation)
	}
	focal, err := m.members.FindMemberByID(ctx, focalID)
	if err != nil {
		return nil, fmt.Errorf("finding focal member: %w", err)
	}
	if focal == nil {
		return nil, fmt.Errorf("%w: member %s", entities.ErrNotFound, focalID)
	}

	results := make([]entities.IntentResult, len(req.Intents))
	ids := make([]string, len(req.Intents))
	first := make(map[string]int, len(req.Intents))
	var unique []int
	for i, in := range req.Intents {
		ids[i] = IntentID(focalID, in)
		if _, dup := first[ids[i]]; !dup {
			first[ids[i]] = i
			unique = append(unique, i)
		}
	}

	// Intent failures are recorded in results; the group never cancels.
	var g errgroup.Group
	g.SetLimit(m.parallelism)
	for _, i := range unique {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = failed(i, ids[i], req.Intents[i].Category, err)
				return nil
			}
			results[i] = m.applyOne(ctx, focalID, i, ids[i], req.Intents[i])
			return nil
		})
	}
	_ = g.Wait()

	out := &entities.BatchResult{FocalID: focalID, Results: results}
	for i := range results {
		if src := first[ids[i]]; src != i {
			results[i] = results[src]
			results[i].Index = i
			if results[i].Status == entities.IntentOK {
				results[i].Replayed = true
			}
		}
		if results[i].Status == entities.IntentOK {
			out.Succeeded++
		} else {
			out.Failed++
		}
	}

	if err := m.audit.LogAction(ctx, entities.AuditBatchMaterialized, focalID, map[string]any{
		"intents":   len(req.Intents),
		"succeeded": out.Succeeded,
		"failed":    out.Failed,
	}); err != nil {
		m.logger.Warn("audit log write failed", "focal", focalID, "err", err)
	}
	m.logger.Info("batch materialized", "focal", focalID, "intents", len(req.Intents), "succeeded", out.Succeeded, "failed", out.Failed)
	return out, nil
}

func (m *Materializer) applyOne(ctx context.Context, focalID string, index int, intentID string, in entities.Intent) entities.IntentResult {
	category, err := entities.ParseCategory(string(in.Category))
	if err != nil {
		return failed(index, intentID, in.Category, err)
	}
	existingID := strings.TrimSpace(in.ExistingPersonID)
	switch {
	case existingID == "" && in.NewPerson == nil:
		return failed(index, intentID, category, fmt.Errorf("%w: one of existingPersonId or newPersonAttributes is required", entities.ErrValidation))
	case existingID != "" && in.NewPerson != nil:
		return failed(index, intentID, category, fmt.Errorf("%w: existingPersonId and newPersonAttributes are mutually exclusive", entities.ErrValidation))
	case existingID == focalID:
		return failed(index, intentID, category, fmt.Errorf("%w: a person cannot be related to themselves", entities.ErrValidation))
	}

	applied, err := m.findApplied(ctx, intentID)
	if err != nil {
		return failed(index, intentID, category, err)
	}
	if applied != nil {
		m.logger.Debug("intent replayed", "intent", intentID, "person", applied.PersonID)
		return entities.IntentResult{
			Index:         index,
			IntentID:      intentID,
			Category:      category,
			Status:        entities.IntentOK,
			PersonID:      applied.PersonID,
			RelationID:    applied.RelationID,
			CreatedPerson: applied.Created,
			Replayed:      true,
		}
	}

	var res entities.IntentResult
	if existingID != "" {
		res, err = m.linkExisting(ctx, focalID, existingID, category, in.Notes)
	} else {
		res, err = m.createMember(ctx, focalID, category, *in.NewPerson, in.Notes)
	}
	if err != nil {
		m.logger.Warn("intent failed", "intent", intentID, "category", category, "err", err)
		return failed(index, intentID, category, err)
	}
	res.Index = index
	res.IntentID = intentID
	res.Category = category
	res.Status = entities.IntentOK

	if err := m.ledger.SaveAppliedIntent(ctx, &entities.AppliedIntent{
		IntentID:   intentID,
		FocalID:    focalID,
		PersonID:   res.PersonID,
		RelationID: res.RelationID,
		Created:    res.CreatedPerson,
		AppliedAt:  time.Now(),
	}); err != nil {
		m.logger.Warn("recording applied intent failed", "intent", intentID, "err", err)
	}
	return res
}

// findApplied returns the ledger record of intentID, or nil when the intent
// has not been applied or the edge it produced no longer exists. Stale
// records are dropped so the intent is applied again.
func (m *Materializer) findApplied(ctx context.Context, intentID string) (*entities.AppliedIntent, error) {
	applied, err := m.ledger.FindAppliedIntent(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("checking intent ledger: %w", err)
	}
	if applied == nil {
		return nil, nil
	}

	rel, err := m.edges.FindRelationshipByID(ctx, applied.RelationID)
	if err != nil {
		return nil, fmt.Errorf("checking recorded relationship: %w", err)
	}
	if rel != nil {
		return applied, nil
	}

	m.logger.Debug("applied intent is stale", "intent", intentID, "relationship", applied.RelationID)
	if err := m.ledger.ForgetAppliedIntent(ctx, intentID); err != nil {
		return nil, fmt.Errorf("forgetting stale intent: %w", err)
	}
	return nil, nil
}

// linkExisting writes the edge between the focal member and an existing one.
func (m *Materializer) linkExisting(ctx context.Context, focalID, otherID string, category entities.Category, notes string) (entities.IntentResult, error) {
	exists, err := m.members.MembersExist(ctx, []string{otherID})
	if err != nil {
		return entities.IntentResult{}, fmt.Errorf("checking member exists: %w", err)
	}
	if !exists[otherID] {
		return entities.IntentResult{}, fmt.Errorf("%w: member %s", entities.ErrNotFound, otherID)
	}

	rel := OrientEdge(focalID, otherID, category.Type())
	rel.Notes = notes
	_, created, err := m.edges.CreateRelationship(ctx, &rel)
	if err != nil {
		return entities.IntentResult{}, fmt.Errorf("creating relationship: %w", err)
	}
	if created {
		if err := m.audit.LogAction(ctx, entities.AuditRelationshipCreated, rel.ID, map[string]any{
			"person_id":  rel.PersonID,
			"related_id": rel.RelatedID,
			"type":       string(rel.Type),
			"source":     "batch",
		}); err != nil {
			m.logger.Warn("audit log write failed", "relationship", rel.ID, "err", err)
		}
		m.index.Index(ctx, rel)
	}
	return entities.IntentResult{PersonID: otherID, RelationID: rel.ID}, nil
}

// createMember creates a new member carrying the reciprocal hint back to the
// focal member.
func (m *Materializer) createMember(ctx context.Context, focalID string, category entities.Category, attrs entities.PersonAttributes, notes string) (entities.IntentResult, error) {
	if m.factory == nil {
		return entities.IntentResult{}, errors.New("member factory is not configured")
	}
	result, err := m.factory.Create(ctx, MemberInput{
		PersonAttributes: attrs,
		Relationships:    RelationshipHints{category.Reciprocal(): {focalID}},
		Notes:            notes,
	})
	if err != nil {
		return entities.IntentResult{}, err
	}
	res := entities.IntentResult{PersonID: result.Person.ID, CreatedPerson: true}
	for _, rel := range result.Relationships {
		if rel.Touches(focalID) {
			res.RelationID = rel.ID
		}
	}
	return res, nil
}

func failed(index int, intentID string, category entities.Category, err error) entities.IntentResult {
	return entities.IntentResult{
		Index:    index,
		IntentID: intentID,
		Category: category,
		Status:   entities.IntentError,
		Error:    err.Error(),
	}
}
