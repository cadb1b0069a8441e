package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/kin-core/internal/domain/entities"
)

// RelationalDB is an in-memory implementation of ports.RelationalDB.
// It honors the same fact-level idempotency as the SQLite store.
type RelationalDB struct {
	mu sync.Mutex

	Members       map[string]*entities.Person
	Relationships map[string]*entities.Relationship
	Intents       map[string]*entities.AppliedIntent
	Audit         []entities.AuditEntry

	// Err, when set, is returned by every call.
	Err error
	// CreateMemberHook can reject individual members.
	CreateMemberHook func(person *entities.Person) error
	// CreateRelationshipHook can reject individual edges.
	CreateRelationshipHook func(rel *entities.Relationship) error

	// Call tracking
	CreateMemberCalls int
}

// NewRelationalDB creates a new mock RelationalDB.
func NewRelationalDB() *RelationalDB {
	return &RelationalDB{
		Members:       make(map[string]*entities.Person),
		Relationships: make(map[string]*entities.Relationship),
		Intents:       make(map[string]*entities.AppliedIntent),
	}
}

// AddMember seeds a member.
func (m *RelationalDB) AddMember(id, first, last string) *entities.Person {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &entities.Person{ID: id, FirstName: first, LastName: last, IsAlive: true, CreatedAt: time.Now()}
	m.Members[id] = p
	return p
}

// EnsureSchema creates the database schema if it doesn't exist.
func (m *RelationalDB) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the database connection.
func (m *RelationalDB) Close() error {
	return nil
}

// Relationship methods.

// CreateRelationship stores rel unless its fact already exists.
func (m *RelationalDB) CreateRelationship(_ context.Context, rel *entities.Relationship) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", false, m.Err
	}
	return m.insertLocked(rel)
}

func (m *RelationalDB) insertLocked(rel *entities.Relationship) (string, bool, error) {
	if m.CreateRelationshipHook != nil {
		if err := m.CreateRelationshipHook(rel); err != nil {
			return "", false, err
		}
	}
	for _, existing := range m.Relationships {
		if existing.FactKey() == rel.FactKey() {
			*rel = *existing
			return existing.ID, false, nil
		}
	}
	if rel.ID == "" {
		rel.ID = uuid.New().String()
	}
	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = time.Now()
	}
	rel.UpdatedAt = rel.CreatedAt
	stored := *rel
	m.Relationships[rel.ID] = &stored
	return rel.ID, true, nil
}

// UpdateRelationship rewrites type and notes of an existing edge.
func (m *RelationalDB) UpdateRelationship(_ context.Context, rel *entities.Relationship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	current, ok := m.Relationships[rel.ID]
	if !ok {
		return fmt.Errorf("%w: relationship %s", entities.ErrNotFound, rel.ID)
	}
	next := *current
	next.Type = rel.Type
	next.Notes = rel.Notes
	next.UpdatedAt = time.Now()
	for id, other := range m.Relationships {
		if id != rel.ID && other.FactKey() == next.FactKey() {
			return fmt.Errorf("%w: relationship %s already records this fact", entities.ErrConflict, id)
		}
	}
	m.Relationships[rel.ID] = &next
	*rel = next
	return nil
}

// DeleteRelationship deletes a relationship by ID.
func (m *RelationalDB) DeleteRelationship(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Relationships[id]; !ok {
		return fmt.Errorf("%w: relationship %s", entities.ErrNotFound, id)
	}
	delete(m.Relationships, id)
	for intentID, applied := range m.Intents {
		if applied.RelationID == id {
			delete(m.Intents, intentID)
		}
	}
	return nil
}

// FindRelationshipByID returns nil when no edge has the ID.
func (m *RelationalDB) FindRelationshipByID(_ context.Context, id string) (*entities.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	rel, ok := m.Relationships[id]
	if !ok {
		return nil, nil
	}
	out := *rel
	return &out, nil
}

// FindRelationshipsTouching returns edges where personID is either endpoint.
func (m *RelationalDB) FindRelationshipsTouching(_ context.Context, personID string) ([]entities.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.Relationship
	for _, rel := range m.Relationships {
		if rel.Touches(personID) {
			result = append(result, *rel)
		}
	}
	sortRelationships(result)
	return result, nil
}

// ListRelationships lists all edges with pagination.
func (m *RelationalDB) ListRelationships(_ context.Context, limit, offset int) ([]entities.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	all := make([]entities.Relationship, 0, len(m.Relationships))
	for _, rel := range m.Relationships {
		all = append(all, *rel)
	}
	sortRelationships(all)
	return paginate(all, limit, offset), nil
}

// CountRelationships returns the number of stored edges.
func (m *RelationalDB) CountRelationships(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Relationships), m.Err
}

// Member methods.

// CreateMember stores person and rels atomically.
func (m *RelationalDB) CreateMember(_ context.Context, person *entities.Person, rels []entities.Relationship) ([]entities.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateMemberCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.CreateMemberHook != nil {
		if err := m.CreateMemberHook(person); err != nil {
			return nil, err
		}
	}
	if person.ID == "" {
		person.ID = uuid.New().String()
	}
	if _, exists := m.Members[person.ID]; exists {
		return nil, fmt.Errorf("%w: member %s already exists", entities.ErrConflict, person.ID)
	}
	if person.CreatedAt.IsZero() {
		person.CreatedAt = time.Now()
	}

	// Stage edges so a failure leaves nothing behind.
	snapshot := make(map[string]*entities.Relationship, len(m.Relationships))
	for k, v := range m.Relationships {
		snapshot[k] = v
	}
	stored := make([]entities.Relationship, 0, len(rels))
	for i := range rels {
		rel := rels[i]
		if _, _, err := m.insertLocked(&rel); err != nil {
			m.Relationships = snapshot
			return nil, err
		}
		stored = append(stored, rel)
	}
	p := *person
	m.Members[person.ID] = &p
	return stored, nil
}

// FindMemberByID returns nil when no member has the ID.
func (m *RelationalDB) FindMemberByID(_ context.Context, id string) (*entities.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Members[id]
	if !ok {
		return nil, nil
	}
	out := *p
	return &out, nil
}

// FindMembersByIDs returns the members that exist among ids.
func (m *RelationalDB) FindMembersByIDs(_ context.Context, ids []string) ([]*entities.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]*entities.Person, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.Members[id]; ok {
			out := *p
			result = append(result, &out)
		}
	}
	return result, nil
}

// MembersExist reports which of ids exist.
func (m *RelationalDB) MembersExist(_ context.Context, ids []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	found := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := m.Members[id]; ok {
			found[id] = true
		}
	}
	return found, nil
}

// ListMembers lists members ordered by last name, first name and ID.
func (m *RelationalDB) ListMembers(_ context.Context, limit, offset int) ([]*entities.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return paginate(m.sortedMembersLocked(""), limit, offset), nil
}

// SearchMembers matches names containing query.
func (m *RelationalDB) SearchMembers(_ context.Context, query string, limit int) ([]*entities.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return paginate(m.sortedMembersLocked(entities.NormalizeName(query)), limit, 0), nil
}

func (m *RelationalDB) sortedMembersLocked(filter string) []*entities.Person {
	result := make([]*entities.Person, 0, len(m.Members))
	for _, p := range m.Members {
		name := entities.NormalizeName(strings.Join([]string{p.FirstName, p.MiddleName, p.LastName, p.Nickname}, " "))
		if filter != "" && !strings.Contains(name, filter) {
			continue
		}
		out := *p
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.ID < b.ID
	})
	return result
}

// DeleteMember deletes a member and every edge touching it.
func (m *RelationalDB) DeleteMember(_ context.Context, id string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if _, ok := m.Members[id]; !ok {
		return nil, fmt.Errorf("%w: member %s", entities.ErrNotFound, id)
	}
	delete(m.Members, id)
	var removed []string
	for relID, rel := range m.Relationships {
		if rel.Touches(id) {
			removed = append(removed, relID)
			delete(m.Relationships, relID)
		}
	}
	for intentID, applied := range m.Intents {
		if applied.PersonID == id || applied.FocalID == id {
			delete(m.Intents, intentID)
		}
	}
	sort.Strings(removed)
	return removed, nil
}

// CountMembers returns the number of members.
func (m *RelationalDB) CountMembers(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Members), m.Err
}

// Intent ledger methods.

// FindAppliedIntent returns nil when the intent has not been applied.
func (m *RelationalDB) FindAppliedIntent(_ context.Context, intentID string) (*entities.AppliedIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	applied, ok := m.Intents[intentID]
	if !ok {
		return nil, nil
	}
	out := *applied
	return &out, nil
}

// SaveAppliedIntent records an applied intent; the first record wins.
func (m *RelationalDB) SaveAppliedIntent(_ context.Context, applied *entities.AppliedIntent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Intents[applied.IntentID]; !ok {
		out := *applied
		m.Intents[applied.IntentID] = &out
	}
	return nil
}

// ForgetAppliedIntent drops the record of an intent.
func (m *RelationalDB) ForgetAppliedIntent(_ context.Context, intentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.Intents, intentID)
	return nil
}

// Audit methods.

// LogAction appends an audit entry.
func (m *RelationalDB) LogAction(_ context.Context, action string, subjectID string, details map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Audit = append(m.Audit, entities.AuditEntry{
		ID:        int64(len(m.Audit) + 1),
		Action:    action,
		SubjectID: subjectID,
		Details:   details,
		CreatedAt: time.Now(),
	})
	return nil
}

// FindAuditLog returns entries for subjectID, newest first.
func (m *RelationalDB) FindAuditLog(_ context.Context, subjectID string) ([]entities.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for i := len(m.Audit) - 1; i >= 0; i-- {
		if m.Audit[i].SubjectID == subjectID {
			result = append(result, m.Audit[i])
		}
	}
	return result, nil
}

// Actions returns the recorded audit actions in order.
func (m *RelationalDB) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, len(m.Audit))
	for i := range m.Audit {
		actions[i] = m.Audit[i].Action
	}
	return actions
}

func sortRelationships(rels []entities.Relationship) {
	sort.Slice(rels, func(i, j int) bool {
		if !rels[i].CreatedAt.Equal(rels[j].CreatedAt) {
			return rels[i].CreatedAt.Before(rels[j].CreatedAt)
		}
		return rels[i].ID < rels[j].ID
	})
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
