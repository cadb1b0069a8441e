package entities

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RelationType defines the kind of kinship relationship between two people.
type RelationType string

const (
	RelationParent        RelationType = "PARENT"
	RelationChild         RelationType = "CHILD"
	RelationSpouse        RelationType = "SPOUSE"
	RelationSibling       RelationType = "SIBLING"
	RelationGrandparent   RelationType = "GRANDPARENT"
	RelationGrandchild    RelationType = "GRANDCHILD"
	RelationUncleAunt     RelationType = "UNCLE_AUNT"
	RelationNephewNiece   RelationType = "NEPHEW_NIECE"
	RelationCousin        RelationType = "COUSIN"
	RelationStepParent    RelationType = "STEP_PARENT"
	RelationStepChild     RelationType = "STEP_CHILD"
	RelationHalfSibling   RelationType = "HALF_SIBLING"
	RelationAdoptedParent RelationType = "ADOPTED_PARENT"
	RelationAdoptedChild  RelationType = "ADOPTED_CHILD"
	RelationInLaw         RelationType = "IN_LAW"
	RelationPartner       RelationType = "PARTNER"
	RelationFriend        RelationType = "FRIEND"
	RelationOther         RelationType = "OTHER"
)

// relationTypes lists every type in declaration order.
var relationTypes = []RelationType{
	RelationParent, RelationChild, RelationSpouse, RelationSibling,
	RelationGrandparent, RelationGrandchild, RelationUncleAunt, RelationNephewNiece,
	RelationCousin, RelationStepParent, RelationStepChild, RelationHalfSibling,
	RelationAdoptedParent, RelationAdoptedChild, RelationInLaw, RelationPartner,
	RelationFriend, RelationOther,
}

// inverses pairs each directional type with its counterpart.
// Types missing from this map are symmetric.
var inverses = map[RelationType]RelationType{
	RelationParent:        RelationChild,
	RelationChild:         RelationParent,
	RelationGrandparent:   RelationGrandchild,
	RelationGrandchild:    RelationGrandparent,
	RelationUncleAunt:     RelationNephewNiece,
	RelationNephewNiece:   RelationUncleAunt,
	RelationStepParent:    RelationStepChild,
	RelationStepChild:     RelationStepParent,
	RelationAdoptedParent: RelationAdoptedChild,
	RelationAdoptedChild:  RelationAdoptedParent,
}

var relationLabels = map[RelationType]string{
	RelationParent:        "parent",
	RelationChild:         "child",
	RelationSpouse:        "spouse",
	RelationSibling:       "sibling",
	RelationGrandparent:   "grandparent",
	RelationGrandchild:    "grandchild",
	RelationUncleAunt:     "uncle/aunt",
	RelationNephewNiece:   "nephew/niece",
	RelationCousin:        "cousin",
	RelationStepParent:    "step-parent",
	RelationStepChild:     "step-child",
	RelationHalfSibling:   "half-sibling",
	RelationAdoptedParent: "adoptive parent",
	RelationAdoptedChild:  "adopted child",
	RelationInLaw:         "in-law",
	RelationPartner:       "partner",
	RelationFriend:        "friend",
	RelationOther:         "relative",
}

// AllRelationTypes returns every supported relationship type.
func AllRelationTypes() []RelationType {
	out := make([]RelationType, len(relationTypes))
	copy(out, relationTypes)
	return out
}

// IsValid reports whether t belongs to the closed set of relationship types.
func (t RelationType) IsValid() bool {
	_, ok := relationLabels[t]
	return ok
}

// IsSymmetric reports whether t reads the same from both endpoints.
func (t RelationType) IsSymmetric() bool {
	_, directional := inverses[t]
	return !directional
}

// Inverse returns the type as seen from the other endpoint.
// Symmetric and unknown types are returned unchanged.
func (t RelationType) Inverse() RelationType {
	if inv, ok := inverses[t]; ok {
		return inv
	}
	return t
}

// Label returns a lowercase human readable name for the type.
func (t RelationType) Label() string {
	if l, ok := relationLabels[t]; ok {
		return l
	}
	return strings.ToLower(string(t))
}

// String returns the wire form of the type.
func (t RelationType) String() string {
	return string(t)
}

// ParseRelationType validates and converts a string to a RelationType.
// Matching ignores case and treats '-' and ' ' like '_'.
func ParseRelationType(s string) (RelationType, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)

	t := RelationType(norm)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: invalid relationship type %q (valid: %s)", ErrValidation, s, validTypeList())
	}
	return t, nil
}

func validTypeList() string {
	names := make([]string, 0, len(relationTypes))
	for _, t := range relationTypes {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Relationship is a stored kinship fact. It reads literally as
// "PersonID IS Type OF RelatedID": PersonID=A, Type=PARENT, RelatedID=B means
// A is the parent of B.
type Relationship struct {
	ID        string       `json:"id"`
	PersonID  string       `json:"personId"`
	RelatedID string       `json:"relatedId"`
	Type      RelationType `json:"relationshipType"`
	Notes     string       `json:"notes,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Touches reports whether personID is one of the two endpoints.
func (r *Relationship) Touches(personID string) bool {
	return r.PersonID == personID || r.RelatedID == personID
}

// OtherID returns the endpoint that is not personID.
func (r *Relationship) OtherID(personID string) string {
	if r.PersonID == personID {
		return r.RelatedID
	}
	return r.PersonID
}

// PairKey identifies the unordered pair of endpoints.
func (r *Relationship) PairKey() string {
	return PairKey(r.PersonID, r.RelatedID)
}

// FactKey identifies the semantic fact independent of storage direction:
// (A, B, PARENT) and (B, A, CHILD) share a key, as do (X, Y, SPOUSE) and
// (Y, X, SPOUSE).
func (r *Relationship) FactKey() string {
	oriented := r.Type
	if r.PersonID > r.RelatedID {
		oriented = r.Type.Inverse()
	}
	return r.PairKey() + "|" + string(oriented)
}

// PairKey returns the two ids sorted and joined.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// Validate checks the invariants every stored edge must hold.
func (r *Relationship) Validate() error {
	if r.PersonID == "" || r.RelatedID == "" {
		return fmt.Errorf("%w: both personId and relatedId are required", ErrValidation)
	}
	if r.PersonID == r.RelatedID {
		return fmt.Errorf("%w: a person cannot be related to themselves", ErrValidation)
	}
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: invalid relationship type %q", ErrValidation, r.Type)
	}
	return nil
}
