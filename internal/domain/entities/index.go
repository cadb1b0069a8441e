package entities

// IndexedRelationship is a relationship rendered as a searchable sentence.
type IndexedRelationship struct {
	RelationshipID string       `json:"relationshipId"`
	PersonID       string       `json:"personId"`
	RelatedID      string       `json:"relatedId"`
	Type           RelationType `json:"relationshipType"`
	Sentence       string       `json:"sentence"`
	Score          float32      `json:"score,omitempty"`
}
