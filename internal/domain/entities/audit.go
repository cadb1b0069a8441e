package entities

import "time"

// Audit actions recorded by the engine.
const (
	AuditRelationshipCreated = "relationship.created"
	AuditRelationshipUpdated = "relationship.updated"
	AuditRelationshipDeleted = "relationship.deleted"
	AuditMemberCreated       = "member.created"
	AuditMemberDeleted       = "member.deleted"
	AuditBatchMaterialized   = "batch.materialized"
)

// AuditEntry represents a logged action against a relationship or person.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Action    string         `json:"action"`
	SubjectID string         `json:"subjectId,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}
