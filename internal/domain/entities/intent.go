package entities

import "time"

// Intent is one requested relationship addition inside a batch. Exactly one
// of ExistingPersonID and NewPerson must be set.
type Intent struct {
	// ID is an optional client-chosen idempotency key. When empty a
	// deterministic key is derived from the intent's content.
	ID               string            `json:"id,omitempty"`
	Category         Category          `json:"category"`
	ExistingPersonID string            `json:"existingPersonId,omitempty"`
	NewPerson        *PersonAttributes `json:"newPersonAttributes,omitempty"`
	Notes            string            `json:"notes,omitempty"`
}

// BatchRequest is a set of intents against one focal person.
type BatchRequest struct {
	FocalID string   `json:"focalId"`
	Intents []Intent `json:"intents"`
}

// IntentStatus is the per-intent outcome.
type IntentStatus string

const (
	IntentOK    IntentStatus = "ok"
	IntentError IntentStatus = "error"
)

// IntentResult reports what happened to a single intent.
type IntentResult struct {
	Index         int          `json:"index"`
	IntentID      string       `json:"intentId"`
	Category      Category     `json:"category"`
	Status        IntentStatus `json:"status"`
	Error         string       `json:"error,omitempty"`
	PersonID      string       `json:"personId,omitempty"`
	RelationID    string       `json:"relationshipId,omitempty"`
	CreatedPerson bool         `json:"createdPerson,omitempty"`
	// Replayed is set when the intent had already been applied by an
	// earlier submission and its recorded outcome was returned.
	Replayed bool `json:"replayed,omitempty"`
}

// BatchResult lists the outcome of every intent in submission order.
type BatchResult struct {
	FocalID   string         `json:"focalId"`
	Results   []IntentResult `json:"results"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
}

// PartialFailure reports whether some but not all intents failed.
func (b *BatchResult) PartialFailure() bool {
	return b.Failed > 0 && b.Succeeded > 0
}

// AppliedIntent is the ledger record of a successfully applied intent.
type AppliedIntent struct {
	IntentID   string    `json:"intentId"`
	FocalID    string    `json:"focalId"`
	PersonID   string    `json:"personId"`
	RelationID string    `json:"relationshipId"`
	Created    bool      `json:"created"`
	AppliedAt  time.Time `json:"appliedAt"`
}
