package ports

import "context"

// CollectionManager handles the lifecycle of a tree's search collection.
// It is kept apart from EdgeIndex so the engine only sees document
// operations; provisioning happens when trees are created or deleted.
type CollectionManager interface {
	// EnsureCollection creates the collection if it doesn't exist.
	EnsureCollection(ctx context.Context, vectorSize uint64) error

	// DeleteCollection removes the collection and every indexed document.
	DeleteCollection(ctx context.Context) error
}
