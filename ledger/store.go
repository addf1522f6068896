package ledger

import "context"

// Tx is the record access available to one invocation.
// Writes made through Set are visible to later Get/Has calls on the same Tx.
type Tx interface {
	// Has reports whether a record exists under key.
	Has(key Key) (bool, error)

	// Get returns the record stored under key. ok is false when absent.
	Get(key Key) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous record.
	Set(key Key, value []byte) error
}

// Store is a keyed record store with atomic invocation boundaries.
type Store interface {
	// View runs fn against a read-only snapshot. Set returns ErrReadOnly.
	View(ctx context.Context, fn func(Tx) error) error

	// Update runs fn and commits its writes only if fn returns nil.
	// On any error no write made by fn is persisted.
	Update(ctx context.Context, fn func(Tx) error) error

	// Close releases the underlying resources.
	Close() error
}
