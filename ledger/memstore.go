package ledger

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store. Updates are serialized; a failed
// Update leaves the map untouched.
type MemStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string][]byte)}
}

// View runs fn under a read lock.
func (s *MemStore) View(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(newBufferedTx(memReader{s.records}, true))
}

// Update runs fn under the write lock and applies its writes on success.
func (s *MemStore) Update(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := newBufferedTx(memReader{s.records}, false)
	if err := fn(tx); err != nil {
		return err
	}
	for _, w := range tx.pending() {
		s.records[string(w.key)] = w.value
	}
	return nil
}

// Len returns the number of stored records.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close is a no-op.
func (s *MemStore) Close() error { return nil }

type memReader struct {
	records map[string][]byte
}

func (r memReader) has(k []byte) (bool, error) {
	_, ok := r.records[string(k)]
	return ok, nil
}

func (r memReader) get(k []byte) ([]byte, bool, error) {
	v, ok := r.records[string(k)]
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(v), true, nil
}
