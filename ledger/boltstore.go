package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var bucketRecords = []byte("records")

// BoltStore persists records in a bbolt database. Each Update is one
// bbolt read-write transaction, so a failed invocation rolls back entirely.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("ledger: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketRecords); err != nil {
			return fmt.Errorf("boltstore: create bucket %q: %w", bucketRecords, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// View runs fn inside a bbolt read-only transaction.
func (s *BoltStore) View(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(btx *bbolt.Tx) error {
		return fn(&boltTx{b: btx.Bucket(bucketRecords), readOnly: true})
	})
}

// Update runs fn inside a bbolt read-write transaction.
func (s *BoltStore) Update(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(btx *bbolt.Tx) error {
		return fn(&boltTx{b: btx.Bucket(bucketRecords)})
	})
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

type boltTx struct {
	b        *bbolt.Bucket
	readOnly bool
}

func (t *boltTx) Has(key Key) (bool, error) {
	return t.b.Get(key.Bytes()) != nil, nil
}

func (t *boltTx) Get(key Key) ([]byte, bool, error) {
	v := t.b.Get(key.Bytes())
	if v == nil {
		return nil, false, nil
	}
	// bbolt values are only valid for the life of the transaction.
	return cloneBytes(v), true, nil
}

func (t *boltTx) Set(key Key, value []byte) error {
	if t.readOnly {
		return ErrReadOnly
	}
	if value == nil {
		return ErrNilParam
	}
	if err := t.b.Put(key.Bytes(), value); err != nil {
		return fmt.Errorf("boltstore: put %s: %w", key, err)
	}
	return nil
}
