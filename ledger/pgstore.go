package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS ledger_records (
	key   BYTEA PRIMARY KEY,
	value BYTEA NOT NULL
)`

// PGStore keeps records in a Postgres table. Each Update is a
// serializable transaction; serialization failures surface as ErrConflict.
type PGStore struct {
	pool *pgxpool.Pool
}

// Compile-time interface check.
var _ Store = (*PGStore)(nil)

// OpenPGStore connects to databaseURL and ensures the records table exists.
func OpenPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("ledger: invalid pg config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ledger: connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ledger: create schema: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// View runs fn in a read-only transaction.
func (s *PGStore) View(ctx context.Context, fn func(Tx) error) error {
	return s.run(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, true, fn)
}

// Update runs fn in a serializable read-write transaction.
func (s *PGStore) Update(ctx context.Context, fn func(Tx) error) error {
	return s.run(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, false, fn)
}

func (s *PGStore) run(ctx context.Context, opts pgx.TxOptions, readOnly bool, fn func(Tx) error) error {
	err := pgx.BeginTxFunc(ctx, s.pool, opts, func(ptx pgx.Tx) error {
		return fn(&pgTx{ctx: ctx, tx: ptx, readOnly: readOnly})
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "40001" {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}

// Close closes the connection pool.
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

type pgTx struct {
	ctx      context.Context
	tx       pgx.Tx
	readOnly bool
}

func (t *pgTx) Has(key Key) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(t.ctx, `SELECT EXISTS (SELECT 1 FROM ledger_records WHERE key = $1)`, key.Bytes()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("pgstore: has %s: %w", key, err)
	}
	return exists, nil
}

func (t *pgTx) Get(key Key) ([]byte, bool, error) {
	var v []byte
	err := t.tx.QueryRow(t.ctx, `SELECT value FROM ledger_records WHERE key = $1`, key.Bytes()).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("pgstore: get %s: %w", key, err)
	}
	return v, true, nil
}

func (t *pgTx) Set(key Key, value []byte) error {
	if t.readOnly {
		return ErrReadOnly
	}
	if value == nil {
		return ErrNilParam
	}
	_, err := t.tx.Exec(t.ctx, `
		INSERT INTO ledger_records (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key.Bytes(), value)
	if err != nil {
		return fmt.Errorf("pgstore: set %s: %w", key, err)
	}
	return nil
}
