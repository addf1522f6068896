package ledger

import "errors"

var (
	// ErrDuplicateID indicates a record with the same id already exists.
	ErrDuplicateID = errors.New("ledger: duplicate id")

	// ErrNotFound indicates the addressed record does not exist.
	ErrNotFound = errors.New("ledger: record not found")

	// ErrUnauthorized indicates the caller lacks the role required for the operation.
	ErrUnauthorized = errors.New("ledger: caller not authorized")

	// ErrInvalidState indicates the operation is illegal in the record's current lifecycle state.
	ErrInvalidState = errors.New("ledger: invalid state for operation")

	// ErrInvalidArgument indicates malformed input (non-positive amounts, bad share sums).
	ErrInvalidArgument = errors.New("ledger: invalid argument")

	// ErrArithmeticOverflow indicates an accumulation overflowed its integer domain.
	ErrArithmeticOverflow = errors.New("ledger: arithmetic overflow")

	// ErrInactiveResource indicates the record exists but is switched off.
	ErrInactiveResource = errors.New("ledger: resource inactive")

	// ErrConflict indicates a concurrent writer invalidated the transaction.
	ErrConflict = errors.New("ledger: transaction conflict")

	// ErrCorruptRecord indicates stored bytes could not be decoded.
	ErrCorruptRecord = errors.New("ledger: corrupt record")

	// ErrReadOnly indicates a write was attempted inside a View transaction.
	ErrReadOnly = errors.New("ledger: read-only transaction")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("ledger: required parameter is nil")

	// ErrInvalidAddress indicates an identity string is not a valid address.
	ErrInvalidAddress = errors.New("ledger: invalid address")

	// ErrInvalidKey indicates a byte sequence is not an encoded Key.
	ErrInvalidKey = errors.New("ledger: invalid key")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrDuplicateID, "duplicate_id"},
	{ErrNotFound, "not_found"},
	{ErrUnauthorized, "unauthorized"},
	{ErrInvalidState, "invalid_state"},
	{ErrInvalidArgument, "invalid_argument"},
	{ErrArithmeticOverflow, "arithmetic_overflow"},
	{ErrInactiveResource, "inactive_resource"},
	{ErrConflict, "conflict"},
	{ErrInvalidAddress, "invalid_argument"},
}

// Kind returns a stable label for err's position in the error taxonomy.
// A nil error is "ok"; anything outside the taxonomy is "internal".
func Kind(err error) string {
	if err == nil {
		return "ok"
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "internal"
}
