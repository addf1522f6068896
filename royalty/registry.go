package royalty

import (
	"fmt"
	"math/big"

	"github.com/bitfsorg/pact-go/ledger"
)

// CreateStream registers a stream and its recipient list in the same transaction.
// The stream starts active.
func CreateStream(tx ledger.Tx, id uint64, owner ledger.Address, recipients []RecipientShare) (*Stream, error) {
	exists, err := tx.Has(ledger.StreamKey(id))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: stream %d", ledger.ErrDuplicateID, id)
	}
	if err := ValidateRecipients(recipients); err != nil {
		return nil, err
	}

	s := &Stream{ID: id, Owner: owner, TotalBps: TotalBps, Active: true}
	if err := putStream(tx, s); err != nil {
		return nil, err
	}
	data, err := SerializeRecipients(recipients)
	if err != nil {
		return nil, err
	}
	if err := tx.Set(ledger.RecipientsKey(id), data); err != nil {
		return nil, err
	}
	return s, nil
}

// ToggleStream sets the stream's active flag. Only the owner may call it;
// setting the current value again is a no-op in effect.
func ToggleStream(tx ledger.Tx, id uint64, caller ledger.Address, active bool) (*Stream, error) {
	s, err := loadStream(tx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: stream %d", ledger.ErrNotFound, id)
	}
	if caller != s.Owner {
		return nil, fmt.Errorf("%w: only the owner can toggle stream %d", ledger.ErrUnauthorized, id)
	}
	s.Active = active
	if err := putStream(tx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// CalcShares computes each recipient's cut of amount without mutating anything.
func CalcShares(tx ledger.Tx, id uint64, amount *big.Int) ([]Share, error) {
	if err := ledger.CheckPositiveAmount("amount", amount); err != nil {
		return nil, err
	}
	s, err := loadStream(tx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: stream %d", ledger.ErrNotFound, id)
	}
	recipients, err := loadRecipients(tx, id)
	if err != nil {
		return nil, err
	}
	if recipients == nil {
		return nil, fmt.Errorf("%w: recipients of stream %d", ledger.ErrNotFound, id)
	}
	if !s.Active {
		return nil, fmt.Errorf("%w: stream %d", ledger.ErrInactiveResource, id)
	}
	return Distribute(amount, recipients)
}

// GetStream returns the stream with the given id, or nil if none exists.
func GetStream(tx ledger.Tx, id uint64) (*Stream, error) {
	return loadStream(tx, id)
}

// GetRecipients returns the ordered recipient list, or nil if none exists.
func GetRecipients(tx ledger.Tx, id uint64) ([]RecipientShare, error) {
	return loadRecipients(tx, id)
}

func loadStream(tx ledger.Tx, id uint64) (*Stream, error) {
	data, ok, err := tx.Get(ledger.StreamKey(id))
	if err != nil || !ok {
		return nil, err
	}
	s, err := DeserializeStream(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrCorruptRecord, err)
	}
	return s, nil
}

func loadRecipients(tx ledger.Tx, id uint64) ([]RecipientShare, error) {
	data, ok, err := tx.Get(ledger.RecipientsKey(id))
	if err != nil || !ok {
		return nil, err
	}
	recipients, err := DeserializeRecipients(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrCorruptRecord, err)
	}
	return recipients, nil
}

func putStream(tx ledger.Tx, s *Stream) error {
	data, err := SerializeStream(s)
	if err != nil {
		return err
	}
	return tx.Set(ledger.StreamKey(s.ID), data)
}
