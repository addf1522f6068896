package escrow

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/bitfsorg/pact-go/ledger"
)

// Create records a new trade offer in the Created state.
func Create(tx ledger.Tx, id uint64, seller, buyer ledger.Address, assetDesc string, price *big.Int) (*Trade, error) {
	if err := ledger.CheckPositiveAmount("price", price); err != nil {
		return nil, err
	}

	key := ledger.TradeKey(id)
	exists, err := tx.Has(key)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: trade %d", ledger.ErrDuplicateID, id)
	}

	t := &Trade{
		ID:        id,
		Seller:    seller,
		Buyer:     buyer,
		AssetDesc: assetDesc,
		Price:     new(big.Int).Set(price),
		Status:    StatusCreated,
	}
	if err := put(tx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// MarkFunded moves a Created trade to Funded. Only the buyer may call it.
func MarkFunded(tx ledger.Tx, id uint64, caller ledger.Address) (*Trade, error) {
	return transition(tx, id, ActionFund, caller)
}

// ConfirmDelivery moves a Funded trade to Completed. Only the seller may call it.
func ConfirmDelivery(tx ledger.Tx, id uint64, caller ledger.Address) (*Trade, error) {
	return transition(tx, id, ActionConfirm, caller)
}

// Cancel moves a Created trade to Cancelled. Only the seller may call it.
func Cancel(tx ledger.Tx, id uint64, caller ledger.Address) (*Trade, error) {
	return transition(tx, id, ActionCancel, caller)
}

// Get returns the trade with the given id, or nil if none exists.
func Get(tx ledger.Tx, id uint64) (*Trade, error) {
	t, err := load(tx, id)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, nil
	}
	return t, err
}

func transition(tx ledger.Tx, id uint64, action Action, caller ledger.Address) (*Trade, error) {
	cur, err := load(tx, id)
	if err != nil {
		return nil, err
	}
	next, err := Apply(*cur, action, caller)
	if err != nil {
		return nil, err
	}
	if err := put(tx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func load(tx ledger.Tx, id uint64) (*Trade, error) {
	data, ok, err := tx.Get(ledger.TradeKey(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: trade %d", ledger.ErrNotFound, id)
	}
	t, err := DeserializeTrade(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrCorruptRecord, err)
	}
	return t, nil
}

func put(tx ledger.Tx, t *Trade) error {
	data, err := SerializeTrade(t)
	if err != nil {
		return err
	}
	return tx.Set(ledger.TradeKey(t.ID), data)
}
