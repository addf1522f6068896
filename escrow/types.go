package escrow

import (
	"fmt"
	"math/big"

	"github.com/bitfsorg/pact-go/ledger"
)

// Status is the lifecycle state of a trade.
type Status uint8

const (
	StatusCreated   Status = 0x01 // Offer recorded, awaiting the buyer's funding
	StatusFunded    Status = 0x02 // Buyer has funded, awaiting delivery
	StatusCompleted Status = 0x03 // Seller confirmed delivery (terminal)
	StatusCancelled Status = 0x04 // Seller withdrew before funding (terminal)
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusFunded:
		return "funded"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Terminal reports whether no further transition is defined from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) valid() bool {
	return s >= StatusCreated && s <= StatusCancelled
}

// Trade is one asset-for-payment agreement between a seller and a buyer.
// Everything except Status is fixed at creation.
type Trade struct {
	ID        uint64
	Seller    ledger.Address
	Buyer     ledger.Address
	AssetDesc string
	Price     *big.Int
	Status    Status
}

// Clone returns a deep copy of t.
func (t *Trade) Clone() *Trade {
	c := *t
	if t.Price != nil {
		c.Price = new(big.Int).Set(t.Price)
	}
	return &c
}
