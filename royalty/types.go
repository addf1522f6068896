package royalty

import (
	"math/big"

	"github.com/bitfsorg/pact-go/ledger"
)

// TotalBps is the required sum of all recipient shares (100%).
const TotalBps uint32 = 10_000

// RecipientShare is one payee's proportion of a stream, in basis points.
type RecipientShare struct {
	Recipient ledger.Address
	Bps       uint32
}

// Stream is a royalty split owned by a single identity.
type Stream struct {
	ID       uint64
	Owner    ledger.Address
	TotalBps uint32 // always TotalBps; fixed at creation
	Active   bool   // only the owner may flip it
}

// Share is a computed payout for one recipient.
type Share struct {
	Recipient ledger.Address
	Amount    *big.Int
}
