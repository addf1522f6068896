package royalty

import (
	"fmt"
	"math/big"

	"github.com/bitfsorg/pact-go/ledger"
)

var bpsDenominator = big.NewInt(int64(TotalBps))

// Distribute splits amount across recipients in order.
// Each share is floor(amount * bps / 10000); the truncation remainder is
// left undistributed, so the sum may fall short of amount by up to
// len(recipients)-1 units.
func Distribute(amount *big.Int, recipients []RecipientShare) ([]Share, error) {
	if err := ledger.CheckPositiveAmount("amount", amount); err != nil {
		return nil, err
	}

	shares := make([]Share, len(recipients))
	for i, r := range recipients {
		v := new(big.Int).Mul(amount, big.NewInt(int64(r.Bps)))
		v.Quo(v, bpsDenominator)
		shares[i] = Share{Recipient: r.Recipient, Amount: v}
	}
	return shares, nil
}

// Remainder returns amount minus the sum of shares: the truncation loss.
func Remainder(amount *big.Int, shares []Share) (*big.Int, error) {
	if amount == nil {
		return nil, fmt.Errorf("%w: amount", ledger.ErrNilParam)
	}
	rem := new(big.Int).Set(amount)
	for _, s := range shares {
		if s.Amount == nil {
			return nil, fmt.Errorf("%w: share amount", ledger.ErrNilParam)
		}
		rem.Sub(rem, s.Amount)
	}
	return rem, nil
}
