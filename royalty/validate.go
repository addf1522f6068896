package royalty

import (
	"fmt"
	"math/bits"

	"github.com/bitfsorg/pact-go/ledger"
)

// SumBps adds up the recipient shares, failing on uint32 overflow.
func SumBps(recipients []RecipientShare) (uint32, error) {
	var total uint32
	for i, r := range recipients {
		sum, carry := bits.Add32(total, r.Bps, 0)
		if carry != 0 {
			return 0, fmt.Errorf("%w: share sum overflows at recipient %d", ledger.ErrArithmeticOverflow, i)
		}
		total = sum
	}
	return total, nil
}

// ValidateRecipients checks that the shares sum to exactly TotalBps.
func ValidateRecipients(recipients []RecipientShare) error {
	total, err := SumBps(recipients)
	if err != nil {
		return err
	}
	if total != TotalBps {
		return fmt.Errorf("%w: shares sum to %d bps, want %d", ledger.ErrInvalidArgument, total, TotalBps)
	}
	return nil
}
