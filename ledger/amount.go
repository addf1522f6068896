package ledger

import (
	"fmt"
	"math/big"
)

// AmountBits is the magnitude width of a signed 128-bit amount.
const AmountBits = 127

// CheckPositiveAmount verifies that v is strictly positive and fits a signed
// 128-bit integer, the domain prices and distributable amounts live in.
func CheckPositiveAmount(name string, v *big.Int) error {
	if v == nil {
		return fmt.Errorf("%w: %s is nil", ErrInvalidArgument, name)
	}
	if v.Sign() <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidArgument, name, v)
	}
	if v.BitLen() > AmountBits {
		return fmt.Errorf("%w: %s exceeds 128-bit range", ErrInvalidArgument, name)
	}
	return nil
}
