package escrow

import "errors"

var (
	// ErrInvalidTradeData indicates a stored trade record is malformed.
	ErrInvalidTradeData = errors.New("escrow: invalid trade data")
)
