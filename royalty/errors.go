package royalty

import "errors"

var (
	// ErrInvalidStreamData indicates a stored stream record is malformed.
	ErrInvalidStreamData = errors.New("royalty: invalid stream data")

	// ErrInvalidRecipientData indicates a stored recipient list is malformed.
	ErrInvalidRecipientData = errors.New("royalty: invalid recipient data")
)
