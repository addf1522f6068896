package ledger

import (
	"encoding/hex"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
)

// AddressSize is the length of a P2PKH public key hash.
const AddressSize = 20

// Address identifies a caller, seller, buyer, owner or recipient.
// It is the HASH160 of the party's public key, as carried by a P2PKH address.
type Address [AddressSize]byte

// ParseAddress decodes a Base58Check P2PKH address string (any network).
func ParseAddress(s string) (Address, error) {
	var a Address
	if s == "" {
		return a, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	parsed, err := script.NewAddressFromString(s)
	if err != nil {
		return a, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	pkh := []byte(parsed.PublicKeyHash)
	if len(pkh) != AddressSize {
		return a, fmt.Errorf("%w: public key hash must be %d bytes, got %d", ErrInvalidAddress, AddressSize, len(pkh))
	}
	copy(a[:], pkh)
	return a, nil
}

// AddressFromHash wraps a raw 20-byte public key hash.
func AddressFromHash(pkh []byte) (Address, error) {
	var a Address
	if len(pkh) != AddressSize {
		return a, fmt.Errorf("%w: public key hash must be %d bytes, got %d", ErrInvalidAddress, AddressSize, len(pkh))
	}
	copy(a[:], pkh)
	return a, nil
}

// Encode renders the address as a Base58Check string for mainnet or testnet.
func (a Address) Encode(mainnet bool) (string, error) {
	addr, err := script.NewAddressFromPublicKeyHash(a[:], mainnet)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return addr.AddressString, nil
}

// String returns the mainnet encoding, or hex if encoding fails.
func (a Address) String() string {
	s, err := a.Encode(true)
	if err != nil {
		return hex.EncodeToString(a[:])
	}
	return s
}

// IsZero reports whether the address is all zero bytes.
func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	s, err := a.Encode(true)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
