package ledger

import (
	"encoding/binary"
	"fmt"
)

// Namespace separates the record families sharing one store.
type Namespace uint8

const (
	// NamespaceTrade holds escrow trades.
	NamespaceTrade Namespace = 0x01
	// NamespaceRoyalty holds royalty streams and their recipient lists.
	NamespaceRoyalty Namespace = 0x02
)

// Sub distinguishes record kinds stored under the same namespace and id.
type Sub uint8

const (
	// SubRecord is the primary record for an id.
	SubRecord Sub = 0x00
	// SubRecipients is the recipient list attached to a royalty stream.
	SubRecipients Sub = 0x01
)

// KeySize is the length of an encoded Key: namespace(1) + sub(1) + id(8).
const KeySize = 10

// Key addresses a single record in the store.
type Key struct {
	Namespace Namespace
	Sub       Sub
	ID        uint64
}

// TradeKey returns the key of the trade with the given id.
func TradeKey(id uint64) Key {
	return Key{Namespace: NamespaceTrade, Sub: SubRecord, ID: id}
}

// StreamKey returns the key of the royalty stream with the given id.
func StreamKey(id uint64) Key {
	return Key{Namespace: NamespaceRoyalty, Sub: SubRecord, ID: id}
}

// RecipientsKey returns the key of the recipient list for a royalty stream.
func RecipientsKey(id uint64) Key {
	return Key{Namespace: NamespaceRoyalty, Sub: SubRecipients, ID: id}
}

// Bytes encodes the key. The id is big-endian so keys of one family sort by id.
func (k Key) Bytes() []byte {
	buf := make([]byte, KeySize)
	buf[0] = byte(k.Namespace)
	buf[1] = byte(k.Sub)
	binary.BigEndian.PutUint64(buf[2:10], k.ID)
	return buf
}

// String renders the key for logs.
func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%d", k.Namespace, k.Sub, k.ID)
}

// ParseKey decodes bytes produced by Key.Bytes.
func ParseKey(data []byte) (Key, error) {
	if len(data) != KeySize {
		return Key{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKey, KeySize, len(data))
	}
	k := Key{
		Namespace: Namespace(data[0]),
		Sub:       Sub(data[1]),
		ID:        binary.BigEndian.Uint64(data[2:10]),
	}
	if !k.Namespace.valid() || !k.Sub.valid() {
		return Key{}, fmt.Errorf("%w: unknown tag %#x/%#x", ErrInvalidKey, data[0], data[1])
	}
	return k, nil
}

func (n Namespace) valid() bool {
	return n == NamespaceTrade || n == NamespaceRoyalty
}

func (n Namespace) String() string {
	switch n {
	case NamespaceTrade:
		return "trade"
	case NamespaceRoyalty:
		return "royalty"
	default:
		return fmt.Sprintf("ns(%d)", uint8(n))
	}
}

func (s Sub) valid() bool {
	return s == SubRecord || s == SubRecipients
}

func (s Sub) String() string {
	switch s {
	case SubRecord:
		return "record"
	case SubRecipients:
		return "recipients"
	default:
		return fmt.Sprintf("sub(%d)", uint8(s))
	}
}
