package escrow

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	"github.com/bitfsorg/pact-go/ledger"
)

const (
	tradeVersion    = 0x01
	priceSize       = 16                                  // unsigned magnitude of a positive int128
	tradeHeaderSize = 1 + 8 + 20 + 20 + 1 + priceSize + 4 // version + id + seller + buyer + status + price + desc_len
)

// SerializeTrade encodes a Trade to binary format.
func SerializeTrade(t *Trade) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: trade", ledger.ErrNilParam)
	}
	if err := ledger.CheckPositiveAmount("price", t.Price); err != nil {
		return nil, err
	}
	if len(t.AssetDesc) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: asset description too long", ledger.ErrInvalidArgument)
	}

	buf := make([]byte, tradeHeaderSize+len(t.AssetDesc))
	offset := 0

	buf[offset] = tradeVersion
	offset++

	binary.BigEndian.PutUint64(buf[offset:offset+8], t.ID)
	offset += 8

	copy(buf[offset:offset+20], t.Seller[:])
	offset += 20

	copy(buf[offset:offset+20], t.Buyer[:])
	offset += 20

	buf[offset] = byte(t.Status)
	offset++

	t.Price.FillBytes(buf[offset : offset+priceSize])
	offset += priceSize

	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(len(t.AssetDesc)))
	offset += 4

	copy(buf[offset:], t.AssetDesc)
	return buf, nil
}

// DeserializeTrade decodes binary data into a Trade.
func DeserializeTrade(data []byte) (*Trade, error) {
	if len(data) < tradeHeaderSize {
		return nil, fmt.Errorf("%w: too short (%d bytes)", ErrInvalidTradeData, len(data))
	}
	offset := 0

	if data[offset] != tradeVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrInvalidTradeData, data[offset])
	}
	offset++

	t := &Trade{}
	t.ID = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8

	copy(t.Seller[:], data[offset:offset+20])
	offset += 20

	copy(t.Buyer[:], data[offset:offset+20])
	offset += 20

	t.Status = Status(data[offset])
	offset++
	if !t.Status.valid() {
		return nil, fmt.Errorf("%w: unknown status %d", ErrInvalidTradeData, uint8(t.Status))
	}

	t.Price = new(big.Int).SetBytes(data[offset : offset+priceSize])
	offset += priceSize
	if t.Price.Sign() <= 0 || t.Price.BitLen() > ledger.AmountBits {
		return nil, fmt.Errorf("%w: price out of range", ErrInvalidTradeData)
	}

	descLen := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if len(data)-offset != descLen {
		return nil, fmt.Errorf("%w: expected %d description bytes, got %d",
			ErrInvalidTradeData, descLen, len(data)-offset)
	}
	t.AssetDesc = string(data[offset:])
	return t, nil
}
