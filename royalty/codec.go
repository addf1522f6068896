package royalty

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/bitfsorg/pact-go/ledger"
)

const (
	codecVersion = 0x01

	streamSize          = 1 + 8 + 20 + 4 + 1 // version + id + owner + total_bps + active
	recipientHeaderSize = 1 + 4              // version + count
	recipientEntrySize  = 20 + 4             // address + bps
)

// SerializeStream encodes a Stream to binary format.
func SerializeStream(s *Stream) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: stream", ledger.ErrNilParam)
	}
	buf := make([]byte, streamSize)
	buf[0] = codecVersion
	binary.BigEndian.PutUint64(buf[1:9], s.ID)
	copy(buf[9:29], s.Owner[:])
	binary.BigEndian.PutUint32(buf[29:33], s.TotalBps)
	if s.Active {
		buf[33] = 1
	}
	return buf, nil
}

// DeserializeStream decodes binary data into a Stream.
func DeserializeStream(data []byte) (*Stream, error) {
	if len(data) != streamSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidStreamData, streamSize, len(data))
	}
	if data[0] != codecVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrInvalidStreamData, data[0])
	}
	s := &Stream{}
	s.ID = binary.BigEndian.Uint64(data[1:9])
	copy(s.Owner[:], data[9:29])
	s.TotalBps = binary.BigEndian.Uint32(data[29:33])
	switch data[33] {
	case 0:
	case 1:
		s.Active = true
	default:
		return nil, fmt.Errorf("%w: bad active flag %d", ErrInvalidStreamData, data[33])
	}
	return s, nil
}

// SerializeRecipients encodes an ordered recipient list to binary format.
func SerializeRecipients(recipients []RecipientShare) ([]byte, error) {
	if len(recipients) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d recipients", ledger.ErrInvalidArgument, len(recipients))
	}
	buf := make([]byte, recipientHeaderSize+recipientEntrySize*len(recipients))
	buf[0] = codecVersion
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(recipients)))

	offset := recipientHeaderSize
	for _, r := range recipients {
		copy(buf[offset:offset+20], r.Recipient[:])
		offset += 20
		binary.BigEndian.PutUint32(buf[offset:offset+4], r.Bps)
		offset += 4
	}
	return buf, nil
}

// DeserializeRecipients decodes binary data into an ordered recipient list.
func DeserializeRecipients(data []byte) ([]RecipientShare, error) {
	if len(data) < recipientHeaderSize {
		return nil, fmt.Errorf("%w: too short (%d bytes)", ErrInvalidRecipientData, len(data))
	}
	if data[0] != codecVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrInvalidRecipientData, data[0])
	}
	count := int(binary.BigEndian.Uint32(data[1:5]))

	expectedSize := recipientHeaderSize + recipientEntrySize*count
	if len(data) != expectedSize {
		return nil, fmt.Errorf("%w: expected %d bytes for %d recipients, got %d",
			ErrInvalidRecipientData, expectedSize, count, len(data))
	}

	recipients := make([]RecipientShare, count)
	offset := recipientHeaderSize
	for i := 0; i < count; i++ {
		copy(recipients[i].Recipient[:], data[offset:offset+20])
		offset += 20
		recipients[i].Bps = binary.BigEndian.Uint32(data[offset : offset+4])
		offset += 4
	}
	return recipients, nil
}
