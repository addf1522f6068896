package api

import (
	"fmt"
	"math/big"

	"github.com/bitfsorg/pact-go/ledger"
	"github.com/bitfsorg/pact-go/royalty"
)

// TradeCreateRequest is the payload for opening a trade.
type TradeCreateRequest struct {
	ID        uint64 `json:"id"`
	Seller    string `json:"seller"`
	Buyer     string `json:"buyer"`
	AssetDesc string `json:"asset_desc"`
	Price     string `json:"price"`
}

// RecipientRequest is one entry of a stream's recipient list.
type RecipientRequest struct {
	Recipient string `json:"recipient"`
	Bps       uint32 `json:"bps"`
}

// StreamCreateRequest is the payload for registering a royalty stream.
type StreamCreateRequest struct {
	ID         uint64             `json:"id"`
	Owner      string             `json:"owner"`
	Recipients []RecipientRequest `json:"recipients"`
}

// StreamToggleRequest sets a stream's active flag.
type StreamToggleRequest struct {
	Active *bool `json:"active"`
}

type tradeArgs struct {
	seller, buyer ledger.Address
	price         *big.Int
}

func (r TradeCreateRequest) parse() (tradeArgs, error) {
	var args tradeArgs
	var err error
	if args.seller, err = parseAddressField("seller", r.Seller); err != nil {
		return args, err
	}
	if args.buyer, err = parseAddressField("buyer", r.Buyer); err != nil {
		return args, err
	}
	if args.price, err = parseAmount("price", r.Price); err != nil {
		return args, err
	}
	return args, nil
}

func (r StreamCreateRequest) parse() (ledger.Address, []royalty.RecipientShare, error) {
	owner, err := parseAddressField("owner", r.Owner)
	if err != nil {
		return owner, nil, err
	}
	recipients := make([]royalty.RecipientShare, 0, len(r.Recipients))
	for i, rr := range r.Recipients {
		addr, err := parseAddressField(fmt.Sprintf("recipients[%d]", i), rr.Recipient)
		if err != nil {
			return owner, nil, err
		}
		recipients = append(recipients, royalty.RecipientShare{Recipient: addr, Bps: rr.Bps})
	}
	return owner, recipients, nil
}

func (r StreamToggleRequest) validate() error {
	if r.Active == nil {
		return fmt.Errorf("%w: active is required", ledger.ErrInvalidArgument)
	}
	return nil
}

func parseAddressField(name, s string) (ledger.Address, error) {
	if s == "" {
		return ledger.Address{}, fmt.Errorf("%w: %s is required", ledger.ErrInvalidArgument, name)
	}
	addr, err := ledger.ParseAddress(s)
	if err != nil {
		return ledger.Address{}, fmt.Errorf("%s: %w", name, err)
	}
	return addr, nil
}

// parseAmount decodes a base-10 integer string. Range checks are left to
// the ledger operations.
func parseAmount(name, s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: %s is required", ledger.ErrInvalidArgument, name)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %s %q is not a decimal integer", ledger.ErrInvalidArgument, name, s)
	}
	return v, nil
}
