package api

import (
	"github.com/bitfsorg/pact-go/escrow"
	"github.com/bitfsorg/pact-go/ledger"
	"github.com/bitfsorg/pact-go/royalty"
)

// TradeResponse is the wire view of a trade.
type TradeResponse struct {
	ID        uint64 `json:"id"`
	Seller    string `json:"seller"`
	Buyer     string `json:"buyer"`
	AssetDesc string `json:"asset_desc"`
	Price     string `json:"price"`
	Status    string `json:"status"`
}

// StreamResponse is the wire view of a royalty stream.
type StreamResponse struct {
	ID       uint64 `json:"id"`
	Owner    string `json:"owner"`
	TotalBps uint32 `json:"total_bps"`
	Active   bool   `json:"active"`
}

// RecipientResponse is one recipient with its basis points.
type RecipientResponse struct {
	Recipient string `json:"recipient"`
	Bps       uint32 `json:"bps"`
}

// ShareResponse is one recipient's computed cut.
type ShareResponse struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

// SharesResponse carries the computed split and its undistributed remainder.
type SharesResponse struct {
	StreamID  uint64          `json:"stream_id"`
	Amount    string          `json:"amount"`
	Shares    []ShareResponse `json:"shares"`
	Remainder string          `json:"remainder"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (h *Handler) addr(a ledger.Address) string {
	s, err := a.Encode(h.mainnet)
	if err != nil {
		return a.String()
	}
	return s
}

func (h *Handler) tradeResponse(t *escrow.Trade) TradeResponse {
	return TradeResponse{
		ID:        t.ID,
		Seller:    h.addr(t.Seller),
		Buyer:     h.addr(t.Buyer),
		AssetDesc: t.AssetDesc,
		Price:     t.Price.String(),
		Status:    t.Status.String(),
	}
}

func (h *Handler) streamResponse(s *royalty.Stream) StreamResponse {
	return StreamResponse{
		ID:       s.ID,
		Owner:    h.addr(s.Owner),
		TotalBps: s.TotalBps,
		Active:   s.Active,
	}
}
