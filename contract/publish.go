package contract

import (
	"context"

	"go.uber.org/zap"

	"github.com/bitfsorg/pact-go/escrow"
	"github.com/bitfsorg/pact-go/events"
	"github.com/bitfsorg/pact-go/ledger"
	"github.com/bitfsorg/pact-go/metrics"
	"github.com/bitfsorg/pact-go/royalty"
)

type tradePayload struct {
	Seller    string `json:"seller"`
	Buyer     string `json:"buyer"`
	AssetDesc string `json:"asset_desc"`
	Price     string `json:"price"`
	Status    string `json:"status"`
}

type recipientPayload struct {
	Recipient string `json:"recipient"`
	Bps       uint32 `json:"bps"`
}

type streamPayload struct {
	Owner      string             `json:"owner"`
	Active     bool               `json:"active"`
	Recipients []recipientPayload `json:"recipients,omitempty"`
}

func (c *Contract) addr(a ledger.Address) string {
	s, err := a.Encode(c.mainnet)
	if err != nil {
		return a.String()
	}
	return s
}

func (c *Contract) tradePayload(t *escrow.Trade) any {
	if t == nil {
		return nil
	}
	return tradePayload{
		Seller:    c.addr(t.Seller),
		Buyer:     c.addr(t.Buyer),
		AssetDesc: t.AssetDesc,
		Price:     t.Price.String(),
		Status:    t.Status.String(),
	}
}

func (c *Contract) streamPayload(s *royalty.Stream, recipients []royalty.RecipientShare) any {
	if s == nil {
		return nil
	}
	p := streamPayload{Owner: c.addr(s.Owner), Active: s.Active}
	for _, r := range recipients {
		p.Recipients = append(p.Recipients, recipientPayload{Recipient: c.addr(r.Recipient), Bps: r.Bps})
	}
	return p
}

// publish emits a post-commit event. Failures are logged and counted only;
// the invocation has already committed.
func (c *Contract) publish(ctx context.Context, eventType string, id uint64, caller ledger.Address, payload any) {
	ev, err := events.New(eventType, id, c.addr(caller), payload)
	if err == nil {
		err = c.pub.Publish(ctx, ev)
	}
	if err != nil {
		metrics.EventPublishErrors.WithLabelValues(eventType).Inc()
		c.log.Warn("contract.event_publish_failed",
			zap.String("event_type", eventType),
			zap.Uint64("record_id", id),
			zap.Error(err),
		)
	}
}
