// Package contract hosts the escrow and royalty protocols on a ledger store.
// Each invocation runs as one atomic unit; invocations on the same Contract
// are serialized.
package contract

import (
	"context"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bitfsorg/pact-go/escrow"
	"github.com/bitfsorg/pact-go/events"
	"github.com/bitfsorg/pact-go/ledger"
	"github.com/bitfsorg/pact-go/metrics"
	"github.com/bitfsorg/pact-go/royalty"
)

// Operation names, used as metric labels and log fields.
const (
	OpCreateTrade     = "create_trade"
	OpMarkFunded      = "mark_funded"
	OpConfirmDelivery = "confirm_delivery"
	OpCancelTrade     = "cancel_trade"
	OpGetTrade        = "get_trade"
	OpCreateStream    = "create_stream"
	OpToggleStream    = "toggle_stream"
	OpCalcShares      = "calc_shares"
	OpGetStream       = "get_stream"
	OpGetRecipients   = "get_recipients"
)

// Contract is the invocation surface over a ledger.Store.
type Contract struct {
	mu      sync.Mutex
	store   ledger.Store
	log     *zap.Logger
	pub     events.Publisher
	mainnet bool
}

// Option configures a Contract.
type Option func(*Contract)

// WithLogger sets the logger. A nil logger is replaced by a no-op one.
func WithLogger(l *zap.Logger) Option {
	return func(c *Contract) {
		if l != nil {
			c.log = l
		}
	}
}

// WithPublisher sets where committed-state events go.
func WithPublisher(p events.Publisher) Option {
	return func(c *Contract) {
		if p != nil {
			c.pub = p
		}
	}
}

// WithMainnet selects mainnet address encoding in event payloads.
func WithMainnet(mainnet bool) Option {
	return func(c *Contract) { c.mainnet = mainnet }
}

// New creates a Contract over store.
func New(store ledger.Store, opts ...Option) *Contract {
	c := &Contract{
		store:   store,
		log:     zap.NewNop(),
		pub:     events.Nop{},
		mainnet: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateTrade opens a new trade in the Created state and returns it.
func (c *Contract) CreateTrade(ctx context.Context, id uint64, seller, buyer ledger.Address, assetDesc string, price *big.Int) (*escrow.Trade, error) {
	var t *escrow.Trade
	err := c.invoke(ctx, OpCreateTrade, true, func(tx ledger.Tx) error {
		var err error
		t, err = escrow.Create(tx, id, seller, buyer, assetDesc, price)
		return err
	}, func() {
		c.publish(ctx, events.TradeCreated, id, seller, c.tradePayload(t))
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// MarkFunded records that the buyer has funded the trade.
func (c *Contract) MarkFunded(ctx context.Context, id uint64, caller ledger.Address) (*escrow.Trade, error) {
	return c.transition(ctx, OpMarkFunded, events.TradeFunded, id, caller, escrow.MarkFunded)
}

// ConfirmDelivery completes a funded trade on the seller's word.
func (c *Contract) ConfirmDelivery(ctx context.Context, id uint64, caller ledger.Address) (*escrow.Trade, error) {
	return c.transition(ctx, OpConfirmDelivery, events.TradeCompleted, id, caller, escrow.ConfirmDelivery)
}

// CancelTrade cancels a trade that has not been funded.
func (c *Contract) CancelTrade(ctx context.Context, id uint64, caller ledger.Address) (*escrow.Trade, error) {
	return c.transition(ctx, OpCancelTrade, events.TradeCancelled, id, caller, escrow.Cancel)
}

type transitionFunc func(tx ledger.Tx, id uint64, caller ledger.Address) (*escrow.Trade, error)

func (c *Contract) transition(ctx context.Context, op, eventType string, id uint64, caller ledger.Address, fn transitionFunc) (*escrow.Trade, error) {
	var t *escrow.Trade
	err := c.invoke(ctx, op, true, func(tx ledger.Tx) error {
		var err error
		t, err = fn(tx, id, caller)
		return err
	}, func() {
		c.publish(ctx, eventType, id, caller, c.tradePayload(t))
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTrade returns the stored trade, or nil if no trade has that id.
func (c *Contract) GetTrade(ctx context.Context, id uint64) (*escrow.Trade, error) {
	var t *escrow.Trade
	err := c.invoke(ctx, OpGetTrade, false, func(tx ledger.Tx) error {
		var err error
		t, err = escrow.Get(tx, id)
		return err
	}, nil)
	return t, err
}

// CreateStream registers a royalty stream with its recipients and returns it.
func (c *Contract) CreateStream(ctx context.Context, id uint64, owner ledger.Address, recipients []royalty.RecipientShare) (*royalty.Stream, error) {
	var s *royalty.Stream
	err := c.invoke(ctx, OpCreateStream, true, func(tx ledger.Tx) error {
		var err error
		s, err = royalty.CreateStream(tx, id, owner, recipients)
		return err
	}, func() {
		c.publish(ctx, events.StreamCreated, id, owner, c.streamPayload(s, recipients))
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ToggleStream sets the stream's active flag and returns the stream. Owner only.
func (c *Contract) ToggleStream(ctx context.Context, id uint64, caller ledger.Address, active bool) (*royalty.Stream, error) {
	var s *royalty.Stream
	err := c.invoke(ctx, OpToggleStream, true, func(tx ledger.Tx) error {
		var err error
		s, err = royalty.ToggleStream(tx, id, caller, active)
		return err
	}, func() {
		c.publish(ctx, events.StreamToggled, id, caller, c.streamPayload(s, nil))
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CalcShares splits amount across the stream's recipients. Read-only.
func (c *Contract) CalcShares(ctx context.Context, id uint64, amount *big.Int) ([]royalty.Share, error) {
	var shares []royalty.Share
	err := c.invoke(ctx, OpCalcShares, false, func(tx ledger.Tx) error {
		var err error
		shares, err = royalty.CalcShares(tx, id, amount)
		return err
	}, nil)
	if err != nil {
		return nil, err
	}
	return shares, nil
}

// GetStream returns the stored stream, or nil if absent.
func (c *Contract) GetStream(ctx context.Context, id uint64) (*royalty.Stream, error) {
	var s *royalty.Stream
	err := c.invoke(ctx, OpGetStream, false, func(tx ledger.Tx) error {
		var err error
		s, err = royalty.GetStream(tx, id)
		return err
	}, nil)
	return s, err
}

// GetRecipients returns the stream's recipient list, or nil if absent.
func (c *Contract) GetRecipients(ctx context.Context, id uint64) ([]royalty.RecipientShare, error) {
	var rs []royalty.RecipientShare
	err := c.invoke(ctx, OpGetRecipients, false, func(tx ledger.Tx) error {
		var err error
		rs, err = royalty.GetRecipients(tx, id)
		return err
	}, nil)
	return rs, err
}

// Mainnet reports whether addresses render with the mainnet prefix.
func (c *Contract) Mainnet() bool { return c.mainnet }

// invoke runs fn as one atomic unit under the contract lock. committed, if
// set, runs after a successful commit and before the lock is released, so
// events leave in commit order.
func (c *Contract) invoke(ctx context.Context, op string, write bool, fn func(ledger.Tx) error, committed func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	defer metrics.ObserveDuration(metrics.InvocationDuration, start, op)

	var err error
	if write {
		err = c.store.Update(ctx, fn)
	} else {
		err = c.store.View(ctx, fn)
	}

	if err == nil && committed != nil {
		committed()
	}

	kind := ledger.Kind(err)
	metrics.IncInvocation(op, kind)
	switch {
	case err == nil:
		c.log.Debug("contract.invocation",
			zap.String("operation", op),
			zap.Duration("took", time.Since(start)),
		)
	case kind == "internal":
		c.log.Error("contract.invocation_failed",
			zap.String("operation", op),
			zap.Error(err),
		)
	default:
		c.log.Info("contract.invocation_rejected",
			zap.String("operation", op),
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
	return err
}
