package api

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bitfsorg/pact-go/escrow"
	"github.com/bitfsorg/pact-go/ledger"
	"github.com/bitfsorg/pact-go/royalty"
)

// CallerHeader carries the already-authenticated caller address.
const CallerHeader = "X-Pact-Caller"

// Ledger is the invocation surface the handler dispatches to.
type Ledger interface {
	CreateTrade(ctx context.Context, id uint64, seller, buyer ledger.Address, assetDesc string, price *big.Int) (*escrow.Trade, error)
	MarkFunded(ctx context.Context, id uint64, caller ledger.Address) (*escrow.Trade, error)
	ConfirmDelivery(ctx context.Context, id uint64, caller ledger.Address) (*escrow.Trade, error)
	CancelTrade(ctx context.Context, id uint64, caller ledger.Address) (*escrow.Trade, error)
	GetTrade(ctx context.Context, id uint64) (*escrow.Trade, error)
	CreateStream(ctx context.Context, id uint64, owner ledger.Address, recipients []royalty.RecipientShare) (*royalty.Stream, error)
	ToggleStream(ctx context.Context, id uint64, caller ledger.Address, active bool) (*royalty.Stream, error)
	CalcShares(ctx context.Context, id uint64, amount *big.Int) ([]royalty.Share, error)
	GetStream(ctx context.Context, id uint64) (*royalty.Stream, error)
	GetRecipients(ctx context.Context, id uint64) ([]royalty.RecipientShare, error)
}

// Handler serves the HTTP dispatch for trades and royalty streams.
type Handler struct {
	logger  *zap.Logger
	ledger  Ledger
	mainnet bool
}

// NewHandler creates a Handler. mainnet selects the address prefix used in responses.
func NewHandler(logger *zap.Logger, l Ledger, mainnet bool) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{logger: logger, ledger: l, mainnet: mainnet}
}

// CreateTrade handles POST /api/v1/trades.
func (h *Handler) CreateTrade(c *fiber.Ctx) error {
	var req TradeCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, err)
	}
	args, err := req.parse()
	if err != nil {
		return h.fail(c, err)
	}
	t, err := h.ledger.CreateTrade(c.UserContext(), req.ID, args.seller, args.buyer, req.AssetDesc, args.price)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.tradeResponse(t))
}

// MarkFunded handles POST /api/v1/trades/:id/fund.
func (h *Handler) MarkFunded(c *fiber.Ctx) error {
	return h.transition(c, h.ledger.MarkFunded)
}

// ConfirmDelivery handles POST /api/v1/trades/:id/deliver.
func (h *Handler) ConfirmDelivery(c *fiber.Ctx) error {
	return h.transition(c, h.ledger.ConfirmDelivery)
}

// CancelTrade handles POST /api/v1/trades/:id/cancel.
func (h *Handler) CancelTrade(c *fiber.Ctx) error {
	return h.transition(c, h.ledger.CancelTrade)
}

func (h *Handler) transition(c *fiber.Ctx, fn func(context.Context, uint64, ledger.Address) (*escrow.Trade, error)) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	caller, err := callerOf(c)
	if err != nil {
		return h.fail(c, err)
	}
	t, err := fn(c.UserContext(), id, caller)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(h.tradeResponse(t))
}

// GetTrade handles GET /api/v1/trades/:id.
func (h *Handler) GetTrade(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	t, err := h.ledger.GetTrade(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	if t == nil {
		return h.fail(c, fmt.Errorf("%w: trade %d", ledger.ErrNotFound, id))
	}
	return c.JSON(h.tradeResponse(t))
}

// CreateStream handles POST /api/v1/streams.
func (h *Handler) CreateStream(c *fiber.Ctx) error {
	var req StreamCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, err)
	}
	owner, recipients, err := req.parse()
	if err != nil {
		return h.fail(c, err)
	}
	s, err := h.ledger.CreateStream(c.UserContext(), req.ID, owner, recipients)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.streamResponse(s))
}

// ToggleStream handles POST /api/v1/streams/:id/toggle.
func (h *Handler) ToggleStream(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	caller, err := callerOf(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req StreamToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, err)
	}
	if err := req.validate(); err != nil {
		return h.fail(c, err)
	}
	s, err := h.ledger.ToggleStream(c.UserContext(), id, caller, *req.Active)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(h.streamResponse(s))
}

// GetStream handles GET /api/v1/streams/:id.
func (h *Handler) GetStream(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	s, err := h.ledger.GetStream(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	if s == nil {
		return h.fail(c, fmt.Errorf("%w: stream %d", ledger.ErrNotFound, id))
	}
	return c.JSON(h.streamResponse(s))
}

// GetRecipients handles GET /api/v1/streams/:id/recipients.
func (h *Handler) GetRecipients(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	rs, err := h.ledger.GetRecipients(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	if rs == nil {
		return h.fail(c, fmt.Errorf("%w: recipients of stream %d", ledger.ErrNotFound, id))
	}
	out := make([]RecipientResponse, len(rs))
	for i, r := range rs {
		out[i] = RecipientResponse{Recipient: h.addr(r.Recipient), Bps: r.Bps}
	}
	return c.JSON(out)
}

// CalcShares handles GET /api/v1/streams/:id/shares?amount=N.
func (h *Handler) CalcShares(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return h.fail(c, err)
	}
	amount, err := parseAmount("amount", c.Query("amount"))
	if err != nil {
		return h.fail(c, err)
	}
	shares, err := h.ledger.CalcShares(c.UserContext(), id, amount)
	if err != nil {
		return h.fail(c, err)
	}
	remainder, err := royalty.Remainder(amount, shares)
	if err != nil {
		return h.fail(c, err)
	}
	resp := SharesResponse{
		StreamID:  id,
		Amount:    amount.String(),
		Shares:    make([]ShareResponse, len(shares)),
		Remainder: remainder.String(),
	}
	for i, s := range shares {
		resp.Shares[i] = ShareResponse{Recipient: h.addr(s.Recipient), Amount: s.Amount.String()}
	}
	return c.JSON(resp)
}

func pathID(c *fiber.Ctx) (uint64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id %q is not an unsigned integer", ledger.ErrInvalidArgument, raw)
	}
	return id, nil
}

func callerOf(c *fiber.Ctx) (ledger.Address, error) {
	raw := c.Get(CallerHeader)
	if raw == "" {
		return ledger.Address{}, fmt.Errorf("%w: %s header is required", ledger.ErrInvalidArgument, CallerHeader)
	}
	return parseAddressField("caller", raw)
}

func (h *Handler) badRequest(c *fiber.Ctx, err error) error {
	return h.fail(c, fmt.Errorf("%w: %w", ledger.ErrInvalidArgument, err))
}

// fail writes the error body with the status its kind maps to.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	kind := ledger.Kind(err)
	status := StatusForKind(kind)
	if status >= fiber.StatusInternalServerError {
		h.logger.Error("api.request_failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.Status(status).JSON(ErrorResponse{Error: err.Error(), Kind: kind})
}

// StatusForKind maps a ledger error kind to an HTTP status code.
func StatusForKind(kind string) int {
	switch kind {
	case "ok":
		return fiber.StatusOK
	case "duplicate_id", "invalid_state", "inactive_resource", "conflict":
		return fiber.StatusConflict
	case "not_found":
		return fiber.StatusNotFound
	case "unauthorized":
		return fiber.StatusForbidden
	case "invalid_argument":
		return fiber.StatusBadRequest
	case "arithmetic_overflow":
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
