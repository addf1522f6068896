package escrow

import (
	"fmt"

	"github.com/bitfsorg/pact-go/ledger"
)

// Action is a caller-initiated lifecycle step.
type Action uint8

const (
	ActionFund    Action = iota + 1 // buyer marks the trade funded
	ActionConfirm                   // seller confirms delivery
	ActionCancel                    // seller withdraws the offer
)

func (a Action) String() string {
	switch a {
	case ActionFund:
		return "fund"
	case ActionConfirm:
		return "confirm"
	case ActionCancel:
		return "cancel"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

// Apply performs action on t on behalf of caller and returns the updated trade.
// Authorization is checked before lifecycle legality; either failure leaves t unchanged.
func Apply(t Trade, action Action, caller ledger.Address) (Trade, error) {
	actor, role, err := actorFor(t, action)
	if err != nil {
		return t, err
	}
	if caller != actor {
		return t, fmt.Errorf("%w: only %s can %s trade %d", ledger.ErrUnauthorized, role, action, t.ID)
	}
	next, err := advance(t.Status, action)
	if err != nil {
		return t, fmt.Errorf("%w (trade %d)", err, t.ID)
	}
	t.Status = next
	return t, nil
}

func actorFor(t Trade, action Action) (ledger.Address, string, error) {
	switch action {
	case ActionFund:
		return t.Buyer, "buyer", nil
	case ActionConfirm, ActionCancel:
		return t.Seller, "seller", nil
	default:
		return ledger.Address{}, "", fmt.Errorf("%w: unknown action %d", ledger.ErrInvalidArgument, action)
	}
}

// advance is the lifecycle table. Every status is matched; anything not
// listed is rejected.
func advance(s Status, action Action) (Status, error) {
	switch s {
	case StatusCreated:
		switch action {
		case ActionFund:
			return StatusFunded, nil
		case ActionCancel:
			return StatusCancelled, nil
		}
	case StatusFunded:
		if action == ActionConfirm {
			return StatusCompleted, nil
		}
	case StatusCompleted, StatusCancelled:
	default:
		return s, fmt.Errorf("%w: unknown status %d", ledger.ErrInvalidState, uint8(s))
	}
	return s, fmt.Errorf("%w: cannot %s a %s trade", ledger.ErrInvalidState, action, s)
}
