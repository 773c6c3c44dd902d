package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/eventcard/terminal/internal/logging"
)

type Type string

const (
	CheckoutCompleted Type = "checkout_completed"
	RechargeCompleted Type = "recharge_completed"
	CardAssigned      Type = "card_assigned"
	CardBlocked       Type = "card_blocked"
	CardUnblocked     Type = "card_unblocked"
)

// Event is what a terminal reports after an operation the backend accepted.
type Event struct {
	ID          string          `json:"id"`
	Type        Type            `json:"type"`
	TerminalID  string          `json:"terminal_id"`
	CardNumber  string          `json:"card_number"`
	Amount      decimal.Decimal `json:"amount"`
	Balance     decimal.Decimal `json:"balance"`
	PointOfSale string          `json:"point_of_sale,omitempty"`
	Detail      string          `json:"detail,omitempty"`
	At          time.Time       `json:"at"`
}

func New(t Type, terminalID, cardNumber string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		TerminalID: terminalID,
		CardNumber: cardNumber,
		At:         time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Emit publishes e and only logs a failure; the operator action that
// produced the event has already succeeded.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		logging.FromContext(ctx).Warn("publish event failed",
			zap.String("event_type", string(e.Type)),
			zap.String("event_id", e.ID),
			zap.Error(err),
		)
	}
}

// Nop discards events. It is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
