package pos

import (
	"github.com/shopspring/decimal"

	"github.com/eventcard/terminal/internal/domain"
)

// Reason names one condition keeping checkout disabled.
type Reason string

const (
	ReasonNoCard              Reason = "no_card"
	ReasonCardInactive        Reason = "card_inactive"
	ReasonNoPointOfSale       Reason = "no_point_of_sale"
	ReasonEmptyCart           Reason = "empty_cart"
	ReasonInsufficientBalance Reason = "insufficient_balance"
)

func (r Reason) Err() *domain.Error {
	switch r {
	case ReasonNoCard:
		return domain.ErrCardRequired
	case ReasonCardInactive:
		return domain.ErrCardInactive
	case ReasonNoPointOfSale:
		return domain.ErrPointOfSaleMissing
	case ReasonEmptyCart:
		return domain.ErrEmptyCart
	default:
		return domain.ErrInsufficientFunds
	}
}

type Eligibility struct {
	Enabled bool     `json:"enabled"`
	Reasons []Reason `json:"reasons"`
}

// Err returns the first blocking reason as an error, or nil when enabled.
func (e Eligibility) Err() error {
	if e.Enabled || len(e.Reasons) == 0 {
		return nil
	}
	return e.Reasons[0].Err()
}

// Evaluate is the checkout gate. Reasons are reported in a fixed order.
func Evaluate(card *domain.Card, pointOfSale *domain.PointOfSale, total decimal.Decimal) Eligibility {
	reasons := make([]Reason, 0, 5)
	if card == nil {
		reasons = append(reasons, ReasonNoCard)
	} else if !card.Active {
		reasons = append(reasons, ReasonCardInactive)
	}
	if pointOfSale == nil {
		reasons = append(reasons, ReasonNoPointOfSale)
	}
	if !total.IsPositive() {
		reasons = append(reasons, ReasonEmptyCart)
	}
	if card != nil && total.GreaterThan(card.Balance) {
		reasons = append(reasons, ReasonInsufficientBalance)
	}
	return Eligibility{Enabled: len(reasons) == 0, Reasons: reasons}
}
