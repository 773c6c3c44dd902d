package pos

import (
	"github.com/shopspring/decimal"

	"github.com/eventcard/terminal/internal/domain"
)

type LineView struct {
	Index        int             `json:"index"`
	ItemID       int64           `json:"item_id"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	SubtotalText string          `json:"subtotal_text"`
}

// View is an immutable snapshot of a session for rendering.
type View struct {
	TerminalID   string                 `json:"terminal_id"`
	Card         *domain.Card           `json:"card,omitempty"`
	BalanceText  string                 `json:"balance_text,omitempty"`
	CardError    string                 `json:"card_error,omitempty"`
	PointOfSale  *domain.PointOfSale    `json:"point_of_sale,omitempty"`
	PointsOfSale []domain.PointOfSale   `json:"points_of_sale"`
	Category     string                 `json:"category,omitempty"`
	Catalog      []domain.CatalogItem   `json:"catalog"`
	Lines        []LineView             `json:"lines"`
	Total        decimal.Decimal        `json:"total"`
	TotalText    string                 `json:"total_text"`
	Eligibility  Eligibility            `json:"eligibility"`
	InFlight     bool                   `json:"in_flight"`
	CanCheckout  bool                   `json:"can_checkout"`
	Pending      *Confirmation          `json:"pending_confirmation,omitempty"`
	LastResult   *domain.CheckoutResult `json:"last_result,omitempty"`
	Recent       []RecentEntry          `json:"recent"`
	Version      uint64                 `json:"version"`

	// Seq grows with every published change, including ones that keep Version.
	Seq uint64 `json:"seq"`
}

func (s *Session) viewLocked() View {
	f := s.formatter
	v := View{
		TerminalID:   s.terminalID,
		CardError:    s.cardError,
		PointsOfSale: append([]domain.PointOfSale(nil), s.pointsOfSale...),
		Category:     s.category,
		Catalog:      append([]domain.CatalogItem(nil), s.catalog...),
		Total:        s.cart.Total(),
		TotalText:    f.Format(s.cart.Total()),
		Eligibility:  Evaluate(s.card, s.pointOfSale, s.cart.Total()),
		InFlight:     s.inFlight,
		Recent:       s.recent.Entries(),
		Version:      s.version,
		Seq:          s.changes,
	}
	v.CanCheckout = v.Eligibility.Enabled && !s.inFlight
	if s.card != nil {
		c := *s.card
		v.Card = &c
		v.BalanceText = f.Format(c.Balance)
	}
	if s.pointOfSale != nil {
		p := *s.pointOfSale
		v.PointOfSale = &p
	}
	for i, l := range s.cart.Lines() {
		sub := l.Subtotal()
		v.Lines = append(v.Lines, LineView{
			Index:        i,
			ItemID:       l.ItemID,
			Name:         l.Name,
			UnitPrice:    l.UnitPrice,
			Quantity:     l.Quantity,
			Subtotal:     sub,
			SubtotalText: f.Format(sub),
		})
	}
	if s.pending != nil {
		p := *s.pending
		p.Lines = append([]domain.CartLine(nil), p.Lines...)
		v.Pending = &p
	}
	if s.last != nil {
		r := *s.last
		v.LastResult = &r
	}
	return v
}
