package pos

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/eventcard/terminal/internal/domain"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	bar := &domain.PointOfSale{ID: 1, Name: "Bar", Active: true}
	active := func(balance string) *domain.Card {
		return &domain.Card{Number: "TARJ-000123", Balance: decimal.RequireFromString(balance), Active: true}
	}
	inactive := &domain.Card{Number: "TARJ-000123", Balance: decimal.RequireFromString("50"), Active: false}

	tests := []struct {
		name    string
		card    *domain.Card
		pos     *domain.PointOfSale
		total   string
		enabled bool
		reasons []Reason
	}{
		{name: "all good", card: active("50"), pos: bar, total: "35", enabled: true, reasons: []Reason{}},
		{name: "exact balance", card: active("35"), pos: bar, total: "35", enabled: true, reasons: []Reason{}},
		{name: "no card", card: nil, pos: bar, total: "35", reasons: []Reason{ReasonNoCard}},
		{name: "inactive card", card: inactive, pos: bar, total: "35", reasons: []Reason{ReasonCardInactive}},
		{name: "no point of sale", card: active("50"), pos: nil, total: "35", reasons: []Reason{ReasonNoPointOfSale}},
		{name: "empty cart", card: active("50"), pos: bar, total: "0", reasons: []Reason{ReasonEmptyCart}},
		{name: "insufficient", card: active("5"), pos: bar, total: "35", reasons: []Reason{ReasonInsufficientBalance}},
		{
			name:    "everything wrong in order",
			card:    nil,
			pos:     nil,
			total:   "0",
			reasons: []Reason{ReasonNoCard, ReasonNoPointOfSale, ReasonEmptyCart},
		},
		{
			name:    "inactive and short",
			card:    &domain.Card{Balance: decimal.RequireFromString("1"), Active: false},
			pos:     bar,
			total:   "2",
			reasons: []Reason{ReasonCardInactive, ReasonInsufficientBalance},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Evaluate(tt.card, tt.pos, decimal.RequireFromString(tt.total))
			assert.Equal(t, tt.enabled, got.Enabled)
			assert.Equal(t, tt.reasons, got.Reasons)
			if tt.enabled {
				assert.NoError(t, got.Err())
			} else {
				assert.ErrorIs(t, got.Err(), tt.reasons[0].Err())
			}
		})
	}
}
