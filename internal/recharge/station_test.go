package recharge

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventcard/terminal/internal/domain"
	"github.com/eventcard/terminal/internal/events"
)

type fakeBackend struct {
	mu      sync.Mutex
	balance decimal.Decimal
	blocked bool
	calls   int
	lastKey string
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeBackend) CardBalance(_ context.Context, number string) (domain.Card, error) {
	n, err := domain.ValidateCardNumber(number)
	if err != nil {
		return domain.Card{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.Card{Number: n, Balance: f.balance, Active: !f.blocked}, nil
}

func (f *fakeBackend) CardHistory(_ context.Context, number string) (domain.CardHistory, error) {
	return domain.CardHistory{CardNumber: number}, nil
}

func (f *fakeBackend) Recharge(_ context.Context, number string, amount decimal.Decimal, key string) (domain.RechargeResult, error) {
	f.mu.Lock()
	f.calls++
	f.lastKey = key
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		f.entered <- struct{}{}
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	prev := f.balance
	f.balance = f.balance.Add(amount)
	unblocked := f.blocked && f.balance.IsPositive()
	if unblocked {
		f.blocked = false
	}
	return domain.RechargeResult{
		CardNumber:      number,
		Amount:          amount,
		PreviousBalance: prev,
		NewBalance:      f.balance,
		CardUnblocked:   unblocked,
	}, nil
}

type recorder struct {
	mu    sync.Mutex
	types []events.Type
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, e.Type)
	return nil
}

func TestStation_RechargeValidation(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{}
	st := NewStation("till-1", fb, nil)

	tests := []struct {
		name   string
		number string
		amount string
		field  string
	}{
		{name: "bad card", number: "TARJ-1", amount: "10", field: domain.CardNumberField},
		{name: "empty amount", number: "TARJ-000001", amount: "", field: amountField},
		{name: "not a number", number: "TARJ-000001", amount: "diez", field: amountField},
		{name: "zero", number: "TARJ-000001", amount: "0", field: amountField},
		{name: "negative", number: "TARJ-000001", amount: "-5", field: amountField},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := st.Recharge(context.Background(), tt.number, tt.amount)
			require.Error(t, err)
			var de *domain.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, domain.KindFormat, de.Kind)
			assert.Equal(t, tt.field, de.Field)
		})
	}
	assert.Equal(t, 0, fb.calls)
}

func TestStation_RechargeUnblocks(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{balance: decimal.Zero, blocked: true}
	rec := &recorder{}
	st := NewStation("till-1", fb, rec)

	res, err := st.Recharge(context.Background(), "tarj-000001", "100.50")
	require.NoError(t, err)
	assert.True(t, res.NewBalance.Equal(decimal.RequireFromString("100.50")))
	assert.True(t, res.CardUnblocked)
	assert.NotEmpty(t, fb.lastKey)
	assert.Equal(t, []events.Type{events.RechargeCompleted, events.CardUnblocked}, rec.types)

	card, err := st.Balance(context.Background(), "TARJ-000001")
	require.NoError(t, err)
	assert.True(t, card.Active)
}

func TestStation_OneRechargePerCard(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	st := NewStation("till-1", fb, nil)

	done := make(chan error, 1)
	go func() {
		_, err := st.Recharge(context.Background(), "TARJ-000001", "10")
		done <- err
	}()
	<-fb.entered

	_, err := st.Recharge(context.Background(), "TARJ-000001", "10")
	assert.ErrorIs(t, err, domain.ErrRequestInFlight)

	close(fb.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, fb.calls)
}
