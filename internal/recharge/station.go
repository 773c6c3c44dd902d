package recharge

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/eventcard/terminal/internal/domain"
	"github.com/eventcard/terminal/internal/events"
	"github.com/eventcard/terminal/internal/logging"
)

const amountField = "monto"

type Backend interface {
	CardBalance(ctx context.Context, number string) (domain.Card, error)
	CardHistory(ctx context.Context, number string) (domain.CardHistory, error)
	Recharge(ctx context.Context, number string, amount decimal.Decimal, idempotencyKey string) (domain.RechargeResult, error)
}

// Station is the till: it credits cards and answers balance questions.
type Station struct {
	terminalID string
	backend    Backend
	publisher  events.Publisher

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewStation(terminalID string, b Backend, p events.Publisher) *Station {
	if p == nil {
		p = events.Nop{}
	}
	return &Station{terminalID: terminalID, backend: b, publisher: p, inFlight: map[string]bool{}}
}

// Recharge validates both inputs locally before crediting the card. Only one
// credit per card may be pending at a time.
func (s *Station) Recharge(ctx context.Context, number, amountText string) (domain.RechargeResult, error) {
	l := logging.FromContext(ctx).With(zap.String("terminal", s.terminalID))

	n, err := domain.ValidateCardNumber(number)
	if err != nil {
		return domain.RechargeResult{}, err
	}
	amount, err := domain.ParseAmount(amountField, amountText)
	if err != nil {
		return domain.RechargeResult{}, err
	}

	s.mu.Lock()
	if s.inFlight[n] {
		s.mu.Unlock()
		return domain.RechargeResult{}, domain.ErrRequestInFlight
	}
	s.inFlight[n] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inFlight, n)
		s.mu.Unlock()
	}()

	res, err := s.backend.Recharge(ctx, n, amount, uuid.NewString())
	if err != nil {
		l.Info("recharge rejected", zap.String("card", n), zap.Error(err))
		return domain.RechargeResult{}, err
	}
	l.Info("recharge completed",
		zap.String("card", n),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("new_balance", res.NewBalance.StringFixed(2)),
	)

	e := events.New(events.RechargeCompleted, s.terminalID, n)
	e.Amount, e.Balance = amount, res.NewBalance
	events.Emit(ctx, s.publisher, e)
	if res.CardUnblocked {
		u := events.New(events.CardUnblocked, s.terminalID, n)
		u.Balance = res.NewBalance
		events.Emit(ctx, s.publisher, u)
	}
	return res, nil
}

func (s *Station) Balance(ctx context.Context, number string) (domain.Card, error) {
	return s.backend.CardBalance(ctx, number)
}

func (s *Station) History(ctx context.Context, number string) (domain.CardHistory, error) {
	return s.backend.CardHistory(ctx, number)
}
