package pos

import (
	"context"
	"sync"

	"github.com/eventcard/terminal/internal/backend"
	"github.com/eventcard/terminal/internal/domain"
)

// fakeBackend answers from memory. A gate holds a call open and reports on
// started once the call is waiting.
type fakeBackend struct {
	mu sync.Mutex

	cards    map[string]domain.Card
	points   []domain.PointOfSale
	products []domain.CatalogItem

	payResult domain.CheckoutResult
	payErr    error
	pays      []backend.PayRequest

	balanceCalls int
	balanceGate  map[string]chan struct{}
	payGate      chan struct{}
	started      chan string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		cards:       map[string]domain.Card{},
		balanceGate: map[string]chan struct{}{},
		started:     make(chan string, 16),
	}
}

func (f *fakeBackend) CardBalance(ctx context.Context, number string) (domain.Card, error) {
	f.mu.Lock()
	f.balanceCalls++
	gate := f.balanceGate[number]
	f.mu.Unlock()

	if gate != nil {
		f.signal(number)
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cards[number]
	if !ok {
		return domain.Card{}, domain.BusinessError(404, "Tarjeta no encontrada o inactiva")
	}
	return c, nil
}

func (f *fakeBackend) PointsOfSale(context.Context) ([]domain.PointOfSale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.PointOfSale(nil), f.points...), nil
}

func (f *fakeBackend) Products(_ context.Context, filter backend.ProductFilter) ([]domain.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.CatalogItem, 0, len(f.products))
	for _, p := range f.products {
		if filter.Type != "" && p.Category != filter.Type {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeBackend) Pay(_ context.Context, p backend.PayRequest) (domain.CheckoutResult, error) {
	f.mu.Lock()
	f.pays = append(f.pays, p)
	gate := f.payGate
	f.mu.Unlock()

	if gate != nil {
		f.signal("pay")
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payResult, f.payErr
}

func (f *fakeBackend) payCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pays)
}

func (f *fakeBackend) signal(what string) {
	select {
	case f.started <- what:
	default:
	}
}
