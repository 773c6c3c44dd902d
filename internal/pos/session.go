package pos

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/eventcard/terminal/internal/backend"
	"github.com/eventcard/terminal/internal/domain"
	"github.com/eventcard/terminal/internal/events"
	"github.com/eventcard/terminal/internal/logging"
)

const checkoutFailedMessage = "Error al procesar el pago"

var errPointOfSaleUnknown = domain.PreconditionError("Punto de venta no encontrado o inactivo")

// Backend is the part of the card backend a point of sale needs.
type Backend interface {
	CardBalance(ctx context.Context, number string) (domain.Card, error)
	PointsOfSale(ctx context.Context) ([]domain.PointOfSale, error)
	Products(ctx context.Context, f backend.ProductFilter) ([]domain.CatalogItem, error)
	Pay(ctx context.Context, p backend.PayRequest) (domain.CheckoutResult, error)
}

// Confirmation is the summary an operator accepts before a debit is sent. It
// is only valid for the session state it was built from.
type Confirmation struct {
	ID               string             `json:"id"`
	CardNumber       string             `json:"card_number"`
	HolderName       string             `json:"holder_name"`
	Balance          decimal.Decimal    `json:"balance"`
	PointOfSale      domain.PointOfSale `json:"point_of_sale"`
	Lines            []domain.CartLine  `json:"lines"`
	Total            decimal.Decimal    `json:"total"`
	ProjectedBalance decimal.Decimal    `json:"projected_balance"`
	Description      string             `json:"description"`

	version uint64
}

type Option func(*Session)

func WithPublisher(p events.Publisher) Option {
	return func(s *Session) { s.publisher = p }
}

func WithFormatter(f *domain.Formatter) Option {
	return func(s *Session) { s.formatter = f }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session is the state of one operator terminal. Network calls run without
// the lock held; results are applied only if still current.
type Session struct {
	terminalID string
	backend    Backend
	publisher  events.Publisher
	formatter  *domain.Formatter
	now        func() time.Time

	mu        sync.Mutex
	card      *domain.Card
	cardError string
	lookupSeq uint64

	pointsOfSale []domain.PointOfSale
	pointOfSale  *domain.PointOfSale
	category     string
	catalog      []domain.CatalogItem

	cart     Cart
	version  uint64
	pending  *Confirmation
	inFlight bool
	last     *domain.CheckoutResult
	recent   *RecentList

	changes      uint64
	nextObserver int
	observers    map[int]func(View)
}

func NewSession(terminalID string, b Backend, opts ...Option) *Session {
	s := &Session{
		terminalID: terminalID,
		backend:    b,
		publisher:  events.Nop{},
		formatter:  domain.NewFormatter(domain.DefaultLocale, domain.DefaultSymbol),
		now:        time.Now,
		recent:     NewRecentList(RecentLimit),
		observers:  make(map[int]func(View)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to receive a snapshot after every state change and
// returns a function that removes it.
func (s *Session) Subscribe(fn func(View)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// LookupCard validates input and replaces the current card with a fresh
// snapshot. Only the newest lookup may change state; older answers return
// ErrStaleLookup.
func (s *Session) LookupCard(ctx context.Context, input string) (domain.Card, error) {
	l := logging.FromContext(ctx).With(zap.String("terminal", s.terminalID))

	number, err := domain.ValidateCardNumber(input)

	s.mu.Lock()
	s.lookupSeq++
	seq := s.lookupSeq
	if err != nil {
		s.setCardLocked(nil, domain.MessageOf(err, ""))
		s.unlockAndNotify()
		return domain.Card{}, err
	}
	s.mu.Unlock()

	card, err := s.backend.CardBalance(ctx, number)

	s.mu.Lock()
	if seq != s.lookupSeq {
		s.mu.Unlock()
		l.Debug("discarding stale card lookup", zap.String("card", number), zap.Uint64("seq", seq))
		return domain.Card{}, domain.ErrStaleLookup
	}
	if err != nil {
		s.setCardLocked(nil, domain.MessageOf(err, "Tarjeta no encontrada"))
		s.unlockAndNotify()
		l.Info("card lookup failed", zap.String("card", number), zap.Error(err))
		return domain.Card{}, err
	}
	s.setCardLocked(&card, "")
	s.unlockAndNotify()
	return card, nil
}

// PointsOfSale refreshes the list of active selling locations.
func (s *Session) PointsOfSale(ctx context.Context) ([]domain.PointOfSale, error) {
	all, err := s.backend.PointsOfSale(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]domain.PointOfSale, 0, len(all))
	for _, p := range all {
		if p.Active {
			active = append(active, p)
		}
	}

	s.mu.Lock()
	s.pointsOfSale = active
	s.mu.Unlock()

	out := make([]domain.PointOfSale, len(active))
	copy(out, active)
	return out, nil
}

// SelectPointOfSale scopes the catalog to id. Cart lines not sold there are
// dropped.
func (s *Session) SelectPointOfSale(ctx context.Context, id int64) (domain.PointOfSale, error) {
	list, err := s.PointsOfSale(ctx)
	if err != nil {
		return domain.PointOfSale{}, err
	}
	var selected *domain.PointOfSale
	for i := range list {
		if list[i].ID == id {
			selected = &list[i]
			break
		}
	}
	if selected == nil {
		return domain.PointOfSale{}, errPointOfSaleUnknown
	}

	items, err := s.backend.Products(ctx, backend.ProductFilter{PointOfSaleID: &id})
	if err != nil {
		return domain.PointOfSale{}, err
	}

	s.mu.Lock()
	s.pointOfSale = selected
	s.category = ""
	s.catalog = visible(items, id)
	s.cart.Keep(func(itemID int64) bool { return s.findLocked(itemID) != nil })
	s.touchLocked()
	s.unlockAndNotify()
	return *selected, nil
}

// FilterCatalog reloads the selected point of sale's catalog restricted to a
// product type. An empty category lists everything.
func (s *Session) FilterCatalog(ctx context.Context, category string) ([]domain.CatalogItem, error) {
	s.mu.Lock()
	if s.pointOfSale == nil {
		s.mu.Unlock()
		return nil, domain.ErrPointOfSaleMissing
	}
	id := s.pointOfSale.ID
	s.mu.Unlock()

	items, err := s.backend.Products(ctx, backend.ProductFilter{PointOfSaleID: &id, Type: category})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.pointOfSale == nil || s.pointOfSale.ID != id {
		s.mu.Unlock()
		return nil, domain.ErrPointOfSaleMissing
	}
	s.category = category
	s.catalog = visible(items, id)
	out := make([]domain.CatalogItem, len(s.catalog))
	copy(out, s.catalog)
	s.unlockAndNotify()
	return out, nil
}

func (s *Session) ClearPointOfSale() {
	s.mu.Lock()
	s.pointOfSale = nil
	s.category = ""
	s.catalog = nil
	s.touchLocked()
	s.unlockAndNotify()
}

// AddLine adds one unit of a catalog item of the selected point of sale.
func (s *Session) AddLine(itemID int64) error {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	item := s.findLocked(itemID)
	if item == nil {
		s.mu.Unlock()
		return domain.ErrItemNotInCatalog
	}
	s.cart.Add(*item)
	s.touchLocked()
	s.unlockAndNotify()
	return nil
}

func (s *Session) ChangeQuantity(index, delta int) error {
	return s.mutateCart(func(c *Cart) error { return c.Change(index, delta) })
}

func (s *Session) RemoveLine(index int) error {
	return s.mutateCart(func(c *Cart) error { return c.Remove(index) })
}

func (s *Session) ClearCart() error {
	return s.mutateCart(func(c *Cart) error {
		c.Clear()
		return nil
	})
}

func (s *Session) mutateCart(fn func(*Cart) error) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return domain.ErrCheckoutInFlight
	}
	if err := fn(&s.cart); err != nil {
		s.mu.Unlock()
		return err
	}
	s.touchLocked()
	s.unlockAndNotify()
	return nil
}

func (s *Session) Eligibility() Eligibility {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Evaluate(s.card, s.pointOfSale, s.cart.Total())
}

// Confirm builds the summary shown before a debit. It replaces any earlier
// confirmation.
func (s *Session) Confirm() (Confirmation, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return Confirmation{}, domain.ErrCheckoutInFlight
	}
	if err := Evaluate(s.card, s.pointOfSale, s.cart.Total()).Err(); err != nil {
		s.mu.Unlock()
		return Confirmation{}, err
	}
	total := s.cart.Total()
	c := Confirmation{
		ID:               uuid.NewString(),
		CardNumber:       s.card.Number,
		HolderName:       s.card.HolderName,
		Balance:          s.card.Balance,
		PointOfSale:      *s.pointOfSale,
		Lines:            s.cart.Lines(),
		Total:            total,
		ProjectedBalance: s.card.Balance.Sub(total),
		Description:      s.cart.Description(),
		version:          s.version,
	}
	s.pending = &c
	s.unlockAndNotify()
	return c, nil
}

// Checkout sends the debit for a confirmation returned by Confirm. The
// confirmation id doubles as the idempotency key, so retrying the same
// confirmation after a lost answer cannot debit twice at a deduplicating
// backend.
func (s *Session) Checkout(ctx context.Context, confirmationID string) (domain.CheckoutResult, error) {
	l := logging.FromContext(ctx).With(zap.String("terminal", s.terminalID))

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return domain.CheckoutResult{}, domain.ErrCheckoutInFlight
	}
	if s.pending == nil || s.pending.ID != confirmationID || s.pending.version != s.version {
		s.mu.Unlock()
		return domain.CheckoutResult{}, domain.ErrConfirmation
	}
	if err := Evaluate(s.card, s.pointOfSale, s.cart.Total()).Err(); err != nil {
		s.mu.Unlock()
		return domain.CheckoutResult{}, err
	}
	conf := *s.pending
	req := backend.PayRequest{
		CardNumber:     conf.CardNumber,
		PointOfSaleID:  conf.PointOfSale.ID,
		Amount:         conf.Total,
		Description:    conf.Description,
		IdempotencyKey: conf.ID,
	}
	s.inFlight = true
	s.unlockAndNotify()

	res, err := s.backend.Pay(ctx, req)

	s.mu.Lock()
	s.inFlight = false
	if err != nil {
		s.unlockAndNotify()
		l.Info("checkout rejected", zap.String("card", conf.CardNumber), zap.Error(err))
		return domain.CheckoutResult{}, checkoutError(err)
	}

	if s.card != nil && s.card.Number == conf.CardNumber {
		s.card.Balance = res.NewBalance
		if res.CardBlocked {
			s.card.Active = false
		}
	}
	s.recent.Push(RecentEntry{
		ID:          conf.ID,
		At:          s.now(),
		CardNumber:  conf.CardNumber,
		HolderName:  conf.HolderName,
		PointOfSale: conf.PointOfSale.Name,
		Description: conf.Description,
		Amount:      conf.Total,
		NewBalance:  res.NewBalance,
		CardBlocked: res.CardBlocked,
	})
	s.cart.Clear()
	s.last = &res
	s.touchLocked()
	s.unlockAndNotify()

	l.Info("checkout completed",
		zap.String("card", conf.CardNumber),
		zap.String("amount", conf.Total.StringFixed(2)),
		zap.String("new_balance", res.NewBalance.StringFixed(2)),
		zap.Bool("card_blocked", res.CardBlocked),
	)

	e := events.New(events.CheckoutCompleted, s.terminalID, conf.CardNumber)
	e.Amount, e.Balance = conf.Total, res.NewBalance
	e.PointOfSale, e.Detail = conf.PointOfSale.Name, conf.Description
	events.Emit(ctx, s.publisher, e)
	if res.CardBlocked {
		b := events.New(events.CardBlocked, s.terminalID, conf.CardNumber)
		b.Balance = res.NewBalance
		events.Emit(ctx, s.publisher, b)
	}
	return res, nil
}

// checkoutError keeps the backend message when there is one.
func checkoutError(err error) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		return domain.TransportError(checkoutFailedMessage, fmt.Errorf("pay: %w", err))
	}
	if de.Kind == domain.KindBusiness && de.Message == "" {
		return domain.BusinessError(de.Status, checkoutFailedMessage)
	}
	return err
}

// Reset starts a new sale on the same point of sale.
func (s *Session) Reset() {
	s.mu.Lock()
	s.lookupSeq++
	s.setCardLocked(nil, "")
	s.cart.Clear()
	s.last = nil
	s.touchLocked()
	s.unlockAndNotify()
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// editableLocked reports whether items may be added right now.
func (s *Session) editableLocked() error {
	switch {
	case s.inFlight:
		return domain.ErrCheckoutInFlight
	case s.card == nil:
		return domain.ErrCardRequired
	case !s.card.Active:
		return domain.ErrCardInactive
	}
	return nil
}

func (s *Session) findLocked(itemID int64) *domain.CatalogItem {
	for i := range s.catalog {
		if s.catalog[i].ID == itemID {
			return &s.catalog[i]
		}
	}
	return nil
}

func (s *Session) setCardLocked(card *domain.Card, errMsg string) {
	s.card = card
	s.cardError = errMsg
	s.touchLocked()
}

// touchLocked invalidates any pending confirmation.
func (s *Session) touchLocked() {
	s.version++
	s.pending = nil
}

// unlockAndNotify publishes the state to observers. Observers may run
// concurrently and out of order; View.Seq orders their snapshots.
func (s *Session) unlockAndNotify() {
	s.changes++
	if len(s.observers) == 0 {
		s.mu.Unlock()
		return
	}
	v := s.viewLocked()
	fns := make([]func(View), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

// visible keeps active items sold at pointOfSaleID or everywhere.
func visible(items []domain.CatalogItem, pointOfSaleID int64) []domain.CatalogItem {
	out := make([]domain.CatalogItem, 0, len(items))
	for _, it := range items {
		if !it.Active {
			continue
		}
		if it.PointOfSaleID != nil && *it.PointOfSaleID != pointOfSaleID {
			continue
		}
		out = append(out, it)
	}
	return out
}
