package features

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/eventcard/terminal/internal/backend"
	"github.com/eventcard/terminal/internal/domain"
	"github.com/eventcard/terminal/internal/pos"
)

type memoryBackend struct {
	mu        sync.Mutex
	cards     map[string]domain.Card
	points    []domain.PointOfSale
	products  []domain.CatalogItem
	payResult domain.CheckoutResult
	payErr    error
	pays      []backend.PayRequest
	lookups   int
}

func (m *memoryBackend) CardBalance(_ context.Context, number string) (domain.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	c, ok := m.cards[number]
	if !ok {
		return domain.Card{}, domain.BusinessError(404, "Tarjeta no encontrada o inactiva")
	}
	return c, nil
}

func (m *memoryBackend) PointsOfSale(context.Context) ([]domain.PointOfSale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PointOfSale(nil), m.points...), nil
}

func (m *memoryBackend) Products(context.Context, backend.ProductFilter) ([]domain.CatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CatalogItem(nil), m.products...), nil
}

func (m *memoryBackend) Pay(_ context.Context, p backend.PayRequest) (domain.CheckoutResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pays = append(m.pays, p)
	return m.payResult, m.payErr
}

type checkoutTestContext struct {
	backend *memoryBackend
	session *pos.Session
	err     error
}

func (c *checkoutTestContext) reset() {
	c.backend = &memoryBackend{cards: map[string]domain.Card{}}
	c.session = pos.NewSession("feature-terminal", c.backend)
	c.err = nil
}

func (c *checkoutTestContext) thePointOfSaleSells(name string, table *godog.Table) error {
	id := int64(len(c.backend.points) + 1)
	c.backend.points = append(c.backend.points, domain.PointOfSale{ID: id, Name: name, Active: true})
	for i, row := range table.Rows {
		if i == 0 {
			continue // header
		}
		itemID, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return err
		}
		price, err := decimal.NewFromString(row.Cells[2].Value)
		if err != nil {
			return err
		}
		posID := id
		c.backend.products = append(c.backend.products, domain.CatalogItem{
			ID:            itemID,
			Name:          row.Cells[1].Value,
			UnitPrice:     price,
			PointOfSaleID: &posID,
			Active:        true,
		})
	}
	return nil
}

func (c *checkoutTestContext) theOperatorWorksAt(name string) error {
	for _, p := range c.backend.points {
		if p.Name == name {
			_, err := c.session.SelectPointOfSale(context.Background(), p.ID)
			return err
		}
	}
	return fmt.Errorf("unknown point of sale %q", name)
}

func (c *checkoutTestContext) cardHasBalance(number, balance, state string) error {
	b, err := decimal.NewFromString(balance)
	if err != nil {
		return err
	}
	c.backend.cards[number] = domain.Card{Number: number, HolderName: "Asistente", Balance: b, Active: state == "active"}
	return nil
}

func (c *checkoutTestContext) theOperatorLooksUpCard(number string) error {
	_, c.err = c.session.LookupCard(context.Background(), number)
	return nil
}

func (c *checkoutTestContext) theOperatorAdds(name string, times int) error {
	for _, it := range c.backend.products {
		if it.Name != name {
			continue
		}
		for i := 0; i < times; i++ {
			if c.err = c.session.AddLine(it.ID); c.err != nil {
				return nil
			}
		}
		return nil
	}
	return fmt.Errorf("unknown item %q", name)
}

func (c *checkoutTestContext) theOperatorDecreasesLine(line, by int) error {
	c.err = c.session.ChangeQuantity(line-1, -by)
	return nil
}

func (c *checkoutTestContext) theBackendAnswersWithNewBalance(balance string) error {
	b, err := decimal.NewFromString(balance)
	if err != nil {
		return err
	}
	c.backend.payResult = domain.CheckoutResult{NewBalance: b}
	return nil
}

func (c *checkoutTestContext) theBackendRejectsTheDebit(msg string) error {
	c.backend.payErr = domain.BusinessError(400, msg)
	return nil
}

func (c *checkoutTestContext) theOperatorConfirmsAndSubmits() error {
	conf, err := c.session.Confirm()
	if err != nil {
		c.err = err
		return nil
	}
	_, c.err = c.session.Checkout(context.Background(), conf.ID)
	return nil
}

func (c *checkoutTestContext) theCartTotalIs(total string) error {
	want, err := decimal.NewFromString(total)
	if err != nil {
		return err
	}
	if got := c.session.View().Total; !got.Equal(want) {
		return fmt.Errorf("cart total %s, want %s", got, want)
	}
	return nil
}

func (c *checkoutTestContext) checkoutIsEnabled() error {
	v := c.session.View()
	if !v.CanCheckout {
		return fmt.Errorf("checkout disabled: %v", v.Eligibility.Reasons)
	}
	return nil
}

func (c *checkoutTestContext) checkoutIsDisabledBecauseOf(reason string) error {
	v := c.session.View()
	if v.CanCheckout {
		return fmt.Errorf("checkout is enabled")
	}
	for _, r := range v.Eligibility.Reasons {
		if string(r) == reason {
			return nil
		}
	}
	return fmt.Errorf("reasons %v do not include %s", v.Eligibility.Reasons, reason)
}

func (c *checkoutTestContext) theCheckoutSucceeds() error {
	return c.err
}

func (c *checkoutTestContext) theDisplayedBalanceIs(balance string) error {
	want, err := decimal.NewFromString(balance)
	if err != nil {
		return err
	}
	v := c.session.View()
	if v.Card == nil {
		return fmt.Errorf("no card loaded")
	}
	if !v.Card.Balance.Equal(want) {
		return fmt.Errorf("balance %s, want %s", v.Card.Balance, want)
	}
	return nil
}

func (c *checkoutTestContext) theCartIsEmpty() error {
	if n := len(c.session.View().Lines); n != 0 {
		return fmt.Errorf("cart has %d lines", n)
	}
	return nil
}

func (c *checkoutTestContext) theBackendReceivedDebitFor(n int, amount, description string) error {
	if len(c.backend.pays) != n {
		return fmt.Errorf("backend received %d debits, want %d", len(c.backend.pays), n)
	}
	want, err := decimal.NewFromString(amount)
	if err != nil {
		return err
	}
	got := c.backend.pays[n-1]
	if !got.Amount.Equal(want) {
		return fmt.Errorf("debit amount %s, want %s", got.Amount, want)
	}
	if got.Description != description {
		return fmt.Errorf("description %q, want %q", got.Description, description)
	}
	return nil
}

func (c *checkoutTestContext) theBackendReceivedDebits(n int) error {
	if len(c.backend.pays) != n {
		return fmt.Errorf("backend received %d debits, want %d", len(c.backend.pays), n)
	}
	return nil
}

func (c *checkoutTestContext) theBackendReceivedLookups(n int) error {
	if c.backend.lookups != n {
		return fmt.Errorf("backend received %d lookups, want %d", c.backend.lookups, n)
	}
	return nil
}

func (c *checkoutTestContext) theActionIsRejectedWith(kind string) error {
	if c.err == nil {
		return fmt.Errorf("expected a %s error", kind)
	}
	if got := domain.KindOf(c.err); string(got) != kind {
		return fmt.Errorf("error kind %q, want %q (%v)", got, kind, c.err)
	}
	return nil
}

func (c *checkoutTestContext) theErrorMessageIs(msg string) error {
	if got := domain.MessageOf(c.err, ""); got != msg {
		return fmt.Errorf("message %q, want %q", got, msg)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the point of sale "([^"]*)" sells:$`, tc.thePointOfSaleSells)
	ctx.Step(`^the operator works at "([^"]*)"$`, tc.theOperatorWorksAt)
	ctx.Step(`^card "([^"]*)" has balance (\d+\.\d+) and is (active|inactive)$`, tc.cardHasBalance)
	ctx.Step(`^the backend answers the debit with new balance (\d+\.\d+)$`, tc.theBackendAnswersWithNewBalance)
	ctx.Step(`^the backend rejects the debit with "([^"]*)"$`, tc.theBackendRejectsTheDebit)

	// When steps
	ctx.Step(`^the operator looks up card "([^"]*)"$`, tc.theOperatorLooksUpCard)
	ctx.Step(`^the operator adds "([^"]*)" (\d+) times$`, tc.theOperatorAdds)
	ctx.Step(`^the operator decreases line (\d+) by (\d+)$`, tc.theOperatorDecreasesLine)
	ctx.Step(`^the operator confirms and submits the checkout$`, tc.theOperatorConfirmsAndSubmits)

	// Then steps
	ctx.Step(`^the cart total is (\d+\.\d+)$`, tc.theCartTotalIs)
	ctx.Step(`^checkout is enabled$`, tc.checkoutIsEnabled)
	ctx.Step(`^checkout is disabled because of "([^"]*)"$`, tc.checkoutIsDisabledBecauseOf)
	ctx.Step(`^the checkout succeeds$`, tc.theCheckoutSucceeds)
	ctx.Step(`^the displayed balance is (\d+\.\d+)$`, tc.theDisplayedBalanceIs)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the backend received (\d+) debit for (\d+\.\d+) described as "([^"]*)"$`, tc.theBackendReceivedDebitFor)
	ctx.Step(`^the backend received (\d+) debits$`, tc.theBackendReceivedDebits)
	ctx.Step(`^the backend received (\d+) balance lookups$`, tc.theBackendReceivedLookups)
	ctx.Step(`^the action is rejected with a "([^"]*)" error$`, tc.theActionIsRejectedWith)
	ctx.Step(`^the error message is "([^"]*)"$`, tc.theErrorMessageIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
