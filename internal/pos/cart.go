package pos

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eventcard/terminal/internal/domain"
)

// Cart is an ordered list of lines keyed by item id. The zero value is an
// empty cart.
type Cart struct {
	lines []domain.CartLine
	total decimal.Decimal
}

// Add increments the line for item, or appends a new line with quantity 1.
func (c *Cart) Add(item domain.CatalogItem) {
	defer c.recompute()
	for i := range c.lines {
		if c.lines[i].ItemID == item.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, domain.CartLine{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  1,
	})
}

// Change moves the quantity at index one unit up or down and drops the line
// once it reaches zero.
func (c *Cart) Change(index, delta int) error {
	if delta != 1 && delta != -1 {
		return domain.ErrQuantityStep
	}
	if err := c.check(index); err != nil {
		return err
	}
	defer c.recompute()
	c.lines[index].Quantity += delta
	if c.lines[index].Quantity <= 0 {
		c.lines = append(c.lines[:index], c.lines[index+1:]...)
	}
	return nil
}

func (c *Cart) Remove(index int) error {
	if err := c.check(index); err != nil {
		return err
	}
	defer c.recompute()
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return nil
}

func (c *Cart) Clear() {
	c.lines = nil
	c.recompute()
}

// Keep drops every line whose item id is rejected by keep.
func (c *Cart) Keep(keep func(itemID int64) bool) {
	defer c.recompute()
	kept := c.lines[:0]
	for _, l := range c.lines {
		if keep(l.ItemID) {
			kept = append(kept, l)
		}
	}
	c.lines = kept
}

func (c *Cart) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) Total() decimal.Decimal { return c.total }

// Description renders "{name} x{qty}" per line, comma separated.
func (c *Cart) Description() string {
	parts := make([]string, 0, len(c.lines))
	for _, l := range c.lines {
		parts = append(parts, fmt.Sprintf("%s x%d", l.Name, l.Quantity))
	}
	return strings.Join(parts, ", ")
}

func (c *Cart) check(index int) error {
	if index < 0 || index >= len(c.lines) {
		return domain.ErrLineNotFound
	}
	return nil
}

// recompute sums the subtotals from scratch after every mutation.
func (c *Cart) recompute() {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	c.total = total
}
