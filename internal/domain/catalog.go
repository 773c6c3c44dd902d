package domain

import "github.com/shopspring/decimal"

// CatalogItem is a product sellable at a point of sale.
type CatalogItem struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Category      string          `json:"category"`
	Description   string          `json:"description,omitempty"`
	PointOfSaleID *int64          `json:"point_of_sale_id,omitempty"`
	Active        bool            `json:"active"`
}

type PointOfSale struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type,omitempty"`
	Active bool   `json:"active"`
}

// CartLine is one item in a cart. Quantity is always >= 1.
type CartLine struct {
	ItemID    int64           `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
