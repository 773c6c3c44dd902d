package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/eventcard/terminal/internal/domain"
)

type productWire struct {
	ID           int64           `json:"id"`
	Nombre       string          `json:"nombre"`
	Precio       decimal.Decimal `json:"precio"`
	Tipo         string          `json:"tipo"`
	Descripcion  string          `json:"descripcion"`
	PuntoVentaID *int64          `json:"punto_venta_id"`
	Activo       *Flag           `json:"activo"`
}

func (w productWire) item() domain.CatalogItem {
	return domain.CatalogItem{
		ID:            w.ID,
		Name:          w.Nombre,
		UnitPrice:     w.Precio,
		Category:      w.Tipo,
		Description:   w.Descripcion,
		PointOfSaleID: w.PuntoVentaID,
		Active:        flagOr(w.Activo, true),
	}
}

// ProductFilter narrows a product listing. Zero values mean no filter.
type ProductFilter struct {
	PointOfSaleID *int64
	Type          string
}

func (f ProductFilter) query() url.Values {
	q := url.Values{}
	if f.PointOfSaleID != nil {
		q.Set("punto_venta_id", strconv.FormatInt(*f.PointOfSaleID, 10))
	}
	if f.Type != "" {
		q.Set("tipo", f.Type)
	}
	return q
}

func (c *Client) Products(ctx context.Context, f ProductFilter) ([]domain.CatalogItem, error) {
	var ws []productWire
	if _, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/productos", Query: f.query()}, &ws); err != nil {
		return nil, err
	}
	items := make([]domain.CatalogItem, 0, len(ws))
	for _, w := range ws {
		items = append(items, w.item())
	}
	return items, nil
}

func (c *Client) ProductTypes(ctx context.Context) ([]string, error) {
	var types []string
	if _, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/productos/tipos"}, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (c *Client) Product(ctx context.Context, id int64) (domain.CatalogItem, error) {
	var w productWire
	if _, err := c.Do(ctx, Request{Method: http.MethodGet, Path: productPath(id)}, &w); err != nil {
		return domain.CatalogItem{}, err
	}
	return w.item(), nil
}

// ProductInput is the writable part of a product.
type ProductInput struct {
	Name          string
	Price         decimal.Decimal
	Type          string
	Description   string
	ImageURL      string
	PointOfSaleID *int64
	Active        bool
}

func (p ProductInput) body() map[string]any {
	return map[string]any{
		"nombre":         p.Name,
		"precio":         amount(p.Price),
		"tipo":           p.Type,
		"descripcion":    p.Description,
		"imagen_url":     p.ImageURL,
		"punto_venta_id": p.PointOfSaleID,
		"activo":         p.Active,
	}
}

// item is used when the backend acknowledges a write without echoing the row.
func (p ProductInput) item(id int64) domain.CatalogItem {
	return domain.CatalogItem{
		ID:            id,
		Name:          p.Name,
		UnitPrice:     p.Price,
		Category:      p.Type,
		Description:   p.Description,
		PointOfSaleID: p.PointOfSaleID,
		Active:        p.Active,
	}
}

func (c *Client) CreateProduct(ctx context.Context, p ProductInput) (domain.CatalogItem, error) {
	var w productWire
	if _, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/productos", Body: p.body()}, &w); err != nil {
		return domain.CatalogItem{}, err
	}
	return w.item(), nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, p ProductInput) (domain.CatalogItem, error) {
	var w productWire
	if _, err := c.Do(ctx, Request{Method: http.MethodPut, Path: productPath(id), Body: p.body()}, &w); err != nil {
		return domain.CatalogItem{}, err
	}
	if w.ID == 0 {
		return p.item(id), nil
	}
	return w.item(), nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	_, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: productPath(id)}, nil)
	return err
}

func productPath(id int64) string {
	return "/api/productos/" + strconv.FormatInt(id, 10)
}

type pointOfSaleWire struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
	Tipo   string `json:"tipo"`
	Activo *Flag  `json:"activo"`
}

func (w pointOfSaleWire) pointOfSale() domain.PointOfSale {
	return domain.PointOfSale{ID: w.ID, Name: w.Nombre, Type: w.Tipo, Active: flagOr(w.Activo, true)}
}

func (c *Client) PointsOfSale(ctx context.Context) ([]domain.PointOfSale, error) {
	var ws []pointOfSaleWire
	if _, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/puntos-venta"}, &ws); err != nil {
		return nil, err
	}
	out := make([]domain.PointOfSale, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.pointOfSale())
	}
	return out, nil
}

type PointOfSaleInput struct {
	Name   string
	Type   string
	Active bool
}

func (p PointOfSaleInput) body() map[string]any {
	return map[string]any{"nombre": p.Name, "tipo": p.Type, "activo": p.Active}
}

func (c *Client) CreatePointOfSale(ctx context.Context, p PointOfSaleInput) (domain.PointOfSale, error) {
	var w pointOfSaleWire
	if _, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/puntos-venta", Body: p.body()}, &w); err != nil {
		return domain.PointOfSale{}, err
	}
	return w.pointOfSale(), nil
}

func (c *Client) UpdatePointOfSale(ctx context.Context, id int64, p PointOfSaleInput) (domain.PointOfSale, error) {
	var w pointOfSaleWire
	if _, err := c.Do(ctx, Request{Method: http.MethodPut, Path: pointOfSalePath(id), Body: p.body()}, &w); err != nil {
		return domain.PointOfSale{}, err
	}
	if w.ID == 0 {
		return domain.PointOfSale{ID: id, Name: p.Name, Type: p.Type, Active: p.Active}, nil
	}
	return w.pointOfSale(), nil
}

func (c *Client) DeletePointOfSale(ctx context.Context, id int64) error {
	_, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: pointOfSalePath(id)}, nil)
	return err
}

func pointOfSalePath(id int64) string {
	return "/api/puntos-venta/" + strconv.FormatInt(id, 10)
}
