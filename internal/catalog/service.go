package catalog

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/eventcard/terminal/internal/backend"
	"github.com/eventcard/terminal/internal/domain"
)

type Backend interface {
	Products(ctx context.Context, f backend.ProductFilter) ([]domain.CatalogItem, error)
	ProductTypes(ctx context.Context) ([]string, error)
	Product(ctx context.Context, id int64) (domain.CatalogItem, error)
	CreateProduct(ctx context.Context, p backend.ProductInput) (domain.CatalogItem, error)
	UpdateProduct(ctx context.Context, id int64, p backend.ProductInput) (domain.CatalogItem, error)
	DeleteProduct(ctx context.Context, id int64) error
	PointsOfSale(ctx context.Context) ([]domain.PointOfSale, error)
	CreatePointOfSale(ctx context.Context, p backend.PointOfSaleInput) (domain.PointOfSale, error)
	UpdatePointOfSale(ctx context.Context, id int64, p backend.PointOfSaleInput) (domain.PointOfSale, error)
	DeletePointOfSale(ctx context.Context, id int64) error
}

type Service struct {
	Backend Backend
}

// ProductRequest is an admin form. Price may arrive as a JSON number or
// string.
type ProductRequest struct {
	Name          string `json:"name"`
	Price         any    `json:"price"`
	Type          string `json:"type"`
	Description   string `json:"description"`
	ImageURL      string `json:"image_url"`
	PointOfSaleID *int64 `json:"point_of_sale_id"`
	Active        *bool  `json:"active"`
}

func (r ProductRequest) validate() (backend.ProductInput, error) {
	in := backend.ProductInput{
		Name:          strings.TrimSpace(r.Name),
		Type:          strings.ToLower(strings.TrimSpace(r.Type)),
		Description:   strings.TrimSpace(r.Description),
		ImageURL:      strings.TrimSpace(r.ImageURL),
		PointOfSaleID: r.PointOfSaleID,
		Active:        r.Active == nil || *r.Active,
	}
	if in.Name == "" {
		return in, domain.FormatError("nombre", "El nombre es obligatorio")
	}
	price, err := parsePrice(r.Price)
	if err != nil {
		return in, err
	}
	in.Price = price
	if in.Type == "" {
		return in, domain.FormatError("tipo", "El tipo es obligatorio")
	}
	if in.PointOfSaleID != nil && *in.PointOfSaleID <= 0 {
		return in, domain.FormatError("punto_venta_id", "Punto de venta inválido")
	}
	return in, nil
}

func parsePrice(v any) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, domain.FormatError("precio", "El precio es obligatorio")
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return decimal.Zero, domain.FormatError("precio", "El precio debe ser un número válido")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, domain.FormatError("precio", "El precio es obligatorio")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.FormatError("precio", "El precio debe ser un número válido")
	}
	if !d.IsPositive() {
		return decimal.Zero, domain.FormatError("precio", "El precio debe ser mayor a cero")
	}
	return d.Round(2), nil
}

func (s *Service) Products(ctx context.Context, f backend.ProductFilter) ([]domain.CatalogItem, error) {
	return s.Backend.Products(ctx, f)
}

func (s *Service) ProductTypes(ctx context.Context) ([]string, error) {
	return s.Backend.ProductTypes(ctx)
}

func (s *Service) Product(ctx context.Context, id int64) (domain.CatalogItem, error) {
	if err := checkID(id); err != nil {
		return domain.CatalogItem{}, err
	}
	return s.Backend.Product(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, req ProductRequest) (domain.CatalogItem, error) {
	in, err := req.validate()
	if err != nil {
		return domain.CatalogItem{}, err
	}
	return s.Backend.CreateProduct(ctx, in)
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, req ProductRequest) (domain.CatalogItem, error) {
	if err := checkID(id); err != nil {
		return domain.CatalogItem{}, err
	}
	in, err := req.validate()
	if err != nil {
		return domain.CatalogItem{}, err
	}
	return s.Backend.UpdateProduct(ctx, id, in)
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.Backend.DeleteProduct(ctx, id)
}

type PointOfSaleRequest struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active *bool  `json:"active"`
}

func (r PointOfSaleRequest) validate() (backend.PointOfSaleInput, error) {
	in := backend.PointOfSaleInput{
		Name:   strings.TrimSpace(r.Name),
		Type:   strings.ToLower(strings.TrimSpace(r.Type)),
		Active: r.Active == nil || *r.Active,
	}
	if in.Name == "" {
		return in, domain.FormatError("nombre", "El nombre es obligatorio")
	}
	if in.Type == "" {
		return in, domain.FormatError("tipo", "El tipo es obligatorio")
	}
	return in, nil
}

// PointsOfSale lists every selling location, inactive ones included.
func (s *Service) PointsOfSale(ctx context.Context) ([]domain.PointOfSale, error) {
	return s.Backend.PointsOfSale(ctx)
}

func (s *Service) CreatePointOfSale(ctx context.Context, req PointOfSaleRequest) (domain.PointOfSale, error) {
	in, err := req.validate()
	if err != nil {
		return domain.PointOfSale{}, err
	}
	return s.Backend.CreatePointOfSale(ctx, in)
}

func (s *Service) UpdatePointOfSale(ctx context.Context, id int64, req PointOfSaleRequest) (domain.PointOfSale, error) {
	if err := checkID(id); err != nil {
		return domain.PointOfSale{}, err
	}
	in, err := req.validate()
	if err != nil {
		return domain.PointOfSale{}, err
	}
	return s.Backend.UpdatePointOfSale(ctx, id, in)
}

func (s *Service) DeletePointOfSale(ctx context.Context, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.Backend.DeletePointOfSale(ctx, id)
}

func checkID(id int64) error {
	if id <= 0 {
		return domain.FormatError("id", "Identificador inválido")
	}
	return nil
}
