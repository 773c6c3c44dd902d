package reports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/eventcard/terminal/internal/backend"
	"github.com/eventcard/terminal/internal/domain"
	"github.com/eventcard/terminal/internal/util"
)

type Backend interface {
	SalesReport(ctx context.Context, q backend.ReportQuery) (backend.SalesReport, error)
	TransactionsReport(ctx context.Context, q backend.ReportQuery) (backend.TransactionsReport, error)
}

// Money pairs an amount with its display text.
type Money struct {
	Amount decimal.Decimal `json:"amount"`
	Text   string          `json:"text"`
}

type SaleRow struct {
	ID          int64  `json:"id"`
	At          string `json:"at"`
	PointOfSale string `json:"point_of_sale"`
	Product     string `json:"product"`
	Quantity    int    `json:"quantity"`
	UnitPrice   Money  `json:"unit_price"`
	Total       Money  `json:"total"`
	Card        string `json:"card"`
	Attendee    string `json:"attendee"`
	User        string `json:"user"`
}

type PointOfSaleTotal struct {
	PointOfSale string `json:"point_of_sale"`
	Count       int    `json:"count"`
	Amount      Money  `json:"amount"`
}

type ProductTotal struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
	Amount   Money  `json:"amount"`
}

type SalesSummary struct {
	Count         int                `json:"count"`
	Amount        Money              `json:"amount"`
	Average       Money              `json:"average"`
	ByPointOfSale []PointOfSaleTotal `json:"by_point_of_sale"`
	TopProducts   []ProductTotal     `json:"top_products"`
}

type Sales struct {
	Rows    []SaleRow    `json:"rows"`
	Meta    util.Meta    `json:"meta"`
	Summary SalesSummary `json:"summary"`
}

type TransactionRow struct {
	ID              int64                  `json:"id"`
	At              string                 `json:"at"`
	Type            domain.TransactionType `json:"type"`
	Amount          Money                  `json:"amount"`
	Card            string                 `json:"card"`
	Attendee        string                 `json:"attendee"`
	PointOfSale     string                 `json:"point_of_sale"`
	User            string                 `json:"user"`
	Status          string                 `json:"status"`
	Description     string                 `json:"description"`
	PreviousBalance Money                  `json:"previous_balance"`
	NewBalance      Money                  `json:"new_balance"`
}

type TransactionsSummary struct {
	Count          int   `json:"count"`
	Recharges      int   `json:"recharges"`
	Payments       int   `json:"payments"`
	RechargeAmount Money `json:"recharge_amount"`
	PaymentAmount  Money `json:"payment_amount"`
	Difference     Money `json:"difference"`
}

type Transactions struct {
	Rows    []TransactionRow    `json:"rows"`
	Meta    util.Meta           `json:"meta"`
	Summary TransactionsSummary `json:"summary"`
}

type Service struct {
	backend   Backend
	formatter *domain.Formatter
}

func NewService(b Backend, f *domain.Formatter) *Service {
	if f == nil {
		f = domain.NewFormatter(domain.DefaultLocale, domain.DefaultSymbol)
	}
	return &Service{backend: b, formatter: f}
}

func (s *Service) money(d decimal.Decimal) Money {
	return Money{Amount: d, Text: s.formatter.Format(d)}
}

func (s *Service) Sales(ctx context.Context, f Filter, page, size int) (Sales, error) {
	q, err := f.query(false)
	if err != nil {
		return Sales{}, err
	}
	r, err := s.backend.SalesReport(ctx, q)
	if err != nil {
		return Sales{}, err
	}

	rows := make([]SaleRow, 0, len(r.Rows))
	for _, v := range r.Rows {
		rows = append(rows, SaleRow{
			ID:          v.ID,
			At:          v.At,
			PointOfSale: v.PointOfSale,
			Product:     v.Product,
			Quantity:    v.Quantity,
			UnitPrice:   s.money(v.UnitPrice),
			Total:       s.money(v.Total),
			Card:        MaskCard(v.CardLast4, v.CardNumber),
			Attendee:    v.Attendee,
			User:        v.User,
		})
	}

	out := Sales{
		Summary: SalesSummary{
			Count:         r.Summary.Count,
			Amount:        s.money(r.Summary.Amount),
			Average:       s.money(r.Summary.Average),
			ByPointOfSale: make([]PointOfSaleTotal, 0, len(r.Summary.ByPointOfSale)),
			TopProducts:   make([]ProductTotal, 0, len(r.Summary.TopProducts)),
		},
	}
	for _, p := range r.Summary.ByPointOfSale {
		out.Summary.ByPointOfSale = append(out.Summary.ByPointOfSale, PointOfSaleTotal{
			PointOfSale: p.PointOfSale,
			Count:       p.Count,
			Amount:      s.money(p.Amount),
		})
	}
	for _, p := range r.Summary.TopProducts {
		out.Summary.TopProducts = append(out.Summary.TopProducts, ProductTotal{
			Product:  p.Product,
			Quantity: p.Quantity,
			Amount:   s.money(p.Amount),
		})
	}
	out.Rows, out.Meta = util.Paginate(rows, page, size)
	return out, nil
}

func (s *Service) Transactions(ctx context.Context, f Filter, page, size int) (Transactions, error) {
	q, err := f.query(true)
	if err != nil {
		return Transactions{}, err
	}
	r, err := s.backend.TransactionsReport(ctx, q)
	if err != nil {
		return Transactions{}, err
	}

	rows := make([]TransactionRow, 0, len(r.Rows))
	for _, v := range r.Rows {
		rows = append(rows, TransactionRow{
			ID:              v.ID,
			At:              v.At,
			Type:            domain.TransactionType(v.Type),
			Amount:          s.money(v.Amount),
			Card:            MaskCard(v.CardLast4, v.CardNumber),
			Attendee:        v.Attendee,
			PointOfSale:     v.PointOfSale,
			User:            v.User,
			Status:          v.Status,
			Description:     v.Description,
			PreviousBalance: s.money(v.PreviousBalance),
			NewBalance:      s.money(v.NewBalance),
		})
	}

	out := Transactions{
		Summary: TransactionsSummary{
			Count:          r.Summary.Count,
			Recharges:      r.Summary.Recharges,
			Payments:       r.Summary.Payments,
			RechargeAmount: s.money(r.Summary.RechargeAmount),
			PaymentAmount:  s.money(r.Summary.PaymentAmount),
			Difference:     s.money(r.Summary.Difference),
		},
	}
	out.Rows, out.Meta = util.Paginate(rows, page, size)
	return out, nil
}
