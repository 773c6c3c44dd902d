package reports

import (
	"strings"
	"time"

	"github.com/eventcard/terminal/internal/backend"
	"github.com/eventcard/terminal/internal/domain"
)

const dateLayout = "2006-01-02"

// Filter is what an operator picks above a report. Empty fields do not
// filter.
type Filter struct {
	From          string `query:"from"`
	To            string `query:"to"`
	PointOfSaleID *int64 `query:"point_of_sale_id"`
	Type          string `query:"type"`
}

func (f Filter) query(allowType bool) (backend.ReportQuery, error) {
	q := backend.ReportQuery{
		From:          strings.TrimSpace(f.From),
		To:            strings.TrimSpace(f.To),
		PointOfSaleID: f.PointOfSaleID,
	}

	var from, to time.Time
	var err error
	if q.From != "" {
		if from, err = time.Parse(dateLayout, q.From); err != nil {
			return q, domain.FormatError("fecha_inicio", "La fecha debe tener el formato AAAA-MM-DD")
		}
	}
	if q.To != "" {
		if to, err = time.Parse(dateLayout, q.To); err != nil {
			return q, domain.FormatError("fecha_fin", "La fecha debe tener el formato AAAA-MM-DD")
		}
	}
	if q.From != "" && q.To != "" && to.Before(from) {
		return q, domain.FormatError("fecha_fin", "La fecha final no puede ser anterior a la inicial")
	}
	if q.PointOfSaleID != nil && *q.PointOfSaleID <= 0 {
		return q, domain.FormatError("punto_venta_id", "Punto de venta inválido")
	}

	t := domain.TransactionType(strings.ToLower(strings.TrimSpace(f.Type)))
	switch {
	case t == "":
	case !allowType:
		return q, domain.FormatError("tipo", "Este reporte no admite filtro por tipo")
	case t == domain.TransactionRecharge || t == domain.TransactionPayment:
		q.Type = string(t)
	default:
		return q, domain.FormatError("tipo", "El tipo debe ser recarga o pago")
	}
	return q, nil
}

// MaskCard shows only the last four digits of a card.
func MaskCard(last4, full string) string {
	if last4 == "" && len(full) >= 4 {
		last4 = full[len(full)-4:]
	}
	if last4 == "" {
		return ""
	}
	return "****" + last4
}
