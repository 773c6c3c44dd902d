package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/eventcard/terminal/internal/domain"
)

type cardBalanceWire struct {
	NumeroTarjeta   string          `json:"numero_tarjeta"`
	Asistente       string          `json:"asistente"`
	Saldo           decimal.Decimal `json:"saldo"`
	SaldoFormateado string          `json:"saldo_formateado"`
	Activa          *Flag           `json:"activa"`
}

// CardBalance fetches a fresh card snapshot. The backend only answers for
// active cards unless it says otherwise, so a missing "activa" means active.
func (c *Client) CardBalance(ctx context.Context, number string) (domain.Card, error) {
	n, err := domain.ValidateCardNumber(number)
	if err != nil {
		return domain.Card{}, err
	}
	var w cardBalanceWire
	if _, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/tarjetas/saldo/" + url.PathEscape(n)}, &w); err != nil {
		return domain.Card{}, err
	}
	if w.NumeroTarjeta == "" {
		w.NumeroTarjeta = n
	}
	return domain.Card{
		Number:     w.NumeroTarjeta,
		HolderName: w.Asistente,
		Balance:    w.Saldo,
		Active:     flagOr(w.Activa, true),
	}, nil
}

type verifyWire struct {
	NumeroTarjeta   string `json:"numero_tarjeta"`
	Existe          Flag   `json:"existe"`
	Activa          Flag   `json:"activa"`
	Asignada        Flag   `json:"asignada"`
	AsistenteID     *int64 `json:"asistente_id"`
	AsistenteNombre string `json:"asistente_nombre"`
}

func (c *Client) VerifyCard(ctx context.Context, number string) (domain.CardStatus, error) {
	n, err := domain.ValidateCardNumber(number)
	if err != nil {
		return domain.CardStatus{}, err
	}
	var w verifyWire
	if _, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/tarjetas/verificar/" + url.PathEscape(n)}, &w); err != nil {
		return domain.CardStatus{}, err
	}
	return domain.CardStatus{
		Number:       n,
		Exists:       bool(w.Existe),
		Active:       bool(w.Activa),
		Assigned:     bool(w.Asignada),
		AttendeeID:   w.AsistenteID,
		AttendeeName: w.AsistenteNombre,
	}, nil
}

// Assignment is the backend confirmation of a card handed to an attendee.
type Assignment struct {
	CardNumber   string `json:"card_number"`
	AttendeeName string `json:"attendee_name"`
	Message      string `json:"message,omitempty"`
}

func (c *Client) AssignCard(ctx context.Context, attendeeID int64, number string) (Assignment, error) {
	n, err := domain.ValidateCardNumber(number)
	if err != nil {
		return Assignment{}, err
	}
	body := map[string]any{"asistente_id": attendeeID, "numero_tarjeta": n}
	var w struct {
		NumeroTarjeta   string `json:"numero_tarjeta"`
		AsistenteNombre string `json:"asistente_nombre"`
	}
	res, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/tarjetas/asignar", Body: body}, &w)
	if err != nil {
		return Assignment{}, err
	}
	if w.NumeroTarjeta == "" {
		w.NumeroTarjeta = n
	}
	return Assignment{CardNumber: w.NumeroTarjeta, AttendeeName: w.AsistenteNombre, Message: res.Envelope.Message}, nil
}

type cardRefWire struct {
	NumeroTarjeta string `json:"numero_tarjeta"`
}

type rechargeWire struct {
	Tarjeta             cardRefWire     `json:"tarjeta"`
	MontoRecargado      decimal.Decimal `json:"monto_recargado"`
	SaldoAnterior       decimal.Decimal `json:"saldo_anterior"`
	SaldoNuevo          decimal.Decimal `json:"saldo_nuevo"`
	TarjetaDesbloqueada Flag            `json:"tarjeta_desbloqueada"`
}

func (c *Client) Recharge(ctx context.Context, number string, amt decimal.Decimal, idempotencyKey string) (domain.RechargeResult, error) {
	n, err := domain.ValidateCardNumber(number)
	if err != nil {
		return domain.RechargeResult{}, err
	}
	body := map[string]any{"numero_tarjeta": n, "monto": amount(amt)}
	var w rechargeWire
	res, err := c.Do(ctx, Request{
		Method:         http.MethodPost,
		Path:           "/api/tarjetas/recargar",
		Body:           body,
		IdempotencyKey: idempotencyKey,
	}, &w)
	if err != nil {
		return domain.RechargeResult{}, err
	}
	if w.Tarjeta.NumeroTarjeta == "" {
		w.Tarjeta.NumeroTarjeta = n
	}
	return domain.RechargeResult{
		CardNumber:      w.Tarjeta.NumeroTarjeta,
		Amount:          w.MontoRecargado,
		PreviousBalance: w.SaldoAnterior,
		NewBalance:      w.SaldoNuevo,
		CardUnblocked:   bool(w.TarjetaDesbloqueada),
		Message:         res.Envelope.Message,
	}, nil
}

// PayRequest is a single debit against a card.
type PayRequest struct {
	CardNumber     string
	PointOfSaleID  int64
	Amount         decimal.Decimal
	Description    string
	IdempotencyKey string
}

type payWire struct {
	MontoPagado      decimal.Decimal `json:"monto_pagado"`
	SaldoAnterior    decimal.Decimal `json:"saldo_anterior"`
	SaldoNuevo       decimal.Decimal `json:"saldo_nuevo"`
	PuntoVenta       string          `json:"punto_venta"`
	TarjetaBloqueada Flag            `json:"tarjeta_bloqueada"`
}

func (c *Client) Pay(ctx context.Context, p PayRequest) (domain.CheckoutResult, error) {
	n, err := domain.ValidateCardNumber(p.CardNumber)
	if err != nil {
		return domain.CheckoutResult{}, err
	}
	body := map[string]any{
		"numero_tarjeta": n,
		"punto_venta_id": p.PointOfSaleID,
		"monto":          amount(p.Amount),
		"descripcion":    p.Description,
	}
	var w payWire
	res, err := c.Do(ctx, Request{
		Method:         http.MethodPost,
		Path:           "/api/tarjetas/pagar",
		Body:           body,
		IdempotencyKey: p.IdempotencyKey,
	}, &w)
	if err != nil {
		return domain.CheckoutResult{}, err
	}
	return domain.CheckoutResult{
		Amount:          w.MontoPagado,
		PreviousBalance: w.SaldoAnterior,
		NewBalance:      w.SaldoNuevo,
		PointOfSale:     w.PuntoVenta,
		CardBlocked:     bool(w.TarjetaBloqueada),
		Message:         res.Envelope.Message,
	}, nil
}

type historyWire struct {
	NumeroTarjeta string          `json:"numero_tarjeta"`
	Asistente     string          `json:"asistente"`
	SaldoActual   decimal.Decimal `json:"saldo_actual"`
	Transacciones []struct {
		ID            int64           `json:"id"`
		Tipo          string          `json:"tipo"`
		Monto         decimal.Decimal `json:"monto"`
		SaldoAnterior decimal.Decimal `json:"saldo_anterior"`
		SaldoNuevo    decimal.Decimal `json:"saldo_nuevo"`
		PuntoVenta    string          `json:"punto_venta"`
		Descripcion   string          `json:"descripcion"`
		Fecha         Timestamp       `json:"fecha"`
	} `json:"transacciones"`
}

func (c *Client) CardHistory(ctx context.Context, number string) (domain.CardHistory, error) {
	n, err := domain.ValidateCardNumber(number)
	if err != nil {
		return domain.CardHistory{}, err
	}
	var w historyWire
	if _, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/tarjetas/historial/" + url.PathEscape(n)}, &w); err != nil {
		return domain.CardHistory{}, err
	}
	h := domain.CardHistory{
		CardNumber: n,
		HolderName: w.Asistente,
		Balance:    w.SaldoActual,
		Entries:    make([]domain.HistoryEntry, 0, len(w.Transacciones)),
	}
	for _, t := range w.Transacciones {
		h.Entries = append(h.Entries, domain.HistoryEntry{
			ID:              t.ID,
			Type:            domain.TransactionType(t.Tipo),
			Amount:          t.Monto,
			PreviousBalance: t.SaldoAnterior,
			NewBalance:      t.SaldoNuevo,
			PointOfSale:     t.PuntoVenta,
			Description:     t.Descripcion,
			At:              t.Fecha.ptr(),
		})
	}
	return h, nil
}
