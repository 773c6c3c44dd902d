package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eventcard/terminal/internal/logging"
	"github.com/eventcard/terminal/internal/middleware/auth"
	"github.com/eventcard/terminal/internal/pos"
	"github.com/eventcard/terminal/internal/terminal"
	"github.com/eventcard/terminal/internal/util"
)

type POSHTTP struct {
	Registry *terminal.Registry
}

type cardRequest struct {
	Number string `json:"number"`
}

type pointOfSaleRequest struct {
	ID int64 `json:"id"`
}

type lineRequest struct {
	ItemID int64 `json:"item_id"`
}

type quantityRequest struct {
	Delta int `json:"delta"`
}

type checkoutRequest struct {
	ConfirmationID string `json:"confirmation_id"`
}

func (h *POSHTTP) session(c echo.Context) *pos.Session {
	return h.Registry.Get(auth.TerminalID(c)).POS
}

func (h *POSHTTP) logger(c echo.Context, handler string) *zap.Logger {
	return logging.FromContext(c.Request().Context()).With(
		zap.String("handler", handler),
		zap.String("terminal", auth.TerminalID(c)),
	)
}

func (h *POSHTTP) GetView(c echo.Context) error {
	return ok(c, http.StatusOK, h.session(c).View())
}

func (h *POSHTTP) LookupCard(c echo.Context) error {
	l := h.logger(c, "pos.lookup_card")

	var req cardRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c, l, "lookup_card", err)
	}
	card, err := h.session(c).LookupCard(c.Request().Context(), req.Number)
	if err != nil {
		return fail(c, l, "lookup_card", err)
	}
	return ok(c, http.StatusOK, card)
}

func (h *POSHTTP) PointsOfSale(c echo.Context) error {
	l := h.logger(c, "pos.points_of_sale")

	list, err := h.session(c).PointsOfSale(c.Request().Context())
	if err != nil {
		return fail(c, l, "points_of_sale", err)
	}
	return ok(c, http.StatusOK, list)
}

func (h *POSHTTP) SelectPointOfSale(c echo.Context) error {
	l := h.logger(c, "pos.select_point_of_sale")

	var req pointOfSaleRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c, l, "select_point_of_sale", err)
	}
	p, err := h.session(c).SelectPointOfSale(c.Request().Context(), req.ID)
	if err != nil {
		return fail(c, l, "select_point_of_sale", err)
	}
	l.Info("select_point_of_sale_success", zap.Int64("point_of_sale_id", p.ID))
	return ok(c, http.StatusOK, p)
}

func (h *POSHTTP) ClearPointOfSale(c echo.Context) error {
	s := h.session(c)
	s.ClearPointOfSale()
	return ok(c, http.StatusOK, s.View())
}

func (h *POSHTTP) Catalog(c echo.Context) error {
	l := h.logger(c, "pos.catalog")

	items, err := h.session(c).FilterCatalog(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return fail(c, l, "catalog", err)
	}
	return ok(c, http.StatusOK, items)
}

func (h *POSHTTP) AddLine(c echo.Context) error {
	l := h.logger(c, "pos.add_line")

	var req lineRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c, l, "add_line", err)
	}
	s := h.session(c)
	if err := s.AddLine(req.ItemID); err != nil {
		return fail(c, l, "add_line", err)
	}
	return ok(c, http.StatusOK, s.View())
}

func (h *POSHTTP) ChangeQuantity(c echo.Context) error {
	l := h.logger(c, "pos.change_quantity")

	var req quantityRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c, l, "change_quantity", err)
	}
	s := h.session(c)
	if err := s.ChangeQuantity(util.ParseIntDefault(c.Param("index"), -1), req.Delta); err != nil {
		return fail(c, l, "change_quantity", err)
	}
	return ok(c, http.StatusOK, s.View())
}

func (h *POSHTTP) RemoveLine(c echo.Context) error {
	l := h.logger(c, "pos.remove_line")

	s := h.session(c)
	if err := s.RemoveLine(util.ParseIntDefault(c.Param("index"), -1)); err != nil {
		return fail(c, l, "remove_line", err)
	}
	return ok(c, http.StatusOK, s.View())
}

func (h *POSHTTP) ClearCart(c echo.Context) error {
	l := h.logger(c, "pos.clear_cart")

	s := h.session(c)
	if err := s.ClearCart(); err != nil {
		return fail(c, l, "clear_cart", err)
	}
	return ok(c, http.StatusOK, s.View())
}

func (h *POSHTTP) Confirm(c echo.Context) error {
	l := h.logger(c, "pos.confirm")

	conf, err := h.session(c).Confirm()
	if err != nil {
		return fail(c, l, "confirm", err)
	}
	return ok(c, http.StatusOK, conf)
}

func (h *POSHTTP) Checkout(c echo.Context) error {
	l := h.logger(c, "pos.checkout")

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c, l, "checkout", err)
	}
	res, err := h.session(c).Checkout(c.Request().Context(), req.ConfirmationID)
	if err != nil {
		return fail(c, l, "checkout", err)
	}
	l.Info("checkout_success", zap.Bool("card_blocked", res.CardBlocked))
	return ok(c, http.StatusOK, res)
}

func (h *POSHTTP) Reset(c echo.Context) error {
	s := h.session(c)
	s.Reset()
	return ok(c, http.StatusOK, s.View())
}

// EndSession drops the point-of-sale, assignment and recharge state of the
// caller's terminal, as on operator logout.
func (h *POSHTTP) EndSession(c echo.Context) error {
	id := auth.TerminalID(c)
	h.Registry.Reset(id)
	h.logger(c, "terminal.end_session").Info("terminal_session_ended")
	return c.NoContent(http.StatusNoContent)
}

// latestView holds at most one pending snapshot, keeping the newest by Seq.
type latestView struct {
	mu sync.Mutex
	ch chan pos.View
}

func newLatestView() *latestView {
	return &latestView{ch: make(chan pos.View, 1)}
}

func (m *latestView) put(v pos.View) {
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case old := <-m.ch:
		if old.Seq > v.Seq {
			v = old
		}
	default:
	}
	m.ch <- v
}

// Events streams a view snapshot after every state change as server-sent
// events until the client goes away.
func (h *POSHTTP) Events(c echo.Context) error {
	l := h.logger(c, "pos.events")
	s := h.session(c)

	updates := newLatestView()
	unsubscribe := s.Subscribe(updates.put)
	defer unsubscribe()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	write := func(v pos.View) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(res, "event: view\ndata: %s\n\n", b); err != nil {
			return err
		}
		res.Flush()
		return nil
	}

	current := s.View()
	if err := write(current); err != nil {
		return nil
	}
	sent := current.Seq
	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case v := <-updates.ch:
			if v.Seq <= sent {
				continue
			}
			sent = v.Seq
			if err := write(v); err != nil {
				l.Debug("event stream closed", zap.Error(err))
				return nil
			}
		}
	}
}
