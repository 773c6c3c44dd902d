package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/eventcard/terminal/internal/logging"
	"github.com/eventcard/terminal/internal/middleware/auth"
	"github.com/eventcard/terminal/internal/recharge"
	"github.com/eventcard/terminal/internal/terminal"
)

type CardsHTTP struct {
	Registry *terminal.Registry
}

// rechargeRequest takes the amount as typed; it may arrive as a string or
// a JSON number.
type rechargeRequest struct {
	Amount any `json:"amount"`
}

func (h *CardsHTTP) station(c echo.Context) *recharge.Station {
	return h.Registry.Get(auth.TerminalID(c)).Recharge
}

func (h *CardsHTTP) Balance(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "cards.balance"))

	card, err := h.station(c).Balance(ctx, c.Param("number"))
	if err != nil {
		return fail(c, l, "card_balance", err)
	}
	return ok(c, http.StatusOK, card)
}

func (h *CardsHTTP) History(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "cards.history"))

	hist, err := h.station(c).History(ctx, c.Param("number"))
	if err != nil {
		return fail(c, l, "card_history", err)
	}
	return ok(c, http.StatusOK, hist)
}

func (h *CardsHTTP) Recharge(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(
		zap.String("handler", "cards.recharge"),
		zap.String("terminal", auth.TerminalID(c)),
	)

	var req rechargeRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c, l, "recharge", err)
	}
	amount, _ := cast.ToStringE(req.Amount)

	res, err := h.station(c).Recharge(ctx, c.Param("number"), amount)
	if err != nil {
		return fail(c, l, "recharge", err)
	}
	l.Info("recharge_success", zap.String("card", res.CardNumber), zap.Bool("card_unblocked", res.CardUnblocked))
	return ok(c, http.StatusOK, res)
}
