package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eventcard/terminal/internal/assignment"
	"github.com/eventcard/terminal/internal/backend"
	"github.com/eventcard/terminal/internal/logging"
	"github.com/eventcard/terminal/internal/middleware/auth"
	"github.com/eventcard/terminal/internal/terminal"
)

type AssignmentHTTP struct {
	Registry *terminal.Registry
}

type selectRequest struct {
	AttendeeID int64 `json:"attendee_id"`
}

type attendeeRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (h *AssignmentHTTP) session(c echo.Context) *assignment.Session {
	return h.Registry.Get(auth.TerminalID(c)).Assignment
}

func (h *AssignmentHTTP) logger(c echo.Context, handler string) *zap.Logger {
	return logging.FromContext(c.Request().Context()).With(
		zap.String("handler", handler),
		zap.String("terminal", auth.TerminalID(c)),
	)
}

// GetView loads the candidate list on first use.
func (h *AssignmentHTTP) GetView(c echo.Context) error {
	l := h.logger(c, "assignment.view")

	s := h.session(c)
	if err := s.Load(c.Request().Context()); err != nil {
		return fail(c, l, "assignment_load", err)
	}
	return ok(c, http.StatusOK, s.View())
}

func (h *AssignmentHTTP) Reload(c echo.Context) error {
	l := h.logger(c, "assignment.reload")

	s := h.session(c)
	if err := s.Reload(c.Request().Context()); err != nil {
		return fail(c, l, "assignment_reload", err)
	}
	return ok(c, http.StatusOK, s.View())
}

func (h *AssignmentHTTP) Search(c echo.Context) error {
	l := h.logger(c, "assignment.search")

	s := h.session(c)
	if err := s.Load(c.Request().Context()); err != nil {
		return fail(c, l, "assignment_search", err)
	}
	return ok(c, http.StatusOK, s.Search(c.QueryParam("q")))
}

func (h *AssignmentHTTP) Select(c echo.Context) error {
	l := h.logger(c, "assignment.select")

	var req selectRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c, l, "assignment_select", err)
	}
	a, err := h.session(c).Select(req.AttendeeID)
	if err != nil {
		return fail(c, l, "assignment_select", err)
	}
	return ok(c, http.StatusOK, a)
}

func (h *AssignmentHTTP) ClearSelection(c echo.Context) error {
	s := h.session(c)
	s.ClearSelection()
	return ok(c, http.StatusOK, s.View())
}

func (h *AssignmentHTTP) Verify(c echo.Context) error {
	l := h.logger(c, "assignment.verify")

	var req cardRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c, l, "assignment_verify", err)
	}
	s := h.session(c)
	if _, err := s.Verify(c.Request().Context(), req.Number); err != nil {
		return fail(c, l, "assignment_verify", err)
	}
	return ok(c, http.StatusOK, s.View())
}

func (h *AssignmentHTTP) Submit(c echo.Context) error {
	l := h.logger(c, "assignment.submit")

	var req cardRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c, l, "assignment_submit", err)
	}
	res, err := h.session(c).Submit(c.Request().Context(), req.Number)
	if err != nil {
		return fail(c, l, "assignment_submit", err)
	}
	l.Info("assignment_submit_success", zap.String("card", res.CardNumber))
	return ok(c, http.StatusOK, res)
}

func (h *AssignmentHTTP) Register(c echo.Context) error {
	l := h.logger(c, "assignment.register")

	var req attendeeRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c, l, "assignment_register", err)
	}
	a, err := h.session(c).Register(c.Request().Context(), backend.AttendeeInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return fail(c, l, "assignment_register", err)
	}
	return ok(c, http.StatusCreated, a)
}
