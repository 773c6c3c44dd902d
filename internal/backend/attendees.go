package backend

import (
	"context"
	"net/http"

	"github.com/eventcard/terminal/internal/domain"
)

type attendeeWire struct {
	ID       int64  `json:"id"`
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Telefono string `json:"telefono"`
}

func (w attendeeWire) attendee() domain.Attendee {
	return domain.Attendee{ID: w.ID, Name: w.Nombre, Email: w.Email, Phone: w.Telefono}
}

// UnassignedAttendees lists active attendees without an active card.
func (c *Client) UnassignedAttendees(ctx context.Context) ([]domain.Attendee, error) {
	var ws []attendeeWire
	if _, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/asistentes/sin-tarjeta"}, &ws); err != nil {
		return nil, err
	}
	out := make([]domain.Attendee, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.attendee())
	}
	return out, nil
}

type AttendeeInput struct {
	Name  string
	Email string
	Phone string
}

func (c *Client) RegisterAttendee(ctx context.Context, in AttendeeInput) (domain.Attendee, error) {
	body := map[string]any{"nombre": in.Name, "email": in.Email, "telefono": in.Phone}
	var w attendeeWire
	if _, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/asistentes", Body: body}, &w); err != nil {
		return domain.Attendee{}, err
	}
	return w.attendee(), nil
}
