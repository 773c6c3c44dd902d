package domain

import (
	"strconv"
	"strings"
)

// Attendee is an event guest who may hold one active card.
type Attendee struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Matches reports whether the lower-cased term is a substring of the name,
// email, phone or id.
func (a Attendee) Matches(term string) bool {
	return strings.Contains(strings.ToLower(a.Name), term) ||
		strings.Contains(strings.ToLower(a.Email), term) ||
		strings.Contains(strings.ToLower(a.Phone), term) ||
		strings.Contains(strconv.FormatInt(a.ID, 10), term)
}

func (a Attendee) Contact() string {
	switch {
	case a.Email != "":
		return a.Email
	case a.Phone != "":
		return a.Phone
	default:
		return "Sin contacto"
	}
}
