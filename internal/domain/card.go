package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const CardNumberField = "numero_tarjeta"

var cardNumberRe = regexp.MustCompile(`^TARJ-\d{6}$`)

// NormalizeCardNumber trims and upper-cases operator input.
func NormalizeCardNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidateCardNumber normalizes s and checks the TARJ-###### format.
func ValidateCardNumber(s string) (string, error) {
	n := NormalizeCardNumber(s)
	if !cardNumberRe.MatchString(n) {
		return "", FormatError(CardNumberField, "El formato debe ser TARJ-XXXXXX")
	}
	return n, nil
}

// Card is a balance snapshot fetched for one lookup.
type Card struct {
	Number     string          `json:"number"`
	HolderName string          `json:"holder_name"`
	Balance    decimal.Decimal `json:"balance"`
	Active     bool            `json:"active"`
}

// CardStatus is the answer of the verify endpoint.
type CardStatus struct {
	Number       string `json:"number"`
	Exists       bool   `json:"exists"`
	Active       bool   `json:"active"`
	Assigned     bool   `json:"assigned"`
	AttendeeID   *int64 `json:"attendee_id,omitempty"`
	AttendeeName string `json:"attendee_name,omitempty"`
}

type CardState string

const (
	CardStateNew             CardState = "new"
	CardStateAssignedToOther CardState = "assigned"
	CardStateInactive        CardState = "inactive"
	CardStateAvailable       CardState = "available"
)

// State collapses the flags into the four mutually exclusive states shown to
// the operator.
func (s CardStatus) State() CardState {
	switch {
	case !s.Exists:
		return CardStateNew
	case s.Assigned && s.Active:
		return CardStateAssignedToOther
	case !s.Active:
		return CardStateInactive
	default:
		return CardStateAvailable
	}
}

// BlocksAssignmentTo reports whether the card is actively held by someone
// other than attendeeID.
func (s CardStatus) BlocksAssignmentTo(attendeeID int64) bool {
	if !s.Exists || !s.Assigned || !s.Active {
		return false
	}
	return s.AttendeeID == nil || *s.AttendeeID != attendeeID
}

func (s CardStatus) Message() string {
	switch s.State() {
	case CardStateNew:
		return "Tarjeta disponible. Puede ser asignada."
	case CardStateAssignedToOther:
		return "Tarjeta ya asignada a: " + s.AttendeeName
	case CardStateInactive:
		return "Tarjeta inactiva. Se reactivará al asignar."
	default:
		return "Tarjeta disponible"
	}
}
