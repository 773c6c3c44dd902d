package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error by where it was detected and how the operator
// should be told about it.
type Kind string

const (
	// KindFormat is a locally detected malformed input; it never reaches the network.
	KindFormat Kind = "format"
	// KindBusiness is a backend answer with success=false.
	KindBusiness Kind = "business"
	// KindTransport is a failed request or a response that is not JSON.
	KindTransport Kind = "transport"
	// KindPrecondition is a local guard blocking an action before any request.
	KindPrecondition Kind = "precondition"
)

type Error struct {
	Kind    Kind
	Field   string
	Message string
	// Status is the backend HTTP status for business errors.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func FormatError(field, msg string) *Error {
	return &Error{Kind: KindFormat, Field: field, Message: msg}
}

func PreconditionError(msg string) *Error {
	return &Error{Kind: KindPrecondition, Message: msg}
}

func BusinessError(status int, msg string) *Error {
	return &Error{Kind: KindBusiness, Status: status, Message: msg}
}

func TransportError(msg string, err error) *Error {
	return &Error{Kind: KindTransport, Message: msg, Err: err}
}

// KindOf reports the kind of err, or "" when err is not a *Error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// MessageOf returns the operator facing message carried by err, falling back
// to fallback for errors that are not a *Error.
func MessageOf(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return fallback
}

const connectionErrorMessage = "Error de conexión con el servidor"

// ConnectionErrorMessage is shown for every transport failure.
func ConnectionErrorMessage() string { return connectionErrorMessage }

// ErrQuantityStep rejects quantity changes other than one unit up or down.
var ErrQuantityStep = FormatError("delta", "La cantidad solo cambia de uno en uno")

var (
	ErrCardRequired       = PreconditionError("Primero debe escanear una tarjeta válida")
	ErrCardInactive       = PreconditionError("Tarjeta bloqueada. Recargue saldo para continuar.")
	ErrPointOfSaleMissing = PreconditionError("Debe seleccionar un punto de venta")
	ErrEmptyCart          = PreconditionError("Debe agregar productos al carrito")
	ErrInsufficientFunds  = PreconditionError("Saldo insuficiente")
	ErrCheckoutInFlight   = PreconditionError("Ya hay un pago en proceso")
	ErrRequestInFlight    = PreconditionError("Ya hay una operación en proceso")
	ErrConfirmation       = PreconditionError("Debe confirmar el pago antes de enviarlo")
	ErrLineNotFound       = PreconditionError("La línea no existe en el carrito")
	ErrItemNotInCatalog   = PreconditionError("El producto no está disponible en este punto de venta")
	ErrStaleLookup        = PreconditionError("Consulta de tarjeta reemplazada por una más reciente")
	ErrAttendeeRequired   = PreconditionError("Por favor selecciona un asistente")
	ErrAttendeeNotFound   = PreconditionError("El asistente no está en la lista de asistentes sin tarjeta")
)
