// Package booking implements the trip catalog, the reservation workflow and
// the reservation list with cancellation on top of the API client.
package booking

import (
	"errors"
	"fmt"

	"github.com/puroquilmes/quilmes/pkg/client"
)

// User-facing messages.
const (
	MsgAuthRequired      = "Debes estar logueado para hacer una reserva"
	MsgCreateFailed      = "Error al crear la reserva"
	MsgConnection        = "Error de conexión"
	MsgLoadTripsFailed   = "Error al cargar los viajes"
	MsgLoadReservasError = "Error al cargar las reservas"
	MsgCancelFailed      = "Error al cancelar la reserva"
	MsgLoginToReserve    = "Necesitas iniciar sesión para poder reservar viajes."
	MsgReservaExitosa    = "¡Reserva realizada con éxito! Revisa tus reservas para más detalles."
	CancelPrompt         = "¿Estás seguro de que quieres cancelar esta reserva?"
)

// ErrAuthRequired is returned when a reservation is attempted without a user.
var ErrAuthRequired = errors.New(MsgAuthRequired)

// ValidationError is a reservation rejected before contacting the backend.
type ValidationError struct {
	Requested   int
	Disponibles int
}

func (e *ValidationError) Error() string {
	if e.Requested < 1 {
		return "Selecciona al menos un pasajero"
	}
	return fmt.Sprintf("Solo hay %d lugares disponibles", e.Disponibles)
}

// IsValidation reports whether err was raised locally, before any request.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.Is(err, ErrAuthRequired) || errors.As(err, &ve)
}

// SubmitMessage turns a reservation error into the text shown next to the
// form. Server-provided messages win over the fallback.
func SubmitMessage(err error) string {
	if err == nil {
		return ""
	}
	if IsValidation(err) {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return ve.Error()
		}
		return MsgAuthRequired
	}
	if msg, ok := client.ServerMessage(err); ok {
		return msg
	}
	if client.IsHTTP(err) {
		return MsgCreateFailed
	}
	return MsgConnection
}

// LoadMessage turns a list fetch error into the text shown with the retry
// affordance. fallback is used for server rejections.
func LoadMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if client.IsHTTP(err) {
		return fallback
	}
	return MsgConnection
}
