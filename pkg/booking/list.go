package booking

import (
	"context"
	"fmt"
	"log"

	"github.com/puroquilmes/quilmes/pkg/domain"
)

// ReservationAPI is what the reservation list needs from the client.
type ReservationAPI interface {
	ListUserReservations(ctx context.Context, userID int64) ([]domain.Reserva, error)
	CancelReservation(ctx context.Context, id int64) error
}

// ConfirmFunc asks the user to confirm a destructive action.
type ConfirmFunc func(prompt string) bool

// Confirmed is a ConfirmFunc for callers that already asked.
func Confirmed(string) bool { return true }

// FetchUserReservations loads every reservation of user. With no user it
// does nothing and returns nil, nil.
func FetchUserReservations(ctx context.Context, api ReservationAPI, user *domain.User) ([]domain.Reserva, error) {
	if user == nil {
		log.Printf("booking: reservations requested without a user")
		return nil, nil
	}
	reservas, err := api.ListUserReservations(ctx, user.ID)
	if err != nil {
		log.Printf("booking: list reservations for %d: %v", user.ID, err)
		return nil, fmt.Errorf("booking.FetchUserReservations: %w", err)
	}
	return reservas, nil
}

// CancelResult is the outcome of a confirmed cancellation.
type CancelResult struct {
	Aborted    bool
	Reservas   []domain.Reserva
	RefreshErr error
}

// Cancel asks for confirmation, cancels the reservation and re-fetches the
// whole list. A failed cancellation returns the error and no list, so the
// caller keeps what it had.
func Cancel(ctx context.Context, api ReservationAPI, user *domain.User, id int64, confirm ConfirmFunc) (CancelResult, error) {
	if confirm == nil || !confirm(CancelPrompt) {
		log.Printf("booking: cancellation of %d aborted", id)
		return CancelResult{Aborted: true}, nil
	}
	if err := api.CancelReservation(ctx, id); err != nil {
		log.Printf("booking: cancel %d: %v", id, err)
		return CancelResult{}, fmt.Errorf("booking.Cancel: %w", err)
	}
	reservas, err := FetchUserReservations(ctx, api, user)
	return CancelResult{Reservas: reservas, RefreshErr: err}, nil
}

// CancelMessage is the alert text for a failed cancellation.
func CancelMessage(err error) string {
	return LoadMessage(err, MsgCancelFailed)
}

// Summary is a one-line description of a reservation for copying.
func Summary(r domain.Reserva) string {
	return fmt.Sprintf("Reserva #%d | Viaje #%d | %s | %d pasajero(s) | Bus #%d | %s",
		r.ID, r.Viaje.Numero, r.Viaje.Fecha.Largo(), r.CantidadPasajeros, r.Viaje.Bus.ID, r.EstadoLabel())
}
