package booking

import (
	"context"
	"log"

	"github.com/puroquilmes/quilmes/pkg/client"
	"github.com/puroquilmes/quilmes/pkg/domain"
)

// State is the phase of one reservation attempt.
type State int

const (
	Idle State = iota
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Creator books seats on a trip.
type Creator interface {
	CreateReservation(ctx context.Context, req client.CreateReservationRequest) error
}

// Workflow tracks one reservation attempt for a selected trip. The zero
// value is not useful; use NewWorkflow.
type Workflow struct {
	Viaje     domain.Viaje
	Pasajeros int
	State     State
	Message   string
}

// NewWorkflow starts an attempt for v with one passenger selected.
func NewWorkflow(v domain.Viaje) Workflow {
	return Workflow{Viaje: v, Pasajeros: 1}
}

// Validate checks the local preconditions and builds the request. The user
// check runs first.
func Validate(v domain.Viaje, user *domain.User, pasajeros int) (client.CreateReservationRequest, error) {
	if user == nil {
		return client.CreateReservationRequest{}, ErrAuthRequired
	}
	if pasajeros < 1 || pasajeros > v.LugarDisponible {
		return client.CreateReservationRequest{}, &ValidationError{Requested: pasajeros, Disponibles: v.LugarDisponible}
	}
	return client.CreateReservationRequest{
		ViajeID:           v.ID,
		UserID:            user.ID,
		CantidadPasajeros: pasajeros,
	}, nil
}

// Begin validates the attempt. On success it moves to Submitting and returns
// the request to send; otherwise it moves to Failed with the message set.
func (w *Workflow) Begin(user *domain.User) (client.CreateReservationRequest, error) {
	req, err := Validate(w.Viaje, user, w.Pasajeros)
	if err != nil {
		log.Printf("booking: reservation for viaje %d rejected locally: %v", w.Viaje.ID, err)
		w.State = Failed
		w.Message = SubmitMessage(err)
		return client.CreateReservationRequest{}, err
	}
	w.State = Submitting
	w.Message = ""
	return req, nil
}

// Finish records the backend's answer. The selected passenger count is kept
// on failure so the form can be resubmitted as is.
func (w *Workflow) Finish(err error) {
	if err != nil {
		log.Printf("booking: reservation for viaje %d failed: %v", w.Viaje.ID, err)
		w.State = Failed
		w.Message = SubmitMessage(err)
		return
	}
	log.Printf("booking: reservation for viaje %d created", w.Viaje.ID)
	w.State = Succeeded
	w.Message = MsgReservaExitosa
}

// Submit runs the whole attempt synchronously.
func (w *Workflow) Submit(ctx context.Context, api Creator, user *domain.User) error {
	req, err := w.Begin(user)
	if err != nil {
		return err
	}
	err = api.CreateReservation(ctx, req)
	w.Finish(err)
	return err
}

// SetPasajeros moves the selection within PassengerOptions.
func (w *Workflow) SetPasajeros(n int) {
	limit := w.Viaje.MaxPasajeros()
	if n > limit {
		n = limit
	}
	if n < 1 {
		n = 1
	}
	w.Pasajeros = n
}

// Busy reports whether a request is outstanding.
func (w Workflow) Busy() bool {
	return w.State == Submitting
}
