package domain

// Reserva is a passenger booking against a Viaje.
// Estado is true while active; a cancelled reservation never becomes active again.
type Reserva struct {
	ID                int64 `json:"pasajero_id"`
	CantidadPasajeros int   `json:"cantidad_pasajeros"`
	Estado            bool  `json:"estado"`
	Viaje             Viaje `json:"viaje"`
}

// Cancellable reports whether the cancel action may be offered.
func (r Reserva) Cancellable() bool {
	return r.Estado
}

// EstadoLabel returns "Activa" or "Cancelada".
func (r Reserva) EstadoLabel() string {
	if r.Estado {
		return "Activa"
	}
	return "Cancelada"
}
