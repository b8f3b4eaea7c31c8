package domain

// Bus is the vehicle assigned to a trip.
type Bus struct {
	ID int64 `json:"bus_id"`
}

// Viaje is a scheduled bus trip. The backend copy is authoritative;
// the client only reads it.
type Viaje struct {
	ID              int64 `json:"viaje_id"`
	Numero          int   `json:"num_viaje"`
	Fecha           Fecha `json:"fecha"`
	LugarDisponible int   `json:"lugar_disponible"`
	Estado          bool  `json:"estado"`
	Bus             Bus   `json:"bus"`
}

// MaxPasajerosPorReserva caps the passenger selector regardless of free seats.
const MaxPasajerosPorReserva = 10

// Reservable reports whether the "reserve" action may be offered.
func (v Viaje) Reservable() bool {
	return v.Estado && v.LugarDisponible > 0
}

// MaxPasajeros is the upper bound of the passenger selector:
// min(lugar_disponible, MaxPasajerosPorReserva), never negative.
func (v Viaje) MaxPasajeros() int {
	n := v.LugarDisponible
	if n > MaxPasajerosPorReserva {
		n = MaxPasajerosPorReserva
	}
	if n < 0 {
		n = 0
	}
	return n
}

// EstadoLabel returns "Activo" or "Inactivo".
func (v Viaje) EstadoLabel() string {
	if v.Estado {
		return "Activo"
	}
	return "Inactivo"
}
