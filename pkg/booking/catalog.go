package booking

import (
	"context"
	"fmt"
	"log"

	"github.com/puroquilmes/quilmes/pkg/domain"
)

// TripLister fetches the bookable trips.
type TripLister interface {
	ListAvailableTrips(ctx context.Context) ([]domain.Viaje, error)
}

// FetchAvailableTrips returns the backend's list unchanged. Which trips may
// be reserved is decided per trip with domain.Viaje.Reservable.
func FetchAvailableTrips(ctx context.Context, api TripLister) ([]domain.Viaje, error) {
	viajes, err := api.ListAvailableTrips(ctx)
	if err != nil {
		log.Printf("booking: list trips: %v", err)
		return nil, fmt.Errorf("booking.FetchAvailableTrips: %w", err)
	}
	log.Printf("booking: %d trips available", len(viajes))
	return viajes, nil
}

// PassengerOptions lists the selectable passenger counts for v:
// 1..min(lugar_disponible, 10).
func PassengerOptions(v domain.Viaje) []int {
	n := v.MaxPasajeros()
	opts := make([]int, n)
	for i := range opts {
		opts[i] = i + 1
	}
	return opts
}
