package devserver

import (
	"fmt"
	"time"

	"github.com/puroquilmes/quilmes/pkg/domain"
)

// Demo credentials created by Seed.
const (
	DemoAdminEmail    = "admin@quilmes.test"
	DemoAdminPassword = "admin"
	DemoUserEmail     = "ana@quilmes.test"
	DemoUserPassword  = "ana"
)

// Seed fills the server with a small demo dataset: two accounts, a week of
// trips starting the day after now, and a few places.
func (s *Server) Seed() error {
	if _, err := s.AddUser(DemoAdminEmail, DemoAdminPassword, "Admin", "Quilmes", "admin"); err != nil {
		return fmt.Errorf("devserver.Seed: %w", err)
	}
	if _, err := s.AddUser(DemoUserEmail, DemoUserPassword, "Ana", "Gomez", "cliente"); err != nil {
		return fmt.Errorf("devserver.Seed: %w", err)
	}

	start := s.now().Truncate(24 * time.Hour).Add(24*time.Hour + 9*time.Hour)
	for i := 0; i < 7; i++ {
		s.AddViaje(domain.Viaje{
			Numero:          i + 1,
			Fecha:           domain.NewFecha(start.Add(time.Duration(i) * 24 * time.Hour)),
			LugarDisponible: []int{40, 12, 3, 0, 25, 8, 1}[i],
			Estado:          i != 4,
			Bus:             domain.Bus{ID: int64(i%3 + 1)},
		})
	}

	centro := s.AddZona("Centro")
	ribera := s.AddZona("Ribera")
	museo := s.AddTipoLugar("Museo")
	cerveceria := s.AddTipoLugar("Cervecería")
	paseo := s.AddTipoLugar("Paseo")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range []domain.Lugar{
		{Nombre: "Cervecería Quilmes", Ubicacion: "Av. 12 de Octubre y Gran Canaria", Descripcion: "Visita guiada a la fábrica histórica.", Zona: &centro, TipoLugar: &cerveceria},
		{Nombre: "Museo Roverano", Ubicacion: "Rivadavia 498", Descripcion: "Museo municipal de artes visuales.", Zona: &centro, TipoLugar: &museo},
		{Nombre: "Costanera de Quilmes", Ubicacion: "Av. Otamendi", Descripcion: "Paseo junto al Río de la Plata.", Zona: &ribera, TipoLugar: &paseo},
	} {
		l.ID = s.id()
		s.lugares[l.ID] = l
	}
	return nil
}
