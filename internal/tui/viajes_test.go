package tui

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/puroquilmes/quilmes/pkg/booking"
	"github.com/puroquilmes/quilmes/pkg/client"
	"github.com/puroquilmes/quilmes/pkg/domain"
)

func testViajes() []domain.Viaje {
	base := time.Date(2025, 7, 14, 9, 0, 0, 0, time.Local)
	return []domain.Viaje{
		{ID: 1, Numero: 1, Fecha: domain.NewFecha(base), LugarDisponible: 12, Estado: true, Bus: domain.Bus{ID: 2}},
		{ID: 2, Numero: 2, Fecha: domain.NewFecha(base.Add(24 * time.Hour)), LugarDisponible: 0, Estado: true},
		{ID: 3, Numero: 3, Fecha: domain.NewFecha(base.Add(48 * time.Hour)), LugarDisponible: 4, Estado: false},
	}
}

func newTestViajesModel() viajesModel {
	m := newViajesModel(nil)
	m.width = 100
	m.height = 30
	m.now = func() time.Time { return time.Date(2025, 7, 13, 12, 0, 0, 0, time.Local) }
	return m
}

func TestViajesLoadingThenList(t *testing.T) {
	m := newTestViajesModel()
	if !strings.Contains(m.View(), "Cargando viajes") {
		t.Errorf("expected loading state:\n%s", m.View())
	}

	m, _ = m.Update(viajesLoadedMsg{viajes: testViajes()})
	view := m.View()
	for _, want := range []string{"Viaje #1", "Viaje #2", "Viaje #3", "12 lugares", "lunes, 14 de julio de 2025, 09:00", "mañana"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestViajesLoadErrorShowsRetry(t *testing.T) {
	m := newTestViajesModel()
	m, _ = m.Update(viajesLoadedMsg{err: &client.HTTPError{StatusCode: http.StatusBadGateway}})
	view := m.View()
	if !strings.Contains(view, booking.MsgLoadTripsFailed) || !strings.Contains(view, "Reintentar") {
		t.Errorf("expected load error with retry:\n%s", view)
	}

	m, _ = m.Update(viajesLoadedMsg{err: errors.New("dial tcp")})
	if !strings.Contains(m.View(), booking.MsgConnection) {
		t.Errorf("expected connection error:\n%s", m.View())
	}

	m, _ = m.Update(runes("r"))
	if !m.loading || m.err != "" {
		t.Error("retry should clear the error and reload")
	}
}

func TestViajesEnterWithoutUserShowsLoginPrompt(t *testing.T) {
	m := newTestViajesModel()
	m, _ = m.Update(viajesLoadedMsg{viajes: testViajes()})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("no form should open without a user")
	}
	if m.notice != booking.MsgLoginToReserve {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestViajesEnterOpensReserva(t *testing.T) {
	m := newTestViajesModel()
	m, _ = m.Update(sessionMsg{user: testAna})
	m, _ = m.Update(viajesLoadedMsg{viajes: testViajes()})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command opening the form")
	}
	open, ok := cmd().(openReservaMsg)
	if !ok {
		t.Fatalf("expected openReservaMsg, got %T", cmd())
	}
	if open.viaje.ID != 1 {
		t.Errorf("opened viaje %d, want 1", open.viaje.ID)
	}
}

func TestViajesNonReservableHaveNoAction(t *testing.T) {
	m := newTestViajesModel()
	m, _ = m.Update(sessionMsg{user: testAna})
	m, _ = m.Update(viajesLoadedMsg{viajes: testViajes()})

	for i := 0; i < 2; i++ {
		m, _ = m.Update(runes("j"))
		if strings.Contains(m.helpKeys(), "reservar") {
			t.Errorf("reserve offered for viaje at %d", m.cursor)
		}
		if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
			t.Errorf("enter on non-reservable viaje at %d returned a command", m.cursor)
		}
	}
	if !strings.Contains(m.View(), "sin reserva disponible") {
		t.Errorf("expected non-reservable hint:\n%s", m.View())
	}
}

func TestViajesCursorClampedOnReload(t *testing.T) {
	m := newTestViajesModel()
	m, _ = m.Update(viajesLoadedMsg{viajes: testViajes()})
	m, _ = m.Update(runes("j"))
	m, _ = m.Update(runes("j"))
	m, _ = m.Update(viajesLoadedMsg{viajes: testViajes()[:1]})
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}
