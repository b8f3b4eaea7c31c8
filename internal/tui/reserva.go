package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/puroquilmes/quilmes/pkg/booking"
	"github.com/puroquilmes/quilmes/pkg/client"
	"github.com/puroquilmes/quilmes/pkg/domain"
)

// reservaSubmittedMsg carries the backend's answer to a reservation.
type reservaSubmittedMsg struct {
	err error
}

// reservaFormModel is the overlay opened from the trip list. It drives a
// booking.Workflow; the request itself runs as a command.
type reservaFormModel struct {
	client *client.Client
	user   *domain.User
	wf     booking.Workflow
	closed bool
}

func newReservaFormModel(c *client.Client, v domain.Viaje, u *domain.User) reservaFormModel {
	return reservaFormModel{client: c, user: u, wf: booking.NewWorkflow(v)}
}

func (m reservaFormModel) Update(msg tea.Msg) (reservaFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reservaSubmittedMsg:
		m.wf.Finish(msg.err)
		return m, nil

	case tea.KeyMsg:
		if m.wf.Busy() {
			return m, nil
		}
		switch msg.String() {
		case "j", "down", "+":
			m.wf.SetPasajeros(m.wf.Pasajeros + 1)
		case "k", "up", "-":
			m.wf.SetPasajeros(m.wf.Pasajeros - 1)
		case "esc":
			m.closed = true
		case "enter":
			req, err := m.wf.Begin(m.user)
			if err != nil {
				return m, nil
			}
			c := m.client
			return m, func() tea.Msg {
				return reservaSubmittedMsg{err: c.CreateReservation(context.Background(), req)}
			}
		}
	}
	return m, nil
}

func (m reservaFormModel) helpKeys() string {
	if m.wf.Busy() {
		return helpEntry("…", "procesando")
	}
	return helpEntry("j/k", "pasajeros") + "  " + helpEntry("enter", "confirmar") + "  " + helpEntry("esc", "volver")
}

func (m reservaFormModel) View() string {
	v := m.wf.Viaje
	var sb strings.Builder

	sb.WriteString("\n " + sectionHeaderStyle.Render(fmt.Sprintf("── RESERVAR VIAJE #%d ──", v.Numero)) + "\n\n")
	fmt.Fprintf(&sb, "   %s %s\n", metaStyle.Render("Fecha:     "), normalStyle.Render(v.Fecha.Largo()))
	fmt.Fprintf(&sb, "   %s %s\n", metaStyle.Render("Disponibles:"), seatsStyle(v.LugarDisponible).Render(fmt.Sprintf("%d", v.LugarDisponible)))
	fmt.Fprintf(&sb, "   %s %s\n\n", metaStyle.Render("Bus:       "), normalStyle.Render(fmt.Sprintf("#%d", v.Bus.ID)))

	sb.WriteString("   " + inputPromptStyle.Render("Cantidad de pasajeros") + "\n")
	for _, n := range booking.PassengerOptions(v) {
		label := fmt.Sprintf("%d pasajero(s)", n)
		if n == m.wf.Pasajeros {
			sb.WriteString("   " + accentStyle.Render("▸") + " " + selectedStyle.Render(label) + "\n")
		} else {
			sb.WriteString("     " + dimStyle.Render(label) + "\n")
		}
	}

	sb.WriteString("\n   " + goldStyle.Render("Importante:") + " " +
		dimStyle.Render("puedes cancelar tu reserva hasta 24 horas antes del viaje.") + "\n")

	switch m.wf.State {
	case booking.Submitting:
		sb.WriteString("\n   " + accentStyle.Render("Procesando...") + "\n")
	case booking.Failed:
		sb.WriteString("\n   " + errStyle.Render(m.wf.Message) + "\n")
	default:
		sb.WriteString("\n   " + helpEntry("enter", "Confirmar Reserva") + "\n")
	}
	return sb.String()
}
