package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/puroquilmes/quilmes/internal/ticket"
	"github.com/puroquilmes/quilmes/pkg/booking"
	"github.com/puroquilmes/quilmes/pkg/client"
	"github.com/puroquilmes/quilmes/pkg/domain"
)

// reservasState is the state machine for the reservation list.
type reservasState int

const (
	rsNormal     reservasState = iota
	rsConfirming               // cancel confirmation on the selected row
)

// -- messages --

// reservasLoadedMsg carries the list fetched for userID.
type reservasLoadedMsg struct {
	userID   int64
	reservas []domain.Reserva
	err      error
}

type reservaCancelledMsg struct {
	id  int64
	res booking.CancelResult
	err error
}

type reservaCopyMsg struct{ err error }

type ticketSavedMsg struct {
	path string
	err  error
}

// -- model --

type reservasModel struct {
	client     *client.Client
	user       *domain.User
	ticketsDir string
	reservas   []domain.Reserva
	cursor     int
	state      reservasState
	loading    bool
	loaded     bool
	cancelling bool
	err        string
	alert      string
	statusMsg  string
	width      int
	height     int
}

func newReservasModel(c *client.Client, ticketsDir string) reservasModel {
	return reservasModel{client: c, ticketsDir: ticketsDir}
}

func (m reservasModel) fetch() tea.Cmd {
	c, u := m.client, m.user
	if c == nil || u == nil {
		return nil
	}
	return func() tea.Msg {
		reservas, err := booking.FetchUserReservations(context.Background(), c, u)
		return reservasLoadedMsg{userID: u.ID, reservas: reservas, err: err}
	}
}

// reload re-fetches the list for the current user. Without a user it does
// nothing.
func (m *reservasModel) reload() tea.Cmd {
	if m.user == nil {
		return nil
	}
	m.loading = true
	m.err = ""
	return m.fetch()
}

func (m reservasModel) selected() (domain.Reserva, bool) {
	if m.cursor < 0 || m.cursor >= len(m.reservas) {
		return domain.Reserva{}, false
	}
	return m.reservas[m.cursor], true
}

func (m reservasModel) Update(msg tea.Msg) (reservasModel, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionMsg:
		m.user = msg.user
		m.reservas = nil
		m.loaded = false
		m.cursor = 0
		m.state = rsNormal
		m.alert = ""
		cmd := m.reload()
		return m, cmd

	case reservasLoadedMsg:
		// A fetch started before a logout or account switch.
		if m.user == nil || msg.userID != m.user.ID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = booking.LoadMessage(msg.err, booking.MsgLoadReservasError)
			return m, nil
		}
		m.loaded = true
		m.err = ""
		m.reservas = msg.reservas
		m.cursor = clampCursor(m.cursor, len(m.reservas))
		return m, nil

	case reservaCancelledMsg:
		m.cancelling = false
		if msg.err != nil {
			m.alert = booking.CancelMessage(msg.err)
			return m, nil
		}
		if msg.res.Aborted {
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Reserva #%d cancelada", msg.id)
		if msg.res.RefreshErr != nil {
			m.err = booking.LoadMessage(msg.res.RefreshErr, booking.MsgLoadReservasError)
			return m, nil
		}
		m.loaded = true
		m.reservas = msg.res.Reservas
		m.cursor = clampCursor(m.cursor, len(m.reservas))
		return m, nil

	case reservaCopyMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("no se pudo copiar: %v", msg.err)
		} else {
			m.statusMsg = "¡copiado!"
		}
		return m, nil

	case ticketSavedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("no se pudo generar el pasaje: %v", msg.err)
		} else {
			m.statusMsg = "pasaje guardado en " + msg.path
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		m.alert = ""
		return m.handleKey(msg)
	}
	return m, nil
}

func (m reservasModel) handleKey(msg tea.KeyMsg) (reservasModel, tea.Cmd) {
	if m.state == rsConfirming {
		return m.handleKeyConfirming(msg)
	}

	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.reservas)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "r":
		cmd := m.reload()
		return m, cmd
	case "x":
		if r, ok := m.selected(); ok && r.Cancellable() && !m.cancelling {
			m.state = rsConfirming
		}
	case "c":
		if r, ok := m.selected(); ok {
			summary := booking.Summary(r)
			return m, func() tea.Msg {
				return reservaCopyMsg{err: clipboard.WriteAll(summary)}
			}
		}
	case "p":
		r, ok := m.selected()
		if !ok || m.user == nil {
			return m, nil
		}
		dir, u := m.ticketsDir, *m.user
		return m, func() tea.Msg {
			path, err := ticket.Write(dir, r, u, time.Now())
			return ticketSavedMsg{path: path, err: err}
		}
	}
	return m, nil
}

func (m reservasModel) handleKeyConfirming(msg tea.KeyMsg) (reservasModel, tea.Cmd) {
	switch msg.String() {
	case "s", "S", "y", "Y":
		m.state = rsNormal
		r, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.cancelling = true
		c, u := m.client, m.user
		return m, func() tea.Msg {
			// The s/n prompt already asked.
			res, err := booking.Cancel(context.Background(), c, u, r.ID, booking.Confirmed)
			return reservaCancelledMsg{id: r.ID, res: res, err: err}
		}
	case "n", "N", "esc":
		m.state = rsNormal
	}
	return m, nil
}

func (m reservasModel) helpKeys() string {
	if m.state == rsConfirming {
		return helpEntry("s", "confirmar") + "  " + helpEntry("n", "volver")
	}
	if m.user == nil {
		return helpEntry("l", "iniciar sesión") + "  " + helpEntry("h", "ayuda") + "  " + helpEntry("q", "salir")
	}
	keys := []string{helpEntry("j/k", "nav")}
	if r, ok := m.selected(); ok {
		if r.Cancellable() {
			keys = append(keys, helpEntry("x", "cancelar"), helpEntry("p", "pasaje pdf"))
		}
		keys = append(keys, helpEntry("c", "copiar"))
	}
	keys = append(keys, helpEntry("r", "actualizar"), helpEntry("q", "salir"))
	return strings.Join(keys, "  ")
}

func (m reservasModel) View() string {
	if m.user == nil {
		return " " + goldStyle.Render("Debes estar logueado para ver tus reservas")
	}
	if m.loading && !m.loaded {
		return " " + dimStyle.Render("Cargando reservas...")
	}
	if m.err != "" {
		return " " + errStyle.Render(m.err) + "\n\n " + helpEntry("r", "Reintentar")
	}

	var sb strings.Builder
	sb.WriteString("\n " + sectionHeaderStyle.Render(fmt.Sprintf("── MIS RESERVAS %d ──", len(m.reservas))) + "\n")

	if len(m.reservas) == 0 {
		sb.WriteString("   " + dimStyle.Render("No tienes reservas activas") + "\n")
	}

	for i, r := range m.reservas {
		active := i == m.cursor
		cursor := "  "
		title := normalStyle.Render(fmt.Sprintf("Reserva #%d", r.ID))
		if active {
			cursor = accentStyle.Render("▸") + " "
			title = selectedStyle.Render(fmt.Sprintf("Reserva #%d", r.ID))
		}
		fmt.Fprintf(&sb, " %s%s  %s  %s\n", cursor, title,
			metaStyle.Render(fmt.Sprintf("Viaje #%d", r.Viaje.Numero)),
			estadoStyle(r.Estado).Render(r.EstadoLabel()))
		fmt.Fprintf(&sb, "     %s\n", dimStyle.Render(r.Viaje.Fecha.Largo()))
		fmt.Fprintf(&sb, "     %s\n", metaStyle.Render(fmt.Sprintf("%d pasajero(s) · Bus #%d · %d lugares disponibles",
			r.CantidadPasajeros, r.Viaje.Bus.ID, r.Viaje.LugarDisponible)))

		if active && m.state == rsConfirming {
			sb.WriteString("     " + errStyle.Render(booking.CancelPrompt+" ") +
				accentStyle.Render("s") + dimStyle.Render("/") + dimStyle.Render("n") + "\n")
		}
		if active && m.cancelling {
			sb.WriteString("     " + accentStyle.Render("Cancelando...") + "\n")
		}
	}

	if m.alert != "" {
		sb.WriteString("\n " + errStyle.Render(m.alert) + "\n")
	}
	if m.statusMsg != "" {
		sb.WriteString("\n " + okStyle.Render(m.statusMsg) + "\n")
	}
	return sb.String()
}
