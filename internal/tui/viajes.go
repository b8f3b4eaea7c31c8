package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/puroquilmes/quilmes/pkg/booking"
	"github.com/puroquilmes/quilmes/pkg/client"
	"github.com/puroquilmes/quilmes/pkg/domain"
)

type viajesLoadedMsg struct {
	viajes []domain.Viaje
	err    error
}

// openReservaMsg asks the app to open the reservation form for a trip.
type openReservaMsg struct {
	viaje domain.Viaje
}

type viajesModel struct {
	client  *client.Client
	user    *domain.User
	viajes  []domain.Viaje
	cursor  int
	loading bool
	loaded  bool
	err     string
	notice  string
	width   int
	height  int
	now     func() time.Time
}

func newViajesModel(c *client.Client) viajesModel {
	return viajesModel{client: c, loading: true, now: time.Now}
}

func (m viajesModel) Init() tea.Cmd {
	return m.fetch()
}

func (m viajesModel) fetch() tea.Cmd {
	c := m.client
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		viajes, err := booking.FetchAvailableTrips(context.Background(), c)
		return viajesLoadedMsg{viajes: viajes, err: err}
	}
}

// reload marks the list as loading and fetches it again.
func (m *viajesModel) reload() tea.Cmd {
	m.loading = true
	m.err = ""
	return m.fetch()
}

func (m viajesModel) selected() (domain.Viaje, bool) {
	if m.cursor < 0 || m.cursor >= len(m.viajes) {
		return domain.Viaje{}, false
	}
	return m.viajes[m.cursor], true
}

func (m viajesModel) Update(msg tea.Msg) (viajesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case viajesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = booking.LoadMessage(msg.err, booking.MsgLoadTripsFailed)
			return m, nil
		}
		m.loaded = true
		m.err = ""
		m.viajes = msg.viajes
		m.cursor = clampCursor(m.cursor, len(m.viajes))
		return m, nil

	case sessionMsg:
		m.user = msg.user
		m.notice = ""
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.notice = ""
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.viajes)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			cmd := m.reload()
			return m, cmd
		case "enter":
			v, ok := m.selected()
			if !ok || !v.Reservable() {
				return m, nil
			}
			if m.user == nil {
				m.notice = booking.MsgLoginToReserve
				return m, nil
			}
			return m, func() tea.Msg { return openReservaMsg{viaje: v} }
		}
	}
	return m, nil
}

func (m viajesModel) helpKeys() string {
	keys := []string{helpEntry("j/k", "nav")}
	if v, ok := m.selected(); ok && v.Reservable() && m.user != nil {
		keys = append(keys, helpEntry("enter", "reservar"))
	}
	keys = append(keys, helpEntry("r", "actualizar"), helpEntry("h", "ayuda"), helpEntry("q", "salir"))
	return strings.Join(keys, "  ")
}

func (m viajesModel) View() string {
	if m.loading && !m.loaded {
		return " " + dimStyle.Render("Cargando viajes...")
	}
	if m.err != "" {
		return " " + errStyle.Render(m.err) + "\n\n " + helpEntry("r", "Reintentar")
	}

	var sb strings.Builder
	sb.WriteString("\n " + sectionHeaderStyle.Render(fmt.Sprintf("── VIAJES DISPONIBLES %d ──", len(m.viajes))) + "\n")

	if m.user == nil {
		sb.WriteString(" " + goldStyle.Render(booking.MsgLoginToReserve) + "  " + helpEntry("l", "iniciar sesión") + "\n")
	}

	if len(m.viajes) == 0 {
		sb.WriteString("\n   " + dimStyle.Render("No hay viajes disponibles por el momento") + "\n")
		return sb.String()
	}

	now := m.now()
	for i, v := range m.viajes {
		active := i == m.cursor
		cursor := "  "
		title := normalStyle.Render(fmt.Sprintf("Viaje #%d", v.Numero))
		if active {
			cursor = accentStyle.Render("▸") + " "
			title = selectedStyle.Render(fmt.Sprintf("Viaje #%d", v.Numero))
		}
		seats := seatsStyle(v.LugarDisponible).Render(fmt.Sprintf("%d lugares", v.LugarDisponible))
		when := metaStyle.Render(formatUntil(v.Fecha.Time, now))
		fmt.Fprintf(&sb, " %s%s  %s  %s  %s\n", cursor, title, dimStyle.Render(v.Fecha.Largo()), when, seats)

		if active {
			detail := []string{
				metaStyle.Render(fmt.Sprintf("Bus #%d", v.Bus.ID)),
				estadoStyle(v.Estado).Render(v.EstadoLabel()),
			}
			if !v.Reservable() {
				detail = append(detail, errStyle.Render("sin reserva disponible"))
			}
			sb.WriteString("     " + strings.Join(detail, dimStyle.Render(" · ")) + "\n")
		}
	}

	if m.notice != "" {
		sb.WriteString("\n " + goldStyle.Render(m.notice) + "\n")
	}
	return sb.String()
}
