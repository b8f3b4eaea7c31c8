package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/puroquilmes/quilmes/pkg/client"
	"github.com/puroquilmes/quilmes/pkg/domain"
)

// lugaresState is the state machine for place administration.
type lugaresState int

const (
	lsNormal   lugaresState = iota
	lsAdding                // new place form
	lsDeleting              // delete confirmation
)

const (
	lugarNombre = iota
	lugarUbicacion
	lugarDescripcion
)

// -- messages --

type adminLugaresLoadedMsg struct {
	lugares []domain.Lugar
	zonas   []domain.Zona
	err     error
}

type lugarCreatedMsg struct {
	lugar *domain.Lugar
	err   error
}

type lugarDeletedMsg struct {
	id  int64
	err error
}

// -- model --

type lugaresModel struct {
	client    *client.Client
	lugares   []domain.Lugar
	zonas     []domain.Zona
	cursor    int
	state     lugaresState
	form      form
	zonaIdx   int
	loading   bool
	err       string
	statusMsg string
	width     int
	height    int
}

func newLugaresModel(c *client.Client) lugaresModel {
	return lugaresModel{
		client: c,
		form: newForm(
			formField{label: "Nombre"},
			formField{label: "Ubicación"},
			formField{label: "Descripción"},
		),
	}
}

func (m lugaresModel) Init() tea.Cmd {
	return m.load()
}

func (m lugaresModel) load() tea.Cmd {
	c := m.client
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		zonas, err := c.ListZones(ctx)
		if err != nil {
			return adminLugaresLoadedMsg{err: err}
		}
		lugares, err := c.ListPlaces(ctx)
		return adminLugaresLoadedMsg{lugares: lugares, zonas: zonas, err: err}
	}
}

func (m lugaresModel) Update(msg tea.Msg) (lugaresModel, tea.Cmd) {
	switch msg := msg.(type) {
	case adminLugaresLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = fmt.Sprintf("no se pudieron cargar los lugares: %v", msg.err)
			return m, nil
		}
		m.err = ""
		m.lugares = msg.lugares
		m.zonas = msg.zonas
		m.cursor = clampCursor(m.cursor, len(m.lugares))
		m.zonaIdx = clampCursor(m.zonaIdx, len(m.zonas))
		return m, nil

	case lugarCreatedMsg:
		if msg.err != nil {
			m.statusMsg = "no se pudo crear: " + errText(msg.err)
			return m, nil
		}
		m.state = lsNormal
		m.form.reset()
		m.statusMsg = "lugar creado"
		return m, m.load()

	case lugarDeletedMsg:
		m.state = lsNormal
		if msg.err != nil {
			m.statusMsg = "no se pudo eliminar: " + errText(msg.err)
			return m, nil
		}
		for i, l := range m.lugares {
			if l.ID == msg.id {
				m.lugares = append(m.lugares[:i], m.lugares[i+1:]...)
				break
			}
		}
		m.cursor = clampCursor(m.cursor, len(m.lugares))
		m.statusMsg = "lugar eliminado"
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		switch m.state {
		case lsAdding:
			return m.handleKeyAdding(msg)
		case lsDeleting:
			return m.handleKeyDeleting(msg)
		}
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.lugares)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "a":
			m.state = lsAdding
			m.form.reset()
		case "d":
			if m.cursor < len(m.lugares) {
				m.state = lsDeleting
			}
		case "r":
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

func (m lugaresModel) handleKeyAdding(msg tea.KeyMsg) (lugaresModel, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.form.next()
	case "shift+tab":
		m.form.prev()
	case "ctrl+n":
		if len(m.zonas) > 0 {
			m.zonaIdx = (m.zonaIdx + 1) % len(m.zonas)
		}
	case "enter":
		nombre := m.form.value(lugarNombre)
		if nombre == "" {
			m.statusMsg = "el nombre es obligatorio"
			return m, nil
		}
		if len(m.zonas) == 0 {
			m.statusMsg = "no hay zonas cargadas"
			return m, nil
		}
		req := client.CreatePlaceRequest{
			Nombre:      nombre,
			Ubicacion:   m.form.value(lugarUbicacion),
			Descripcion: m.form.value(lugarDescripcion),
			ZonaID:      m.zonas[m.zonaIdx].ID,
		}
		c := m.client
		return m, func() tea.Msg {
			lugar, err := c.CreatePlace(context.Background(), req)
			return lugarCreatedMsg{lugar: lugar, err: err}
		}
	case "esc":
		m.state = lsNormal
		m.form.reset()
	default:
		m.form.edit(msg.String())
	}
	return m, nil
}

func (m lugaresModel) handleKeyDeleting(msg tea.KeyMsg) (lugaresModel, tea.Cmd) {
	switch msg.String() {
	case "s", "S", "y", "Y":
		if m.cursor < len(m.lugares) {
			id := m.lugares[m.cursor].ID
			c := m.client
			return m, func() tea.Msg {
				return lugarDeletedMsg{id: id, err: c.DeletePlace(context.Background(), id)}
			}
		}
		m.state = lsNormal
	case "n", "N", "esc":
		m.state = lsNormal
	}
	return m, nil
}

func (m lugaresModel) helpKeys() string {
	switch m.state {
	case lsAdding:
		return helpEntry("tab", "campo") + "  " + helpEntry("ctrl+n", "zona") + "  " + helpEntry("enter", "guardar") + "  " + helpEntry("esc", "cancelar")
	case lsDeleting:
		return helpEntry("s", "confirmar") + "  " + helpEntry("n", "volver")
	}
	return helpEntry("j/k", "nav") + "  " + helpEntry("a", "agregar") + "  " + helpEntry("d", "eliminar") + "  " + helpEntry("r", "actualizar") + "  " + helpEntry("q", "salir")
}

func (m lugaresModel) View() string {
	var sb strings.Builder
	sb.WriteString("\n " + sectionHeaderStyle.Render(fmt.Sprintf("── LUGARES %d ──", len(m.lugares))) + "\n")

	if m.state == lsAdding {
		sb.WriteString("\n")
		sb.WriteString(m.form.View())
		zona := dimStyle.Render("sin zonas")
		if len(m.zonas) > 0 {
			zona = accentStyle.Render(m.zonas[m.zonaIdx].Nombre)
		}
		sb.WriteString("     " + inputPromptStyle.Render("Zona:") + " " + zona + "\n")
		if m.statusMsg != "" {
			sb.WriteString("\n   " + errStyle.Render(m.statusMsg) + "\n")
		}
		return sb.String()
	}

	if m.err != "" {
		sb.WriteString("   " + errStyle.Render(m.err) + "  " + helpEntry("r", "Reintentar") + "\n")
		return sb.String()
	}
	if m.loading && len(m.lugares) == 0 {
		sb.WriteString("   " + dimStyle.Render("Cargando lugares...") + "\n")
		return sb.String()
	}
	if len(m.lugares) == 0 {
		sb.WriteString("   " + dimStyle.Render("no hay lugares · a para agregar uno") + "\n")
	}

	for i, l := range m.lugares {
		cursor := "  "
		name := normalStyle.Render(truncStr(l.Nombre, 32))
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			name = selectedStyle.Render(truncStr(l.Nombre, 32))
		}
		zona := l.ZonaNombre()
		if zona == "" {
			zona = "sin zona"
		}
		fmt.Fprintf(&sb, " %s%s  %s\n", cursor, name, metaStyle.Render(zona))
		if i == m.cursor && m.state == lsDeleting {
			sb.WriteString("   " + errStyle.Render("¿eliminar este lugar? ") +
				accentStyle.Render("s") + dimStyle.Render("/") + dimStyle.Render("n") + "\n")
		}
	}

	if m.statusMsg != "" {
		sb.WriteString("\n " + okStyle.Render(m.statusMsg) + "\n")
	}
	return sb.String()
}

// errText prefers the backend's message over the wrapped error chain.
func errText(err error) string {
	if msg, ok := client.ServerMessage(err); ok {
		return msg
	}
	return err.Error()
}
