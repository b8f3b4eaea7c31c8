package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/puroquilmes/quilmes/pkg/client"
	"github.com/puroquilmes/quilmes/pkg/domain"
)

// carouselInterval is how often the featured places carousel advances.
const carouselInterval = 6 * time.Second

type carouselTickMsg time.Time

func carouselTickCmd() tea.Cmd {
	return tea.Tick(carouselInterval, func(t time.Time) tea.Msg {
		return carouselTickMsg(t)
	})
}

type lugaresLoadedMsg struct {
	lugares []domain.Lugar
	err     error
}

type inicioModel struct {
	client  *client.Client
	lugares []domain.Lugar
	idx     int
	loading bool
	err     string
	width   int
	height  int
}

func newInicioModel(c *client.Client) inicioModel {
	return inicioModel{client: c, loading: true}
}

func (m inicioModel) Init() tea.Cmd {
	return tea.Batch(m.load(), carouselTickCmd())
}

func (m inicioModel) load() tea.Cmd {
	c := m.client
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		lugares, err := c.ListPlaces(context.Background())
		return lugaresLoadedMsg{lugares: lugares, err: err}
	}
}

func (m inicioModel) Update(msg tea.Msg) (inicioModel, tea.Cmd) {
	switch msg := msg.(type) {
	case lugaresLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = "No se pudieron cargar los lugares"
			return m, nil
		}
		m.err = ""
		m.lugares = msg.lugares
		if m.idx >= len(m.lugares) {
			m.idx = 0
		}
		return m, nil

	case carouselTickMsg:
		m.advance(1)
		return m, carouselTickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "right", ">":
			m.advance(1)
		case "left", "<":
			m.advance(-1)
		case "r":
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

func (m *inicioModel) advance(step int) {
	n := len(m.lugares)
	if n == 0 {
		return
	}
	m.idx = ((m.idx+step)%n + n) % n
}

func (m inicioModel) View() string {
	var sb strings.Builder
	sb.WriteString("\n " + sectionHeaderStyle.Render("── LUGARES DESTACADOS ──") + "\n")

	switch {
	case m.loading && len(m.lugares) == 0:
		sb.WriteString("   " + dimStyle.Render("Cargando lugares...") + "\n")
	case m.err != "":
		sb.WriteString("   " + errStyle.Render(m.err) + "  " + helpEntry("r", "Reintentar") + "\n")
	case len(m.lugares) == 0:
		sb.WriteString("   " + dimStyle.Render("Todavía no hay lugares publicados") + "\n")
	default:
		sb.WriteString(m.viewCard(m.lugares[m.idx]) + "\n")
		sb.WriteString("   " + m.viewDots() + "\n")
	}

	sb.WriteString("\n " + sectionHeaderStyle.Render("── ELEGÍ TU DESTINO TURÍSTICO ──") + "\n")
	sb.WriteString("   " + goldStyle.Render("Paseos en bus") + " " + dimStyle.Render("por la ciudad y la ribera.") + "  " +
		helpEntry("2", "ver viajes") + "\n")
	return sb.String()
}

func (m inicioModel) viewCard(l domain.Lugar) string {
	w := m.width - 6
	if w < 30 {
		w = 30
	}
	if w > 72 {
		w = 72
	}

	var lines []string
	lines = append(lines, selectedStyle.Render(truncStr(l.Nombre, w)))
	var meta []string
	if l.TipoLugar != nil && l.TipoLugar.Nombre != "" {
		meta = append(meta, l.TipoLugar.Nombre)
	}
	if z := l.ZonaNombre(); z != "" {
		meta = append(meta, z)
	}
	if len(meta) > 0 {
		lines = append(lines, accentStyle.Render(strings.Join(meta, " · ")))
	}
	if l.Ubicacion != "" {
		lines = append(lines, metaStyle.Render(truncStr(l.Ubicacion, w)))
	}
	if l.Descripcion != "" {
		lines = append(lines, dimStyle.Width(w).Render(l.Descripcion))
	}
	return lipgloss.NewStyle().MarginLeft(3).Render(cardStyle.Width(w).Render(strings.Join(lines, "\n")))
}

func (m inicioModel) viewDots() string {
	dots := make([]string, len(m.lugares))
	for i := range m.lugares {
		if i == m.idx {
			dots[i] = goldStyle.Render("●")
		} else {
			dots[i] = metaStyle.Render("○")
		}
	}
	return strings.Join(dots, " ")
}
