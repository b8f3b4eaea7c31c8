package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Shimmer animation for the QUILMES logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "Q U I L M E S" as a slow wave running from deep
// river blue (#12305a) to the beer-label gold (#f5c242).
func renderShimmerLogo(frame int) string {
	const text = "QUILMES"
	n := len(text)
	t := float64(frame)

	var out strings.Builder
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)
		b = b*0.75 + math.Sin(t*0.035)*0.12 + 0.18
		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(18 + b*(245-18))
		g := clampByte(48 + b*(194-48))
		bl := clampByte(90 + b*(66-90))

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, bl)))
		out.WriteString(s.Render(string(text[i])))
		if i < n-1 {
			out.WriteString("  ")
		}
	}
	return out.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5b9bd5"))

	goldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f5c242"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#5b9bd5")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0f2a12")).
			Background(lipgloss.Color("#4ade80")).
			Bold(true).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2a3a55")).
			Padding(0, 1)

	avatarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#12305a")).
			Background(lipgloss.Color("#f5c242")).
			Bold(true).
			Padding(0, 1)
)

// estadoStyle colors Activa/Cancelada and Activo/Inactivo labels.
func estadoStyle(activo bool) lipgloss.Style {
	if activo {
		return okStyle
	}
	return errStyle
}

// seatsStyle colors a free-seat count: red when sold out, gold when few remain.
func seatsStyle(n int) lipgloss.Style {
	switch {
	case n <= 0:
		return errStyle
	case n <= 3:
		return goldStyle.Bold(true)
	default:
		return normalStyle
	}
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	url   string
}

func helpItems(webURL string) []helpItem {
	host := strings.TrimPrefix(strings.TrimPrefix(webURL, "https://"), "http://")
	return []helpItem{
		{"Sitio web", host, webURL},
		{"Reservar en la web", host + "/bus-reservation", webURL + "/bus-reservation"},
		{"Crear cuenta", host + "/register", webURL + "/register"},
	}
}

// helpView renders the interactive help overlay with a cursor.
func helpView(items []helpItem, cursor int) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f5c242")).
		Bold(true).
		Render("Q U I L M E S")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Lugares, paseos y viajes en bus por Quilmes.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	cursorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f5c242"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	commands := []struct{ cmd, desc string }{
		{"quilmes", "Abrir la aplicación (TUI)"},
		{"quilmes viajes", "Listar viajes disponibles"},
		{"quilmes reservas", "Listar tus reservas"},
		{"quilmes ticket <id>", "Guardar el pasaje en PDF"},
		{"quilmes cancelar <id>", "Cancelar una reserva"},
		{"quilmes logout", "Cerrar sesión"},
		{"quilmes devserver", "Backend de prueba en memoria"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n  %s\n\n", title, tagline)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Comandos"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Enlaces (enter para abrir)"))
	for i, item := range items {
		label := cmdStyle.Render(fmt.Sprintf("%-22s", item.label))
		prefix := "    "
		if i == cursor {
			label = cursorStyle.Render(fmt.Sprintf("%-22s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(item.desc))
	}
	return b.String()
}
