package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/puroquilmes/quilmes/pkg/domain"
)

const noDisponible = "No disponible"

type perfilModel struct {
	user   *domain.User
	width  int
	height int
}

func (m perfilModel) Update(msg tea.Msg) (perfilModel, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionMsg:
		m.user = msg.user
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m perfilModel) helpKeys() string {
	if m.user == nil {
		return helpEntry("l", "iniciar sesión") + "  " + helpEntry("u", "registrarse") + "  " + helpEntry("q", "salir")
	}
	return helpEntry("3", "mis reservas") + "  " + helpEntry("o", "cerrar sesión") + "  " + helpEntry("w", "sitio web") + "  " + helpEntry("q", "salir")
}

func (m perfilModel) View() string {
	if m.user == nil {
		return " " + goldStyle.Render("Inicia sesión para ver tu perfil")
	}
	u := m.user

	var sb strings.Builder
	initials := u.Initials()
	if initials == "" {
		initials = "?"
	}
	sb.WriteString("\n " + avatarStyle.Render(initials) + "  " + selectedStyle.Render(u.FullName()) + "\n")
	sb.WriteString("     " + metaStyle.Render(u.Email) + "\n")

	sb.WriteString("\n " + sectionHeaderStyle.Render("── DATOS PERSONALES ──") + "\n")
	rows := []struct{ label, value string }{
		{"Nombre", orNoDisponible(u.Nombre)},
		{"Apellido", orNoDisponible(u.Apellido)},
		{"Email", orNoDisponible(u.Email)},
		{"DNI", numOrNoDisponible(u.DNI)},
		{"Teléfono", numOrNoDisponible(u.Telefono)},
		{"Rol", orNoDisponible(u.Rol)},
	}
	for _, r := range rows {
		fmt.Fprintf(&sb, "   %s %s\n", metaStyle.Render(fmt.Sprintf("%-9s", r.label)), normalStyle.Render(r.value))
	}
	estado := "Inactivo"
	if u.Active() {
		estado = "Activo"
	}
	fmt.Fprintf(&sb, "   %s %s\n", metaStyle.Render(fmt.Sprintf("%-9s", "Estado")), estadoStyle(u.Active()).Render(estado))

	if !u.HasFullProfile() {
		sb.WriteString("\n   " + dimStyle.Render("Algunos datos no están disponibles: se muestran los de la sesión.") + "\n")
	}
	return sb.String()
}

func orNoDisponible(s string) string {
	if strings.TrimSpace(s) == "" {
		return noDisponible
	}
	return s
}

func numOrNoDisponible(n *int64) string {
	if n == nil || *n <= 0 {
		return noDisponible
	}
	return strconv.FormatInt(*n, 10)
}
