package main

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/charmbracelet/lipgloss"

	"github.com/puroquilmes/quilmes/internal/config"
	"github.com/puroquilmes/quilmes/internal/devserver"
)

var saludos = [...]string{
	"La ribera te espera. El colectivo también.",
	"Hay lugar para vos en el próximo viaje. Por ahora.",
	"El Museo Roverano abre temprano. Vos, no tanto.",
	"Cerveza, costanera y un asiento con tu nombre.",
	"Quilmes no queda lejos. Queda a un comando.",
	"Los micros salen puntuales. Las reservas, cuando quieras.",
}

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f5c242")).Bold(true)
	quoteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cmdStyle   = lipgloss.NewStyle().Bold(true)
	linkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5b9bd5"))
)

func printHelp(w io.Writer) {
	title := titleStyle.Render("Q U I L M E S")
	quote := quoteStyle.Render(`"` + saludos[rand.Intn(len(saludos))] + `"`)

	commands := []struct{ cmd, desc string }{
		{"quilmes", "Abrir la terminal interactiva"},
		{"quilmes viajes", "Listar los viajes disponibles"},
		{"quilmes reservas", "Listar tus reservas"},
		{"quilmes ticket <id>", "Guardar el pasaje en PDF"},
		{"quilmes cancelar <id>", "Cancelar una reserva"},
		{"quilmes logout", "Cerrar la sesión guardada"},
		{"quilmes web", "Abrir el sitio en el navegador"},
		{"quilmes devserver [addr]", "Servidor de prueba en memoria"},
		{"quilmes --version", "Mostrar la versión"},
		{"quilmes help", "Esta ayuda"},
	}

	fmt.Fprintf(w, "\n  %s\n\n  %s\n\n  Comandos:\n", title, quote)
	for _, c := range commands {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-26s", c.cmd)), dimStyle.Render(c.desc))
	}
	fmt.Fprintf(w, "\n  %s\n", dimStyle.Render("Variables: QUILMES_API_URL, QUILMES_WEB_URL, QUILMES_HTTP_TIMEOUT, QUILMES_DEBUG, QUILMES_HOME"))
	fmt.Fprintf(w, "  %s\n\n", linkStyle.Render(config.DefaultWebURL))
}

func printDevserverBanner(w io.Writer, addr string) {
	fmt.Fprintf(w, "\n%s\n\n", titleStyle.Render("QUILMES devserver"))
	fmt.Fprintf(w, "  %s %s\n", dimStyle.Render("escuchando en"), linkStyle.Render("http://"+addr))
	fmt.Fprintf(w, "  %s %s / %s\n", dimStyle.Render("cliente:"), cmdStyle.Render(devserver.DemoUserEmail), devserver.DemoUserPassword)
	fmt.Fprintf(w, "  %s %s / %s\n\n", dimStyle.Render("admin:  "), cmdStyle.Render(devserver.DemoAdminEmail), devserver.DemoAdminPassword)
	fmt.Fprintf(w, "  %s\n\n", quoteStyle.Render("QUILMES_API_URL=http://"+addr+" quilmes"))
}
