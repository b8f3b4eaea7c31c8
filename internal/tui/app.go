package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/puroquilmes/quilmes/internal/browser"
	"github.com/puroquilmes/quilmes/pkg/booking"
	"github.com/puroquilmes/quilmes/pkg/client"
	"github.com/puroquilmes/quilmes/pkg/domain"
	"github.com/puroquilmes/quilmes/pkg/session"
)

type view int

const (
	viewInicio view = iota
	viewViajes
	viewReservas
	viewPerfil
	viewLugares
	viewLogin
	viewRegistro
)

// bannerDuration is how long the reservation success banner stays up.
const bannerDuration = 3 * time.Second

// sessionMsg carries the session user after a check, login or logout.
// Every sub-model receives it.
type sessionMsg struct {
	user *domain.User
}

type bannerHideMsg struct{ seq int }

func bannerHideCmd(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return bannerHideMsg{seq: seq}
	})
}

// Options configures the application beyond its API client.
type Options struct {
	Store      *session.Store
	Jar        *client.FileJar // cleared on logout when set
	WebURL     string
	TicketsDir string
}

// App is the root Bubbletea model.
type App struct {
	client      *client.Client
	opts        Options
	view        view
	inicio      inicioModel
	viajes      viajesModel
	reservas    reservasModel
	perfil      perfilModel
	lugares     lugaresModel
	login       loginModel
	registro    registroModel
	form        reservaFormModel
	formOpen    bool
	helpOpen    bool
	helpCursor  int
	user        *domain.User
	checking    bool
	banner      string
	bannerSeq   int
	bannerDelay time.Duration
	statusMsg   string
	width       int
	height      int
	frame       int // logo shimmer animation frame
}

// NewApp creates a new TUI application.
func NewApp(c *client.Client, opts Options) App {
	return App{
		client:      c,
		opts:        opts,
		checking:    opts.Store != nil,
		bannerDelay: bannerDuration,
		inicio:      newInicioModel(c),
		viajes:      newViajesModel(c),
		reservas:    newReservasModel(c, opts.TicketsDir),
		lugares:     newLugaresModel(c),
		login:       newLoginModel(opts.Store),
		registro:    newRegistroModel(c),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.inicio.Init(), a.viajes.Init(), shimmerTickCmd(), a.checkSession())
}

func (a App) checkSession() tea.Cmd {
	st := a.opts.Store
	if st == nil {
		return nil
	}
	return func() tea.Msg {
		st.CheckStatus(context.Background())
		return sessionMsg{user: st.User()}
	}
}

func (a App) logout() tea.Cmd {
	st, jar := a.opts.Store, a.opts.Jar
	return func() tea.Msg {
		if st != nil {
			st.Logout(context.Background())
		}
		if jar != nil {
			if err := jar.Clear(); err != nil {
				log.Printf("tui: clear cookies: %v", err)
			}
		}
		return sessionMsg{}
	}
}

// broadcast hands msg to every sub-model and batches their commands.
func (a App) broadcast(msg tea.Msg) (App, tea.Cmd) {
	cmds := make([]tea.Cmd, 7)
	a.inicio, cmds[0] = a.inicio.Update(msg)
	a.viajes, cmds[1] = a.viajes.Update(msg)
	a.reservas, cmds[2] = a.reservas.Update(msg)
	a.perfil, cmds[3] = a.perfil.Update(msg)
	a.lugares, cmds[4] = a.lugares.Update(msg)
	a.login, cmds[5] = a.login.Update(msg)
	a.registro, cmds[6] = a.registro.Update(msg)
	return a, tea.Batch(cmds...)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + status(1) + help(1) = 5 lines
		return a.broadcast(tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5})

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case sessionMsg:
		return a.setUser(msg.user)

	case loginDoneMsg:
		a.login, _ = a.login.Update(msg)
		if !msg.ok {
			return a, nil
		}
		a.view = viewViajes
		return a.setUser(msg.user)

	case openReservaMsg:
		a.form = newReservaFormModel(a.client, msg.viaje, a.user)
		a.formOpen = true
		return a, nil

	case reservaSubmittedMsg:
		a.form, _ = a.form.Update(msg)
		if a.form.wf.State != booking.Succeeded {
			return a, nil
		}
		a.formOpen = false
		a.bannerSeq++
		a.banner = booking.MsgReservaExitosa
		a.view = viewReservas
		cmd := tea.Batch(bannerHideCmd(a.bannerSeq, a.bannerDelay), a.reservas.reload(), a.viajes.reload())
		return a, cmd

	case bannerHideMsg:
		if msg.seq == a.bannerSeq {
			a.banner = ""
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a.broadcast(msg)
}

func (a App) setUser(u *domain.User) (tea.Model, tea.Cmd) {
	a.checking = false
	a.user = u
	if u == nil {
		a.formOpen = false
		if a.view == viewLugares {
			a.view = viewInicio
		}
	}
	return a.broadcast(sessionMsg{user: u})
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	a.statusMsg = ""

	// Help overlay captures all keys when open
	if a.helpOpen {
		items := helpItems(a.opts.WebURL)
		switch key {
		case "h", "esc":
			a.helpOpen = false
		case "q", "ctrl+c":
			return a, tea.Quit
		case "j", "down":
			if a.helpCursor < len(items)-1 {
				a.helpCursor++
			}
		case "k", "up":
			if a.helpCursor > 0 {
				a.helpCursor--
			}
		case "enter":
			a.openURL(items[a.helpCursor].url)
		}
		return a, nil
	}

	// Reservation overlay captures all keys when open
	if a.formOpen {
		if key == "ctrl+c" {
			return a, tea.Quit
		}
		var cmd tea.Cmd
		a.form, cmd = a.form.Update(msg)
		if a.form.closed {
			a.formOpen = false
		}
		return a, cmd
	}

	switch a.view {
	case viewLogin, viewRegistro:
		switch key {
		case "ctrl+c":
			return a, tea.Quit
		case "esc":
			a.view = viewInicio
			return a, nil
		case "ctrl+r":
			a.view = viewRegistro
			return a, nil
		case "ctrl+l":
			a.view = viewLogin
			return a, nil
		}
		var cmd tea.Cmd
		if a.view == viewLogin {
			a.login, cmd = a.login.Update(msg)
		} else {
			a.registro, cmd = a.registro.Update(msg)
		}
		return a, cmd
	}

	if !a.isEditing() {
		switch key {
		case "h":
			a.helpOpen = true
			a.helpCursor = 0
			return a, nil
		case "q", "ctrl+c":
			return a, tea.Quit
		case "1":
			a.view = viewInicio
			return a, nil
		case "2":
			a.view = viewViajes
			return a, nil
		case "3":
			a.view = viewReservas
			return a, nil
		case "4":
			a.view = viewPerfil
			return a, nil
		case "5":
			if a.user != nil && a.user.IsAdmin() {
				if a.view != viewLugares {
					a.view = viewLugares
					a.lugares.loading = true
					return a, a.lugares.Init()
				}
			}
			return a, nil
		case "l":
			if a.user == nil {
				a.view = viewLogin
			}
			return a, nil
		case "u":
			if a.user == nil {
				a.view = viewRegistro
			}
			return a, nil
		case "o":
			if a.user != nil {
				a.statusMsg = "Sesión cerrada"
				return a, a.logout()
			}
			return a, nil
		case "w":
			a.openURL(a.opts.WebURL)
			return a, nil
		}
	} else if key == "ctrl+c" {
		return a, tea.Quit
	}

	var cmd tea.Cmd
	switch a.view {
	case viewInicio:
		a.inicio, cmd = a.inicio.Update(msg)
	case viewViajes:
		a.viajes, cmd = a.viajes.Update(msg)
	case viewReservas:
		a.reservas, cmd = a.reservas.Update(msg)
	case viewPerfil:
		a.perfil, cmd = a.perfil.Update(msg)
	case viewLugares:
		a.lugares, cmd = a.lugares.Update(msg)
	}
	return a, cmd
}

func (a *App) openURL(url string) {
	if url == "" {
		return
	}
	if err := browser.Open(url); err != nil {
		a.statusMsg = "no se pudo abrir el navegador: " + url
	}
}

func (a App) isEditing() bool {
	switch a.view {
	case viewLugares:
		return a.lugares.state == lsAdding
	case viewLogin, viewRegistro:
		return true
	}
	return false
}

type tabEntry struct {
	key  string
	name string
	v    view
}

func (a App) tabs() []tabEntry {
	tabs := []tabEntry{
		{"1", "Inicio", viewInicio},
		{"2", "Viajes", viewViajes},
		{"3", "Reservas", viewReservas},
		{"4", "Perfil", viewPerfil},
	}
	if a.user != nil && a.user.IsAdmin() {
		tabs = append(tabs, tabEntry{"5", "Lugares", viewLugares})
	}
	return tabs
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)

	var who string
	switch {
	case a.checking:
		who = dimStyle.Render("verificando sesión...")
	case a.user != nil:
		who = selectedStyle.Render(a.user.FullName())
		if a.user.Rol != "" {
			who += metaStyle.Render(" · " + a.user.Rol)
		}
	default:
		who = metaStyle.Render("sin sesión · l ingresar · u registrarse")
	}
	header := center(logo, a.width) + "\n" + center(who, a.width)

	tabs := a.tabs()
	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := max((colWidth-labelWidth)/2, 0)
		rightPad := max(colWidth-labelWidth-leftPad, 0)
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body, help string
	switch a.view {
	case viewInicio:
		body = a.inicio.View()
		help = helpEntry("←/→", "lugares") + "  " + helpEntry("2", "viajes") + "  " + helpEntry("w", "sitio web") + "  " + helpEntry("h", "ayuda") + "  " + helpEntry("q", "salir")
	case viewViajes:
		body = a.viajes.View()
		help = a.viajes.helpKeys()
	case viewReservas:
		body = a.reservas.View()
		help = a.reservas.helpKeys()
	case viewPerfil:
		body = a.perfil.View()
		help = a.perfil.helpKeys()
	case viewLugares:
		body = a.lugares.View()
		help = a.lugares.helpKeys()
	case viewLogin:
		body = a.login.View()
		help = helpEntry("tab", "campo") + "  " + helpEntry("enter", "ingresar") + "  " + helpEntry("ctrl+r", "registrarse") + "  " + helpEntry("esc", "volver")
	case viewRegistro:
		body = a.registro.View()
		help = helpEntry("tab", "campo") + "  " + helpEntry("enter", "crear cuenta") + "  " + helpEntry("ctrl+l", "ingresar") + "  " + helpEntry("esc", "volver")
	}

	if a.formOpen {
		body = a.form.View()
		help = a.form.helpKeys()
	}

	if a.helpOpen {
		body = helpView(helpItems(a.opts.WebURL), a.helpCursor)
		help = helpEntry("j/k", "nav") + "  " + helpEntry("enter", "abrir") + "  " + helpEntry("esc", "cerrar")
	}

	var status string
	switch {
	case a.banner != "":
		status = " " + bannerStyle.Render(a.banner)
	case a.statusMsg != "":
		status = " " + goldStyle.Render(a.statusMsg)
	}

	// Chrome budget: header(2) + tabs(1) + status(1) + help(1) = 5 lines + body
	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n %s", header, tabBar.String(), body, status, help)
}

func center(s string, width int) string {
	pad := max((width-lipgloss.Width(s))/2, 0)
	return strings.Repeat(" ", pad) + s
}
