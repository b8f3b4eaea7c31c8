package tui

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/puroquilmes/quilmes/pkg/client"
	"github.com/puroquilmes/quilmes/pkg/domain"
	"github.com/puroquilmes/quilmes/pkg/session"
)

// loginDoneMsg carries the outcome of a login attempt.
type loginDoneMsg struct {
	ok   bool
	user *domain.User
}

type registroDoneMsg struct{ err error }

const (
	msgLoginFailed     = "Email o contraseña incorrectos"
	msgCamposVacios    = "Completa todos los campos"
	msgNumerosInvalid  = "DNI y teléfono deben ser numéricos"
	msgRegistroFailed  = "Error al crear la cuenta"
	msgRegistroExitoso = "Cuenta creada exitosamente."
)

// -- login --

type loginModel struct {
	store *session.Store
	form  form
	busy  bool
	err   string
}

func newLoginModel(st *session.Store) loginModel {
	return loginModel{
		store: st,
		form:  newForm(formField{label: "Email"}, formField{label: "Contraseña", secret: true}),
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.busy = false
		if !msg.ok {
			m.err = msgLoginFailed
			m.form.fields[1].value = ""
			return m, nil
		}
		m.err = ""
		m.form.reset()
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.form.next()
		case "shift+tab", "up":
			m.form.prev()
		case "enter":
			email, password := m.form.value(0), m.form.fields[1].value
			if email == "" || password == "" {
				m.err = msgCamposVacios
				return m, nil
			}
			m.err = ""
			m.busy = true
			st := m.store
			return m, func() tea.Msg {
				ok := st.Login(context.Background(), email, password)
				return loginDoneMsg{ok: ok, user: st.User()}
			}
		default:
			m.form.edit(msg.String())
		}
	}
	return m, nil
}

func (m loginModel) View() string {
	var sb strings.Builder
	sb.WriteString("\n " + sectionHeaderStyle.Render("── INICIAR SESIÓN ──") + "\n\n")
	sb.WriteString(m.form.View())
	switch {
	case m.busy:
		sb.WriteString("\n   " + accentStyle.Render("Ingresando...") + "\n")
	case m.err != "":
		sb.WriteString("\n   " + errStyle.Render(m.err) + "\n")
	}
	sb.WriteString("\n   " + dimStyle.Render("¿No tienes cuenta?") + " " + helpEntry("ctrl+r", "Regístrate") + "\n")
	return sb.String()
}

// -- registro --

const (
	regNombre = iota
	regApellido
	regEmail
	regDNI
	regTelefono
	regClave
)

type registroModel struct {
	client *client.Client
	form   form
	busy   bool
	done   bool
	err    string
}

func newRegistroModel(c *client.Client) registroModel {
	return registroModel{
		client: c,
		form: newForm(
			formField{label: "Nombre"},
			formField{label: "Apellido"},
			formField{label: "Email"},
			formField{label: "DNI"},
			formField{label: "Teléfono"},
			formField{label: "Contraseña", secret: true},
		),
	}
}

// request validates the form and builds the registration payload.
func (m registroModel) request() (client.RegisterRequest, string) {
	req := client.RegisterRequest{
		Nombre:   m.form.value(regNombre),
		Apellido: m.form.value(regApellido),
		Email:    m.form.value(regEmail),
		DNI:      m.form.value(regDNI),
		Telefono: m.form.value(regTelefono),
		Clave:    m.form.fields[regClave].value,
	}
	if req.Nombre == "" || req.Apellido == "" || req.Email == "" || req.DNI == "" || req.Telefono == "" || req.Clave == "" {
		return req, msgCamposVacios
	}
	if _, err := strconv.ParseInt(req.DNI, 10, 64); err != nil {
		return req, msgNumerosInvalid
	}
	if _, err := strconv.ParseInt(req.Telefono, 10, 64); err != nil {
		return req, msgNumerosInvalid
	}
	return req, ""
}

func (m registroModel) Update(msg tea.Msg) (registroModel, tea.Cmd) {
	switch msg := msg.(type) {
	case registroDoneMsg:
		m.busy = false
		if msg.err != nil {
			if text, ok := client.ServerMessage(msg.err); ok {
				m.err = text
			} else {
				m.err = msgRegistroFailed
			}
			return m, nil
		}
		m.err = ""
		m.done = true
		m.form.reset()
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.form.next()
		case "shift+tab", "up":
			m.form.prev()
		case "enter":
			req, problem := m.request()
			if problem != "" {
				m.err = problem
				return m, nil
			}
			m.err = ""
			m.done = false
			m.busy = true
			c := m.client
			return m, func() tea.Msg {
				return registroDoneMsg{err: c.Register(context.Background(), req)}
			}
		default:
			m.done = false
			m.form.edit(msg.String())
		}
	}
	return m, nil
}

func (m registroModel) View() string {
	var sb strings.Builder
	sb.WriteString("\n " + sectionHeaderStyle.Render("── CREAR CUENTA ──") + "\n\n")
	sb.WriteString(m.form.View())
	switch {
	case m.busy:
		sb.WriteString("\n   " + accentStyle.Render("Creando cuenta...") + "\n")
	case m.done:
		sb.WriteString("\n   " + okStyle.Render(msgRegistroExitoso) + " " + helpEntry("ctrl+l", "Iniciar sesión") + "\n")
	case m.err != "":
		sb.WriteString("\n   " + errStyle.Render(m.err) + "\n")
	}
	sb.WriteString("\n   " + dimStyle.Render("¿Ya tienes cuenta?") + " " + helpEntry("ctrl+l", "Inicia sesión") + "\n")
	return sb.String()
}
