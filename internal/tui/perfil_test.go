package tui

import (
	"strings"
	"testing"

	"github.com/puroquilmes/quilmes/pkg/domain"
)

func TestPerfilWithoutUser(t *testing.T) {
	var m perfilModel
	if !strings.Contains(m.View(), "Inicia sesión") {
		t.Errorf("expected login prompt:\n%s", m.View())
	}
}

func TestPerfilFallbackProfile(t *testing.T) {
	m, _ := perfilModel{}.Update(sessionMsg{user: testAna})
	view := m.View()
	for _, want := range []string{"AG", "Ana Gomez", "ana@quilmes.test", noDisponible, "Activo", "se muestran los de la sesión"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestPerfilFullProfile(t *testing.T) {
	dni, tel, inactivo := int64(30111222), int64(1144556677), 0
	u := &domain.User{ID: 3, Nombre: "Luis", Apellido: "Paz", Email: "luis@quilmes.test", Rol: "cliente", DNI: &dni, Telefono: &tel, Estado: &inactivo}
	m, _ := perfilModel{}.Update(sessionMsg{user: u})
	view := m.View()
	for _, want := range []string{"30111222", "1144556677", "Inactivo"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}
	if strings.Contains(view, noDisponible) {
		t.Errorf("full profile rendered a missing field:\n%s", view)
	}
}
