package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/puroquilmes/quilmes/internal/devserver"
	"github.com/puroquilmes/quilmes/pkg/client"
	"github.com/puroquilmes/quilmes/pkg/session"
)

func newBackend(t *testing.T) (*devserver.Server, *httptest.Server) {
	t.Helper()
	s := devserver.New()
	if err := s.Seed(); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

// loginAna returns a client whose cookie jar holds the demo user's session.
func loginAna(t *testing.T, baseURL string) (*client.Client, *session.Store) {
	t.Helper()
	c := client.New(baseURL, nil, 0)
	st := session.New(c)
	if !st.Login(context.Background(), devserver.DemoUserEmail, devserver.DemoUserPassword) {
		t.Fatal("demo login failed")
	}
	return c, st
}

// bookOne reserves two seats on the first trip and returns the reservation id.
func bookOne(t *testing.T, c *client.Client, st *session.Store) int64 {
	t.Helper()
	ctx := context.Background()
	viajes, err := c.ListAvailableTrips(ctx)
	if err != nil || len(viajes) == 0 {
		t.Fatalf("list trips: %v (%d)", err, len(viajes))
	}
	err = c.CreateReservation(ctx, client.CreateReservationRequest{
		ViajeID:           viajes[0].ID,
		UserID:            st.User().ID,
		CantidadPasajeros: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	reservas, err := c.ListUserReservations(ctx, st.User().ID)
	if err != nil || len(reservas) != 1 {
		t.Fatalf("list reservas: %v (%d)", err, len(reservas))
	}
	return reservas[0].ID
}

func TestParseID(t *testing.T) {
	tests := []struct {
		args    []string
		want    int64
		wantErr bool
	}{
		{[]string{"12"}, 12, false},
		{[]string{"#7"}, 7, false},
		{nil, 0, true},
		{[]string{"1", "2"}, 0, true},
		{[]string{"abc"}, 0, true},
		{[]string{"0"}, 0, true},
		{[]string{"-3"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, "_"), func(t *testing.T) {
			got, err := parseID("cancelar", tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseID(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseID(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func TestPromptConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"s\n", true},
		{"Sí\n", true},
		{"y\n", true},
		{"  si  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"quizás\n", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got := promptConfirm(strings.NewReader(tt.input), &out)("¿Seguro?")
			if got != tt.want {
				t.Errorf("answer %q = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "¿Seguro? [s/N]") {
				t.Errorf("prompt not written: %q", out.String())
			}
		})
	}
}

func TestRunViajes(t *testing.T) {
	_, srv := newBackend(t)
	var out bytes.Buffer
	if err := runViajes(context.Background(), &out, client.New(srv.URL, nil, 0)); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"Viaje", "Lugares", "#1", "40"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output:\n%s", want, got)
		}
	}
	// Sold out and inactive trips are not offered.
	if strings.Contains(got, "#4 ") || strings.Contains(got, "#5 ") {
		t.Errorf("unbookable trip listed:\n%s", got)
	}
}

func TestRunViajesBackendDown(t *testing.T) {
	s, srv := newBackend(t)
	s.Fail("GET /api/viajes/disponibles", 502)
	err := runViajes(context.Background(), &bytes.Buffer{}, client.New(srv.URL, nil, 0))
	if err == nil || !client.IsStatus(err, 502) {
		t.Fatalf("expected a 502, got %v", err)
	}
}

func TestRunReservasRequiresSession(t *testing.T) {
	_, srv := newBackend(t)
	c := client.New(srv.URL, nil, 0)
	err := runReservas(context.Background(), &bytes.Buffer{}, c, session.New(c))
	if !errors.Is(err, errNoSession) {
		t.Fatalf("err = %v, want errNoSession", err)
	}
}

func TestRunReservas(t *testing.T) {
	_, srv := newBackend(t)
	c, st := loginAna(t, srv.URL)

	var out bytes.Buffer
	if err := runReservas(context.Background(), &out, c, st); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No tienes reservas activas") {
		t.Errorf("expected empty message:\n%s", out.String())
	}

	id := bookOne(t, c, st)
	out.Reset()
	if err := runReservas(context.Background(), &out, c, st); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Reserva", "Activa"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output:\n%s", want, out.String())
		}
	}
	if !strings.Contains(out.String(), "#"+itoa(id)) {
		t.Errorf("reservation #%d missing:\n%s", id, out.String())
	}
}

func TestRunCancelar(t *testing.T) {
	_, srv := newBackend(t)
	c, st := loginAna(t, srv.URL)
	id := bookOne(t, c, st)
	ctx := context.Background()

	var out bytes.Buffer
	if err := runCancelar(ctx, strings.NewReader("n\n"), &out, c, st, []string{itoa(id)}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "abortada") {
		t.Errorf("declined prompt should abort:\n%s", out.String())
	}

	out.Reset()
	if err := runCancelar(ctx, strings.NewReader("s\n"), &out, c, st, []string{itoa(id)}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "cancelada") || !strings.Contains(out.String(), "Cancelada") {
		t.Errorf("expected cancellation and refreshed list:\n%s", out.String())
	}
}

func TestRunCancelarBadArgs(t *testing.T) {
	err := runCancelar(context.Background(), strings.NewReader(""), &bytes.Buffer{}, nil, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "uso: quilmes cancelar") {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestRunTicket(t *testing.T) {
	_, srv := newBackend(t)
	c, st := loginAna(t, srv.URL)
	id := bookOne(t, c, st)
	dir := t.TempDir()

	var out bytes.Buffer
	if err := runTicket(context.Background(), &out, c, st, dir, []string{itoa(id)}); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one pdf in %s: %v %v", dir, entries, err)
	}
	if !strings.Contains(out.String(), filepath.Join(dir, entries[0].Name())) {
		t.Errorf("path not reported:\n%s", out.String())
	}

	err = runTicket(context.Background(), &out, c, st, dir, []string{"999"})
	if err == nil || !strings.Contains(err.Error(), "#999") {
		t.Errorf("expected unknown reservation error, got %v", err)
	}
}

func TestRunLogout(t *testing.T) {
	_, srv := newBackend(t)
	jar, err := client.OpenFileJar(filepath.Join(t.TempDir(), "cookies.json"), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	c := client.New(srv.URL, jar, 0)
	st := session.New(c)
	if !st.Login(context.Background(), devserver.DemoUserEmail, devserver.DemoUserPassword) {
		t.Fatal("demo login failed")
	}

	var out bytes.Buffer
	if err := runLogout(context.Background(), &out, st, jar); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Sesión cerrada") {
		t.Errorf("unexpected output: %q", out.String())
	}
	if jar.Len() != 0 {
		t.Errorf("jar still holds %d cookies", jar.Len())
	}

	out.Reset()
	if err := runLogout(context.Background(), &out, st, jar); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No había sesión") {
		t.Errorf("second logout: %q", out.String())
	}
}

func TestPrintHelp(t *testing.T) {
	var out bytes.Buffer
	printHelp(&out)
	for _, want := range []string{"quilmes viajes", "quilmes cancelar <id>", "quilmes devserver [addr]", "QUILMES_API_URL"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in help:\n%s", want, out.String())
		}
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
