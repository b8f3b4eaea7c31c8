package devserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puroquilmes/quilmes/pkg/booking"
	"github.com/puroquilmes/quilmes/pkg/client"
	"github.com/puroquilmes/quilmes/pkg/domain"
	"github.com/puroquilmes/quilmes/pkg/session"
)

func newSeeded(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	s := New(opts...)
	require.NoError(t, s.Seed())
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func loggedIn(t *testing.T, baseURL, email, password string) (*client.Client, *session.Store) {
	t.Helper()
	c := client.New(baseURL, nil, 0)
	st := session.New(c)
	require.True(t, st.Login(context.Background(), email, password))
	return c, st
}

func TestCheckWithoutSession(t *testing.T) {
	_, srv := newSeeded(t)
	st := session.New(client.New(srv.URL, nil, 0))

	st.CheckStatus(context.Background())
	assert.Nil(t, st.User())
	assert.False(t, st.IsLoading())
}

func TestLoginResolvesFullProfile(t *testing.T) {
	_, srv := newSeeded(t)
	c, st := loggedIn(t, srv.URL, DemoUserEmail, DemoUserPassword)

	u := st.User()
	require.NotNil(t, u)
	assert.Equal(t, "Ana", u.Nombre)
	assert.Equal(t, "cliente", u.Rol)
	assert.True(t, u.Active())

	// The cookie from login authenticates the check on the same client.
	st2 := session.New(c)
	st2.CheckStatus(context.Background())
	require.NotNil(t, st2.User())
	assert.Equal(t, u.ID, st2.User().ID)
}

func TestLoginFallbackWhenCurrentFails(t *testing.T) {
	s, srv := newSeeded(t)
	s.Fail("GET /api/users/current", http.StatusInternalServerError)

	_, st := loggedIn(t, srv.URL, DemoUserEmail, DemoUserPassword)
	u := st.User()
	require.NotNil(t, u)
	assert.Equal(t, DemoUserEmail, u.Email)
	assert.Nil(t, u.DNI)
	assert.False(t, u.HasFullProfile())
}

func TestLoginWrongPassword(t *testing.T) {
	_, srv := newSeeded(t)
	st := session.New(client.New(srv.URL, nil, 0))
	assert.False(t, st.Login(context.Background(), DemoUserEmail, "nope"))
	assert.Nil(t, st.User())
}

func TestLogoutEndsSession(t *testing.T) {
	_, srv := newSeeded(t)
	c, st := loggedIn(t, srv.URL, DemoUserEmail, DemoUserPassword)

	st.Logout(context.Background())
	assert.Nil(t, st.User())

	st.CheckStatus(context.Background())
	assert.Nil(t, st.User(), "cookie was expired by the server")

	_, err := c.CurrentUser(context.Background())
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))
}

func TestExpiredSessionRejected(t *testing.T) {
	var skew atomic.Int64
	clock := func() time.Time { return time.Now().Add(time.Duration(skew.Load())) }
	_, srv := newSeeded(t, WithClock(clock))
	c, _ := loggedIn(t, srv.URL, DemoUserEmail, DemoUserPassword)

	check, err := c.CheckAuth(context.Background())
	require.NoError(t, err)
	require.True(t, check.Authenticated)

	// The server's clock moves past the token's exp; the cookie itself is
	// still sent by the client's jar.
	skew.Store(int64(sessionTTL + time.Minute))
	check, err = c.CheckAuth(context.Background())
	require.NoError(t, err)
	assert.False(t, check.Authenticated)
}

func TestRegisterThenLogin(t *testing.T) {
	_, srv := newSeeded(t)
	c := client.New(srv.URL, nil, 0)
	ctx := context.Background()

	req := client.RegisterRequest{Nombre: "Luis", Apellido: "Paz", Email: "luis@quilmes.test", DNI: "30111222", Telefono: "1144556677", Clave: "secreta"}
	require.NoError(t, c.Register(ctx, req))

	err := c.Register(ctx, req)
	msg, ok := client.ServerMessage(err)
	require.True(t, ok)
	assert.Equal(t, "El email ya está registrado", msg)

	st := session.New(c)
	require.True(t, st.Login(ctx, "luis@quilmes.test", "secreta"))
	u := st.User()
	require.NotNil(t, u)
	require.True(t, u.HasFullProfile())
	assert.Equal(t, int64(30111222), *u.DNI)

	bad := req
	bad.Email = "otro@quilmes.test"
	bad.DNI = "treinta"
	err = c.Register(ctx, bad)
	assert.True(t, client.IsStatus(err, http.StatusBadRequest))
}

func TestCatalogOnlyReservable(t *testing.T) {
	_, srv := newSeeded(t)
	viajes, err := booking.FetchAvailableTrips(context.Background(), client.New(srv.URL, nil, 0))
	require.NoError(t, err)

	require.NotEmpty(t, viajes)
	for _, v := range viajes {
		assert.True(t, v.Reservable(), "viaje %d", v.ID)
	}
	for i := 1; i < len(viajes); i++ {
		assert.False(t, viajes[i].Fecha.Before(viajes[i-1].Fecha.Time))
	}
}

func TestReserveListCancel(t *testing.T) {
	s, srv := newSeeded(t)
	c, st := loggedIn(t, srv.URL, DemoUserEmail, DemoUserPassword)
	ctx := context.Background()

	viajeID := s.AddViaje(domain.Viaje{Numero: 99, LugarDisponible: 5, Estado: true, Fecha: domain.NewFecha(time.Now().Add(48 * time.Hour))})
	v, _ := s.Viaje(viajeID)

	wf := booking.NewWorkflow(v)
	wf.SetPasajeros(3)
	require.NoError(t, wf.Submit(ctx, c, st.User()))
	assert.Equal(t, booking.Succeeded, wf.State)

	after, _ := s.Viaje(viajeID)
	assert.Equal(t, 2, after.LugarDisponible)

	reservas, err := booking.FetchUserReservations(ctx, c, st.User())
	require.NoError(t, err)
	require.Len(t, reservas, 1)
	assert.True(t, reservas[0].Estado)
	assert.Equal(t, 99, reservas[0].Viaje.Numero)

	res, err := booking.Cancel(ctx, c, st.User(), reservas[0].ID, booking.Confirmed)
	require.NoError(t, err)
	require.Len(t, res.Reservas, 1)
	assert.False(t, res.Reservas[0].Estado)

	restored, _ := s.Viaje(viajeID)
	assert.Equal(t, 5, restored.LugarDisponible)

	_, err = booking.Cancel(ctx, c, st.User(), reservas[0].ID, booking.Confirmed)
	require.Error(t, err)
	assert.Equal(t, booking.MsgCancelFailed, booking.CancelMessage(err))
}

func TestReserveMoreThanServerAllows(t *testing.T) {
	s, srv := newSeeded(t)
	c, st := loggedIn(t, srv.URL, DemoUserEmail, DemoUserPassword)

	viajeID := s.AddViaje(domain.Viaje{Numero: 5, LugarDisponible: 1, Estado: true})
	stale := domain.Viaje{ID: viajeID, LugarDisponible: 4, Estado: true}

	wf := booking.NewWorkflow(stale)
	wf.SetPasajeros(3)
	require.Error(t, wf.Submit(context.Background(), c, st.User()))
	assert.Equal(t, "No hay lugares suficientes", wf.Message)
}

func TestReserveRequiresSession(t *testing.T) {
	s, srv := newSeeded(t)
	c := client.New(srv.URL, nil, 0)
	viajeID := s.AddViaje(domain.Viaje{LugarDisponible: 3, Estado: true})

	err := c.CreateReservation(context.Background(), client.CreateReservationRequest{ViajeID: viajeID, UserID: 1, CantidadPasajeros: 1})
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))
}

func TestPlacesAdminOnly(t *testing.T) {
	s, srv := newSeeded(t)
	ctx := context.Background()

	cliente, _ := loggedIn(t, srv.URL, DemoUserEmail, DemoUserPassword)
	_, err := cliente.CreatePlace(ctx, client.CreatePlaceRequest{Nombre: "X", ZonaID: 1})
	assert.True(t, client.IsStatus(err, http.StatusForbidden))

	admin, st := loggedIn(t, srv.URL, DemoAdminEmail, DemoAdminPassword)
	require.True(t, st.User().IsAdmin())

	zonas, err := admin.ListZones(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, zonas)

	before := len(s.Lugares())
	created, err := admin.CreatePlace(ctx, client.CreatePlaceRequest{Nombre: "Plaza San Martín", Ubicacion: "Centro", ZonaID: zonas[0].ID})
	require.NoError(t, err)
	assert.Equal(t, "Plaza San Martín", created.Nombre)
	assert.Equal(t, zonas[0].Nombre, created.ZonaNombre())
	assert.Len(t, s.Lugares(), before+1)

	require.NoError(t, admin.DeletePlace(ctx, created.ID))
	assert.Len(t, s.Lugares(), before)

	err = admin.DeletePlace(ctx, created.ID)
	assert.True(t, client.IsStatus(err, http.StatusNotFound))
}

func TestFailInjection(t *testing.T) {
	s, srv := newSeeded(t)
	c := client.New(srv.URL, nil, 0)

	s.Fail("GET /api/viajes/disponibles", http.StatusServiceUnavailable)
	_, err := booking.FetchAvailableTrips(context.Background(), c)
	require.Error(t, err)
	assert.Equal(t, booking.MsgLoadTripsFailed, booking.LoadMessage(err, booking.MsgLoadTripsFailed))

	s.Fail("GET /api/viajes/disponibles", 0)
	_, err = booking.FetchAvailableTrips(context.Background(), c)
	assert.NoError(t, err)
}

func TestSessionSurvivesRestartWithFileJar(t *testing.T) {
	_, srv := newSeeded(t)
	path := filepath.Join(t.TempDir(), "cookies.json")

	jar, err := client.OpenFileJar(path, srv.URL)
	require.NoError(t, err)
	st := session.New(client.New(srv.URL, jar, 0))
	require.True(t, st.Login(context.Background(), DemoUserEmail, DemoUserPassword))

	jar2, err := client.OpenFileJar(path, srv.URL)
	require.NoError(t, err)
	u, _ := url.Parse(srv.URL)
	require.NotEmpty(t, jar2.Cookies(u))

	st2 := session.New(client.New(srv.URL, jar2, 0))
	st2.CheckStatus(context.Background())
	require.NotNil(t, st2.User())
	assert.Equal(t, "Ana", st2.User().Nombre)
}
