package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puroquilmes/quilmes/pkg/client"
	"github.com/puroquilmes/quilmes/pkg/domain"
)

type countingServer struct {
	hits    atomic.Int32
	handler http.HandlerFunc
}

func newCountingClient(t *testing.T, h http.HandlerFunc) (*client.Client, *countingServer) {
	t.Helper()
	cs := &countingServer{handler: h}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.hits.Add(1)
		if cs.handler != nil {
			cs.handler(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return client.New(srv.URL, nil, 0), cs
}

var ana = &domain.User{ID: 1, Email: "a@b.com", Nombre: "Ana", Apellido: "Gomez", Rol: "cliente"}

func TestSubmit_TooManyPassengers_NoRequest(t *testing.T) {
	c, cs := newCountingClient(t, nil)
	wf := NewWorkflow(domain.Viaje{ID: 7, LugarDisponible: 2, Estado: true})
	wf.Pasajeros = 3

	err := wf.Submit(context.Background(), c, ana)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Solo hay 2 lugares disponibles", wf.Message)
	assert.Equal(t, Failed, wf.State)
	assert.Equal(t, int32(0), cs.hits.Load())
}

func TestSubmit_NoUser_NoRequest(t *testing.T) {
	c, cs := newCountingClient(t, nil)
	wf := NewWorkflow(domain.Viaje{ID: 7, LugarDisponible: 2, Estado: true})
	wf.Pasajeros = 5 // user check runs first

	err := wf.Submit(context.Background(), c, nil)
	require.ErrorIs(t, err, ErrAuthRequired)
	assert.Equal(t, MsgAuthRequired, wf.Message)
	assert.Equal(t, Failed, wf.State)
	assert.Equal(t, int32(0), cs.hits.Load())
}

func TestSubmit_Success(t *testing.T) {
	var got client.CreateReservationRequest
	c, cs := newCountingClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
		w.WriteHeader(http.StatusCreated)
	})
	wf := NewWorkflow(domain.Viaje{ID: 7, LugarDisponible: 5, Estado: true})
	wf.SetPasajeros(2)

	require.NoError(t, wf.Submit(context.Background(), c, ana))
	assert.Equal(t, Succeeded, wf.State)
	assert.Equal(t, MsgReservaExitosa, wf.Message)
	assert.Equal(t, client.CreateReservationRequest{ViajeID: 7, UserID: 1, CantidadPasajeros: 2}, got)
	assert.Equal(t, int32(1), cs.hits.Load())
}

func TestSubmit_ServerMessage(t *testing.T) {
	c, _ := newCountingClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"El viaje ya salió"}`)) //nolint:errcheck
	})
	wf := NewWorkflow(domain.Viaje{ID: 7, LugarDisponible: 5, Estado: true})
	wf.SetPasajeros(3)

	require.Error(t, wf.Submit(context.Background(), c, ana))
	assert.Equal(t, Failed, wf.State)
	assert.Equal(t, "El viaje ya salió", wf.Message)
	assert.Equal(t, 3, wf.Pasajeros, "form selection survives a failure")
}

func TestSubmit_ServerWithoutMessage(t *testing.T) {
	c, _ := newCountingClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("oops")) //nolint:errcheck
	})
	wf := NewWorkflow(domain.Viaje{ID: 7, LugarDisponible: 5, Estado: true})

	require.Error(t, wf.Submit(context.Background(), c, ana))
	assert.Equal(t, MsgCreateFailed, wf.Message)
}

func TestSubmit_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := client.New(srv.URL, nil, 0)
	srv.Close()

	wf := NewWorkflow(domain.Viaje{ID: 7, LugarDisponible: 5, Estado: true})
	require.Error(t, wf.Submit(context.Background(), c, ana))
	assert.Equal(t, MsgConnection, wf.Message)
}

func TestBegin_Transitions(t *testing.T) {
	wf := NewWorkflow(domain.Viaje{ID: 9, LugarDisponible: 4, Estado: true})
	assert.Equal(t, Idle, wf.State)

	req, err := wf.Begin(ana)
	require.NoError(t, err)
	assert.Equal(t, Submitting, wf.State)
	assert.True(t, wf.Busy())
	assert.Equal(t, int64(9), req.ViajeID)

	wf.Finish(errors.New("dial tcp: refused"))
	assert.Equal(t, Failed, wf.State)
	assert.False(t, wf.Busy())
}

func TestPassengerOptions(t *testing.T) {
	tests := []struct {
		lugar int
		want  []int
	}{
		{0, []int{}},
		{1, []int{1}},
		{3, []int{1, 2, 3}},
		{25, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
	}
	for _, tt := range tests {
		got := PassengerOptions(domain.Viaje{LugarDisponible: tt.lugar})
		assert.Equal(t, tt.want, got, "lugar=%d", tt.lugar)
	}
}

func TestSetPasajeros_Clamps(t *testing.T) {
	wf := NewWorkflow(domain.Viaje{LugarDisponible: 4})
	wf.SetPasajeros(9)
	assert.Equal(t, 4, wf.Pasajeros)
	wf.SetPasajeros(0)
	assert.Equal(t, 1, wf.Pasajeros)
}

func TestFetchAvailableTrips(t *testing.T) {
	c, _ := newCountingClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"viaje_id":1,"lugar_disponible":0,"estado":true},{"viaje_id":2,"lugar_disponible":3,"estado":false},{"viaje_id":3,"lugar_disponible":3,"estado":true}]`)) //nolint:errcheck
	})
	viajes, err := FetchAvailableTrips(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, viajes, 3)

	assert.False(t, viajes[0].Reservable())
	assert.False(t, viajes[1].Reservable())
	assert.True(t, viajes[2].Reservable())
}

func TestFetchAvailableTrips_Errors(t *testing.T) {
	c, _ := newCountingClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := FetchAvailableTrips(context.Background(), c)
	require.Error(t, err)
	assert.Equal(t, MsgLoadTripsFailed, LoadMessage(err, MsgLoadTripsFailed))

	assert.Equal(t, MsgConnection, LoadMessage(errors.New("dial tcp"), MsgLoadTripsFailed))
	assert.Empty(t, LoadMessage(nil, MsgLoadTripsFailed))
}

func TestFetchUserReservations_NoUser(t *testing.T) {
	c, cs := newCountingClient(t, nil)
	reservas, err := FetchUserReservations(context.Background(), c, nil)
	assert.NoError(t, err)
	assert.Nil(t, reservas)
	assert.Equal(t, int32(0), cs.hits.Load())
}

func TestCancel_RefetchesList(t *testing.T) {
	var cancelled, listed atomic.Int32
	c, _ := newCountingClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/api/reservas/5/cancelar":
			cancelled.Add(1)
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodGet && r.URL.Path == "/api/reservas/usuario/1":
			listed.Add(1)
			w.Write([]byte(`[{"pasajero_id":5,"cantidad_pasajeros":2,"estado":false}]`)) //nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	})

	var prompt string
	res, err := Cancel(context.Background(), c, ana, 5, func(p string) bool {
		prompt = p
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, CancelPrompt, prompt)
	assert.False(t, res.Aborted)
	assert.NoError(t, res.RefreshErr)
	require.Len(t, res.Reservas, 1)
	assert.False(t, res.Reservas[0].Estado)
	assert.Equal(t, int32(1), cancelled.Load())
	assert.Equal(t, int32(1), listed.Load())
}

func TestCancel_NotConfirmed(t *testing.T) {
	c, cs := newCountingClient(t, nil)
	res, err := Cancel(context.Background(), c, ana, 5, func(string) bool { return false })
	require.NoError(t, err)
	assert.True(t, res.Aborted)
	assert.Equal(t, int32(0), cs.hits.Load())
}

func TestCancel_Failure(t *testing.T) {
	c, cs := newCountingClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	res, err := Cancel(context.Background(), c, ana, 5, Confirmed)
	require.Error(t, err)
	assert.Nil(t, res.Reservas)
	assert.Equal(t, MsgCancelFailed, CancelMessage(err))
	assert.Equal(t, int32(1), cs.hits.Load(), "no re-fetch after a failed cancel")
}

func TestSummary(t *testing.T) {
	r := domain.Reserva{ID: 5, CantidadPasajeros: 2, Estado: true, Viaje: domain.Viaje{Numero: 3, Bus: domain.Bus{ID: 8}}}
	got := Summary(r)
	assert.Contains(t, got, "Reserva #5")
	assert.Contains(t, got, "Viaje #3")
	assert.Contains(t, got, "Bus #8")
	assert.Contains(t, got, "Activa")
}
