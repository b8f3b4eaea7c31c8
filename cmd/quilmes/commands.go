package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/puroquilmes/quilmes/internal/ticket"
	"github.com/puroquilmes/quilmes/pkg/booking"
	"github.com/puroquilmes/quilmes/pkg/client"
	"github.com/puroquilmes/quilmes/pkg/domain"
	"github.com/puroquilmes/quilmes/pkg/session"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f5c242")).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func viajesTable(viajes []domain.Viaje) string {
	t := newTable("Viaje", "Fecha", "Lugares", "Bus", "Estado")
	for _, v := range viajes {
		t.Row(
			fmt.Sprintf("#%d", v.Numero),
			v.Fecha.Largo(),
			strconv.Itoa(v.LugarDisponible),
			fmt.Sprintf("#%d", v.Bus.ID),
			v.EstadoLabel(),
		)
	}
	return t.String()
}

func reservasTable(reservas []domain.Reserva) string {
	t := newTable("Reserva", "Viaje", "Fecha", "Pasajeros", "Estado")
	for _, r := range reservas {
		t.Row(
			fmt.Sprintf("#%d", r.ID),
			fmt.Sprintf("#%d", r.Viaje.Numero),
			r.Viaje.Fecha.Largo(),
			strconv.Itoa(r.CantidadPasajeros),
			r.EstadoLabel(),
		)
	}
	return t.String()
}

// requireUser resolves the stored session. Commands that act on a user's
// reservations fail without one.
func requireUser(ctx context.Context, st *session.Store) (*domain.User, error) {
	st.CheckStatus(ctx)
	u := st.User()
	if u == nil {
		return nil, errNoSession
	}
	return u, nil
}

// parseID reads the reservation id argument of ticket and cancelar.
func parseID(cmd string, args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("uso: quilmes %s <id-reserva>", cmd)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id de reserva inválido: %q", args[0])
	}
	return id, nil
}

func findReserva(reservas []domain.Reserva, id int64) (domain.Reserva, bool) {
	for _, r := range reservas {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Reserva{}, false
}

func runViajes(ctx context.Context, w io.Writer, api booking.TripLister) error {
	viajes, err := booking.FetchAvailableTrips(ctx, api)
	if err != nil {
		return fmt.Errorf("%s: %w", booking.MsgLoadTripsFailed, err)
	}
	if len(viajes) == 0 {
		fmt.Fprintln(w, "No hay viajes disponibles por el momento")
		return nil
	}
	fmt.Fprintln(w, viajesTable(viajes))
	return nil
}

func runReservas(ctx context.Context, w io.Writer, api booking.ReservationAPI, st *session.Store) error {
	u, err := requireUser(ctx, st)
	if err != nil {
		return err
	}
	reservas, err := booking.FetchUserReservations(ctx, api, u)
	if err != nil {
		return fmt.Errorf("%s: %w", booking.MsgLoadReservasError, err)
	}
	if len(reservas) == 0 {
		fmt.Fprintln(w, "No tienes reservas activas")
		return nil
	}
	fmt.Fprintln(w, reservasTable(reservas))
	return nil
}

func runTicket(ctx context.Context, w io.Writer, api booking.ReservationAPI, st *session.Store, dir string, args []string) error {
	id, err := parseID("ticket", args)
	if err != nil {
		return err
	}
	u, err := requireUser(ctx, st)
	if err != nil {
		return err
	}
	reservas, err := booking.FetchUserReservations(ctx, api, u)
	if err != nil {
		return fmt.Errorf("%s: %w", booking.MsgLoadReservasError, err)
	}
	r, ok := findReserva(reservas, id)
	if !ok {
		return fmt.Errorf("no tienes una reserva #%d", id)
	}
	path, err := ticket.Write(dir, r, *u, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Pasaje guardado en "+path)
	return nil
}

func runCancelar(ctx context.Context, in io.Reader, w io.Writer, api booking.ReservationAPI, st *session.Store, args []string) error {
	id, err := parseID("cancelar", args)
	if err != nil {
		return err
	}
	u, err := requireUser(ctx, st)
	if err != nil {
		return err
	}
	res, err := booking.Cancel(ctx, api, u, id, promptConfirm(in, w))
	if err != nil {
		return fmt.Errorf("%s: %w", booking.CancelMessage(err), err)
	}
	if res.Aborted {
		fmt.Fprintln(w, "Cancelación abortada.")
		return nil
	}
	fmt.Fprintf(w, "Reserva #%d cancelada.\n", id)
	if res.RefreshErr != nil {
		fmt.Fprintln(w, noteStyle.Render(booking.LoadMessage(res.RefreshErr, booking.MsgLoadReservasError)))
		return nil
	}
	if len(res.Reservas) > 0 {
		fmt.Fprintln(w, reservasTable(res.Reservas))
	}
	return nil
}

// promptConfirm asks on w and reads one answer line from in. Anything but an
// explicit yes declines, including EOF.
func promptConfirm(in io.Reader, w io.Writer) booking.ConfirmFunc {
	return func(prompt string) bool {
		fmt.Fprintf(w, "%s [s/N] ", prompt)
		sc := bufio.NewScanner(in)
		if !sc.Scan() {
			fmt.Fprintln(w)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(sc.Text())) {
		case "s", "si", "sí", "y", "yes":
			return true
		}
		return false
	}
}

var _ booking.ReservationAPI = (*client.Client)(nil)
