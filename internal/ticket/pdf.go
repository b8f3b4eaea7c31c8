// Package ticket renders a reservation as a printable PDF.
package ticket

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/puroquilmes/quilmes/pkg/domain"
)

// ErrCancelled is returned for reservations that are no longer active.
var ErrCancelled = errors.New("ticket: la reserva está cancelada")

// Render builds the PDF for r, issued to u at the given time.
func Render(r domain.Reserva, u domain.User, issued time.Time) ([]byte, error) {
	if !r.Cancellable() {
		return nil, ErrCancelled
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Reserva %d", r.ID), true)
	pdf.SetCreator("quilmes", true)
	pdf.SetCreationDate(issued)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr("Quilmes - Pasaje en bus"))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	for _, line := range []string{
		fmt.Sprintf("Reserva:      #%d", r.ID),
		fmt.Sprintf("Pasajero:     %s", safe(u.FullName(), u.Email)),
		fmt.Sprintf("Email:        %s", safe(u.Email, "-")),
		fmt.Sprintf("Viaje:        #%d", r.Viaje.Numero),
		fmt.Sprintf("Fecha:        %s", r.Viaje.Fecha.Largo()),
		fmt.Sprintf("Bus:          #%d", r.Viaje.Bus.ID),
		fmt.Sprintf("Pasajeros:    %d", r.CantidadPasajeros),
		fmt.Sprintf("Estado:       %s", r.EstadoLabel()),
	} {
		pdf.Cell(0, 7, tr(line))
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, tr("Importante: puedes cancelar tu reserva hasta 24 horas antes del viaje. "+
		"Presenta este comprobante al abordar."), "", "", false)
	pdf.Ln(2)
	pdf.Cell(0, 6, tr("Emitido: "+issued.Format("02/01/2006 15:04")))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("ticket.Render: %w", err)
	}
	return buf.Bytes(), nil
}

// Write renders the ticket into dir and returns the file path.
func Write(dir string, r domain.Reserva, u domain.User, issued time.Time) (string, error) {
	data, err := Render(r, u, issued)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("ticket.Write: %w", err)
	}
	path := filepath.Join(dir, Filename(r))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("ticket.Write: %w", err)
	}
	return path, nil
}

// Filename is the name a ticket for r is saved under.
func Filename(r domain.Reserva) string {
	return fmt.Sprintf("reserva-%d-viaje-%d.pdf", r.ID, r.Viaje.Numero)
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
