package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// fechaLayouts are the timestamp shapes the backend is known to emit.
// The zone-less forms are what a Java LocalDateTime serializes to.
var fechaLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Fecha is a trip timestamp that tolerates the backend's date formats.
type Fecha struct {
	time.Time
}

// NewFecha wraps t.
func NewFecha(t time.Time) Fecha {
	return Fecha{Time: t}
}

// ParseFecha parses s using the known backend layouts.
func ParseFecha(s string) (Fecha, error) {
	s = strings.TrimSpace(s)
	for _, layout := range fechaLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Fecha{Time: t}, nil
		}
	}
	return Fecha{}, fmt.Errorf("domain.ParseFecha: unrecognized date %q", s)
}

// UnmarshalJSON accepts a string timestamp, epoch milliseconds, or null.
func (f *Fecha) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = Fecha{}
		return nil
	}
	if data[0] != '"' {
		var ms int64
		if err := json.Unmarshal(data, &ms); err != nil {
			return fmt.Errorf("domain.Fecha: %w", err)
		}
		*f = Fecha{Time: time.UnixMilli(ms)}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("domain.Fecha: %w", err)
	}
	if s == "" {
		*f = Fecha{}
		return nil
	}
	parsed, err := ParseFecha(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// MarshalJSON writes the zone-less layout the backend accepts.
func (f Fecha) MarshalJSON() ([]byte, error) {
	if f.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Format("2006-01-02T15:04:05"))
}

var (
	diasSemana = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}
	meses      = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
		"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}
)

// Largo renders the long Spanish form, e.g. "lunes, 10 de julio de 2025, 10:00".
func (f Fecha) Largo() string {
	if f.IsZero() {
		return "fecha a confirmar"
	}
	t := f.Time
	return fmt.Sprintf("%s, %d de %s de %d, %02d:%02d",
		diasSemana[t.Weekday()], t.Day(), meses[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// Corto renders "10/07/2025 10:00".
func (f Fecha) Corto() string {
	if f.IsZero() {
		return "--/--/---- --:--"
	}
	return f.Format("02/01/2006 15:04")
}
