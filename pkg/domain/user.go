package domain

import (
	"strings"
	"unicode/utf8"
)

// User is the authenticated account held by the session.
// DNI, Telefono and Estado are only known when the full profile
// (/api/users/current) could be fetched.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Rol      string `json:"rol"`
	DNI      *int64 `json:"dni,omitempty"`
	Telefono *int64 `json:"telefono,omitempty"`
	Estado   *int   `json:"estado,omitempty"`
}

// FullName returns "Nombre Apellido".
func (u User) FullName() string {
	return strings.TrimSpace(u.Nombre + " " + u.Apellido)
}

// Initials returns the upper-cased first letters of nombre and apellido.
func (u User) Initials() string {
	return strings.ToUpper(firstRune(u.Nombre) + firstRune(u.Apellido))
}

// IsAdmin reports whether the user may manage places.
func (u User) IsAdmin() bool {
	switch strings.ToLower(strings.TrimSpace(u.Rol)) {
	case "admin", "administrador":
		return true
	}
	return false
}

// Active reports the account state. A missing estado counts as active.
func (u User) Active() bool {
	return u.Estado == nil || *u.Estado == 1
}

// HasFullProfile reports whether the contact fields were resolved.
func (u User) HasFullProfile() bool {
	return u.DNI != nil && *u.DNI > 0 && u.Telefono != nil && *u.Telefono > 0
}

func firstRune(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return ""
	}
	return string(r)
}

// Identity is the minimal user record returned by the auth check and
// login endpoints.
type Identity struct {
	ID       int64  `json:"usu_id"`
	Email    string `json:"email"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Rol      string `json:"rol"`
}

// User converts the minimal identity into a session user.
func (i Identity) User() User {
	return User{
		ID:       i.ID,
		Email:    i.Email,
		Nombre:   i.Nombre,
		Apellido: i.Apellido,
		Rol:      i.Rol,
	}
}

// Rol is the nested role object of the full user record.
type Rol struct {
	ID     int64  `json:"rol_id,omitempty"`
	Nombre string `json:"nombre"`
}

// CurrentUser is the full record served by /api/users/current.
type CurrentUser struct {
	ID       int64  `json:"usu_id"`
	Email    string `json:"email"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	DNI      *int64 `json:"dni,omitempty"`
	Telefono *int64 `json:"telefono,omitempty"`
	Estado   *int   `json:"estado,omitempty"`
	Rol      Rol    `json:"rol"`
}

// User converts the full record into a session user.
func (c CurrentUser) User() User {
	return User{
		ID:       c.ID,
		Email:    c.Email,
		Nombre:   c.Nombre,
		Apellido: c.Apellido,
		Rol:      c.Rol.Nombre,
		DNI:      c.DNI,
		Telefono: c.Telefono,
		Estado:   c.Estado,
	}
}
