// Package devserver is an in-memory stand-in for the Quilmes backend. It
// serves the same REST surface the client consumes and is used by tests and
// by "quilmes devserver" for offline work.
package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/puroquilmes/quilmes/pkg/domain"
)

// SessionCookie is the name of the session cookie the server issues.
const SessionCookie = "QSESSION"

const sessionTTL = 12 * time.Hour

type account struct {
	domain.CurrentUser
	hash []byte
}

type reserva struct {
	id       int64
	userID   int64
	viajeID  int64
	cantidad int
	estado   bool
}

// Server holds the backend state. All handlers take the mutex.
type Server struct {
	secret []byte
	now    func() time.Time

	mu       sync.Mutex
	accounts map[int64]*account
	byEmail  map[string]int64
	viajes   map[int64]*domain.Viaje
	reservas map[int64]*reserva
	zonas    []domain.Zona
	tipos    []domain.TipoLugar
	lugares  map[int64]domain.Lugar
	failures map[string]int
	nextID   int64
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithSecret sets the key session cookies are signed with.
func WithSecret(secret []byte) Option {
	return func(s *Server) { s.secret = secret }
}

// New returns an empty server. Use Seed for demo data.
func New(opts ...Option) *Server {
	s := &Server{
		secret:   []byte(uuid.NewString()),
		now:      time.Now,
		accounts: make(map[int64]*account),
		byEmail:  make(map[string]int64),
		viajes:   make(map[int64]*domain.Viaje),
		reservas: make(map[int64]*reserva),
		lugares:  make(map[int64]domain.Lugar),
		failures: make(map[string]int),
		nextID:   100,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the router for the API.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests, s.injectFailures)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/check", s.handleCheck).Methods(http.MethodGet)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/users/current", s.handleCurrent).Methods(http.MethodGet)
	api.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)

	api.HandleFunc("/viajes/disponibles", s.handleViajes).Methods(http.MethodGet)

	api.HandleFunc("/reservas", s.handleCreateReserva).Methods(http.MethodPost)
	api.HandleFunc("/reservas/usuario/{id:[0-9]+}", s.handleUserReservas).Methods(http.MethodGet)
	api.HandleFunc("/reservas/{id:[0-9]+}/cancelar", s.handleCancelReserva).Methods(http.MethodPut)

	api.HandleFunc("/zonas", s.handleZonas).Methods(http.MethodGet)
	api.HandleFunc("/lugares", s.handleLugares).Methods(http.MethodGet)
	api.HandleFunc("/lugares", s.handleCreateLugar).Methods(http.MethodPost)
	api.HandleFunc("/lugares/{id:[0-9]+}", s.handleDeleteLugar).Methods(http.MethodDelete)
	return r
}

// Fail makes every request matching "METHOD /path/template" answer status
// until cleared with status 0. Templates use the router's form, e.g.
// "PUT /api/reservas/{id:[0-9]+}/cancelar".
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, route)
		return
	}
	s.failures[route] = status
}

// AddUser registers an account and returns its id.
func (s *Server) AddUser(email, password, nombre, apellido, rol string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(email, password, nombre, apellido, rol, nil, nil)
}

// AddViaje stores a trip. A zero ID is assigned.
func (s *Server) AddViaje(v domain.Viaje) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == 0 {
		v.ID = s.id()
	}
	s.viajes[v.ID] = &v
	return v.ID
}

// Viaje returns a copy of the stored trip.
func (s *Server) Viaje(id int64) (domain.Viaje, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.viajes[id]
	if !ok {
		return domain.Viaje{}, false
	}
	return *v, true
}

// AddZona stores a zone.
func (s *Server) AddZona(nombre string) domain.Zona {
	s.mu.Lock()
	defer s.mu.Unlock()
	z := domain.Zona{ID: s.id(), Nombre: nombre}
	s.zonas = append(s.zonas, z)
	return z
}

// AddTipoLugar stores a place type.
func (s *Server) AddTipoLugar(nombre string) domain.TipoLugar {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := domain.TipoLugar{ID: s.id(), Nombre: nombre}
	s.tipos = append(s.tipos, t)
	return t
}

// Lugares returns the stored places ordered by id.
func (s *Server) Lugares() []domain.Lugar {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lugaresLocked()
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Server) addUserLocked(email, password, nombre, apellido, rol string, dni, tel *int64) (int64, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if _, dup := s.byEmail[key]; dup {
		return 0, errEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return 0, fmt.Errorf("devserver: hash password: %w", err)
	}
	activo := 1
	a := &account{
		CurrentUser: domain.CurrentUser{
			ID:       s.id(),
			Email:    key,
			Nombre:   nombre,
			Apellido: apellido,
			DNI:      dni,
			Telefono: tel,
			Estado:   &activo,
			Rol:      domain.Rol{ID: rolID(rol), Nombre: rol},
		},
		hash: hash,
	}
	s.accounts[a.ID] = a
	s.byEmail[key] = a.ID
	return a.ID, nil
}

var errEmailTaken = errors.New("El email ya está registrado")

func rolID(rol string) int64 {
	if strings.EqualFold(rol, "admin") {
		return 1
	}
	return 2
}

// --- middleware ---

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("devserver: %s %s [%s]", r.Method, r.URL.Path, r.Header.Get("X-Request-ID"))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				s.mu.Lock()
				status := s.failures[r.Method+" "+tpl]
				s.mu.Unlock()
				if status != 0 {
					respondError(w, status, http.StatusText(status))
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// --- session ---

func (s *Server) issueSession(w http.ResponseWriter, userID int64) error {
	now := s.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(sessionTTL).Unix(),
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("devserver: sign session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Expires:  now.Add(sessionTTL),
	})
	return nil
}

// sessionUser returns the account behind the request's session cookie.
// Callers hold s.mu.
func (s *Server) sessionUser(r *http.Request) (*account, bool) {
	ck, err := r.Cookie(SessionCookie)
	if err != nil || ck.Value == "" {
		return nil, false
	}
	tok, err := jwt.Parse(ck.Value, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tok.Valid {
		return nil, false
	}
	sub, err := tok.Claims.GetSubject()
	if err != nil {
		return nil, false
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, false
	}
	a, ok := s.accounts[id]
	return a, ok
}

func identity(a *account) domain.Identity {
	return domain.Identity{ID: a.ID, Email: a.Email, Nombre: a.Nombre, Apellido: a.Apellido, Rol: a.Rol.Nombre}
}

// --- auth handlers ---

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	a, ok := s.sessionUser(r)
	s.mu.Unlock()
	if !ok {
		respondJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"authenticated": true, "user": identity(a)})
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	a, ok := s.sessionUser(r)
	s.mu.Unlock()
	if !ok {
		respondError(w, http.StatusUnauthorized, "No autenticado")
		return
	}
	respondJSON(w, http.StatusOK, a.CurrentUser)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Cuerpo inválido")
		return
	}

	s.mu.Lock()
	var a *account
	if id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(req.Email))]; ok {
		a = s.accounts[id]
	}
	s.mu.Unlock()

	if a == nil || bcrypt.CompareHashAndPassword(a.hash, []byte(req.Password)) != nil {
		respondJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Credenciales inválidas"})
		return
	}
	if err := s.issueSession(w, a.ID); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "user": identity(a)})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "Formulario inválido")
		return
	}
	f := r.PostForm
	for _, k := range []string{"nombre", "apellido", "email", "dni", "telefono", "clave"} {
		if strings.TrimSpace(f.Get(k)) == "" {
			respondError(w, http.StatusBadRequest, "Falta el campo "+k)
			return
		}
	}
	dni, err := strconv.ParseInt(f.Get("dni"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "DNI inválido")
		return
	}
	tel, err := strconv.ParseInt(f.Get("telefono"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Teléfono inválido")
		return
	}

	s.mu.Lock()
	_, err = s.addUserLocked(f.Get("email"), f.Get("clave"), f.Get("nombre"), f.Get("apellido"), "cliente", &dni, &tel)
	s.mu.Unlock()
	if errors.Is(err, errEmailTaken) {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	w.Write([]byte("Usuario registrado")) //nolint:errcheck
}

// --- viajes & reservas ---

func (s *Server) handleViajes(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]domain.Viaje, 0, len(s.viajes))
	for _, v := range s.viajes {
		if v.Reservable() {
			out = append(out, *v)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Fecha.Equal(out[j].Fecha.Time) {
			return out[i].ID < out[j].ID
		}
		return out[i].Fecha.Before(out[j].Fecha.Time)
	})
	respondJSON(w, http.StatusOK, out)
}

type reservaJSON struct {
	ID                int64        `json:"pasajero_id"`
	CantidadPasajeros int          `json:"cantidad_pasajeros"`
	Estado            bool         `json:"estado"`
	Viaje             domain.Viaje `json:"viaje"`
}

func (s *Server) reservaJSONLocked(res *reserva) reservaJSON {
	out := reservaJSON{ID: res.id, CantidadPasajeros: res.cantidad, Estado: res.estado}
	if v, ok := s.viajes[res.viajeID]; ok {
		out.Viaje = *v
	}
	return out
}

func (s *Server) handleCreateReserva(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ViajeID           int64 `json:"viajeId"`
		UserID            int64 `json:"userId"`
		CantidadPasajeros int   `json:"cantidadPasajeros"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Cuerpo inválido")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.sessionUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Debes iniciar sesión")
		return
	}
	if a.ID != req.UserID {
		respondError(w, http.StatusForbidden, "No puedes reservar para otro usuario")
		return
	}
	v, ok := s.viajes[req.ViajeID]
	if !ok {
		respondError(w, http.StatusNotFound, "Viaje no encontrado")
		return
	}
	if !v.Estado {
		respondError(w, http.StatusConflict, "El viaje no está activo")
		return
	}
	if req.CantidadPasajeros < 1 || req.CantidadPasajeros > v.LugarDisponible {
		respondError(w, http.StatusConflict, "No hay lugares suficientes")
		return
	}
	v.LugarDisponible -= req.CantidadPasajeros
	res := &reserva{id: s.id(), userID: a.ID, viajeID: v.ID, cantidad: req.CantidadPasajeros, estado: true}
	s.reservas[res.id] = res
	respondJSON(w, http.StatusCreated, s.reservaJSONLocked(res))
}

func (s *Server) handleUserReservas(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64) //nolint:errcheck // route regexp guarantees digits

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.sessionUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Debes iniciar sesión")
		return
	}
	if a.ID != userID && !strings.EqualFold(a.Rol.Nombre, "admin") {
		respondError(w, http.StatusForbidden, "Acceso denegado")
		return
	}
	out := []reservaJSON{}
	for _, res := range s.reservas {
		if res.userID == userID {
			out = append(out, s.reservaJSONLocked(res))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCancelReserva(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64) //nolint:errcheck // route regexp guarantees digits

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.sessionUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Debes iniciar sesión")
		return
	}
	res, ok := s.reservas[id]
	if !ok || res.userID != a.ID {
		respondError(w, http.StatusNotFound, "Reserva no encontrada")
		return
	}
	if !res.estado {
		respondError(w, http.StatusConflict, "La reserva ya está cancelada")
		return
	}
	res.estado = false
	if v, ok := s.viajes[res.viajeID]; ok {
		v.LugarDisponible += res.cantidad
	}
	respondJSON(w, http.StatusOK, s.reservaJSONLocked(res))
}

// --- lugares ---

func (s *Server) handleZonas(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := append([]domain.Zona{}, s.zonas...)
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) lugaresLocked() []domain.Lugar {
	out := make([]domain.Lugar, 0, len(s.lugares))
	for _, l := range s.lugares {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) handleLugares(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := s.lugaresLocked()
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) requireAdminLocked(w http.ResponseWriter, r *http.Request) bool {
	a, ok := s.sessionUser(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Debes iniciar sesión")
		return false
	}
	if !identity(a).User().IsAdmin() {
		respondError(w, http.StatusForbidden, "Solo administradores")
		return false
	}
	return true
}

func (s *Server) handleCreateLugar(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "Formulario inválido")
		return
	}
	f := r.PostForm

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.requireAdminLocked(w, r) {
		return
	}
	nombre := strings.TrimSpace(f.Get("nombre"))
	if nombre == "" {
		respondError(w, http.StatusBadRequest, "El nombre es obligatorio")
		return
	}
	l := domain.Lugar{
		ID:          s.id(),
		Nombre:      nombre,
		Ubicacion:   f.Get("ubicacion"),
		Descripcion: f.Get("descripcion"),
	}
	if zid, err := strconv.ParseInt(f.Get("zonaId"), 10, 64); err == nil {
		for _, z := range s.zonas {
			if z.ID == zid {
				z := z
				l.Zona = &z
			}
		}
	}
	if l.Zona == nil {
		respondError(w, http.StatusBadRequest, "Zona inválida")
		return
	}
	if tid, err := strconv.ParseInt(f.Get("tipoLugarId"), 10, 64); err == nil {
		for _, t := range s.tipos {
			if t.ID == tid {
				t := t
				l.TipoLugar = &t
			}
		}
	}
	s.lugares[l.ID] = l
	respondJSON(w, http.StatusCreated, l)
}

func (s *Server) handleDeleteLugar(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64) //nolint:errcheck // route regexp guarantees digits

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.requireAdminLocked(w, r) {
		return
	}
	if _, ok := s.lugares[id]; !ok {
		respondError(w, http.StatusNotFound, "Lugar no encontrado")
		return
	}
	delete(s.lugares, id)
	w.WriteHeader(http.StatusNoContent)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data) //nolint:errcheck
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
