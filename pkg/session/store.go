// Package session holds the process-wide authenticated user and the
// operations that change it.
package session

import (
	"context"
	"log"
	"sync"

	"github.com/puroquilmes/quilmes/pkg/client"
	"github.com/puroquilmes/quilmes/pkg/domain"
)

// Authenticator is the slice of the API the store needs.
type Authenticator interface {
	CheckAuth(ctx context.Context) (*client.AuthCheck, error)
	CurrentUser(ctx context.Context) (*domain.CurrentUser, error)
	Login(ctx context.Context, email, password string) (*client.LoginResult, error)
	Logout(ctx context.Context) error
}

// Store owns the session. Bubbletea commands run on their own goroutines,
// so every access goes through the mutex.
type Store struct {
	api Authenticator

	mu      sync.RWMutex
	user    *domain.User
	loading bool
}

// New returns a store in the loading state, ready for CheckStatus.
func New(api Authenticator) *Store {
	return &Store{api: api, loading: true}
}

// User returns a copy of the current user, or nil when signed out.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsLoading reports whether the bootstrap check is still pending.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Snapshot returns the session as a value.
func (s *Store) Snapshot() domain.Session {
	return domain.Session{User: s.User(), IsLoading: s.IsLoading()}
}

// CheckStatus asks the backend whether the ambient session cookie is valid
// and resolves the user. Any failure, including an authenticated answer
// without a user, leaves the session signed out.
func (s *Store) CheckStatus(ctx context.Context) {
	defer s.setLoading(false)

	check, err := s.api.CheckAuth(ctx)
	if err != nil {
		log.Printf("session: check failed: %v", err)
		s.setUser(nil)
		return
	}
	if !check.Authenticated || check.User == nil {
		log.Printf("session: not authenticated")
		s.setUser(nil)
		return
	}

	u := s.resolve(ctx, *check.User)
	s.setUser(&u)
}

// Login posts the credentials and resolves the user on success. It reports
// false for rejected credentials, for a success without a user, and for
// requests that never completed.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	s.setLoading(true)
	defer s.setLoading(false)

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		log.Printf("session: login failed: %v", err)
		s.setUser(nil)
		return false
	}
	if !res.Success || res.User == nil {
		log.Printf("session: login rejected: %s", res.Message)
		s.setUser(nil)
		return false
	}

	u := s.resolve(ctx, *res.User)
	s.setUser(&u)
	return true
}

// Logout ends the server session. The local user is cleared even when the
// request fails.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		log.Printf("session: logout request failed: %v", err)
	}
	s.mu.Lock()
	s.user = nil
	s.loading = false
	s.mu.Unlock()
}

// resolve prefers the full /api/users/current record and falls back to the
// identity returned by the check or login call.
func (s *Store) resolve(ctx context.Context, fallback domain.Identity) domain.User {
	full, err := s.api.CurrentUser(ctx)
	if err != nil {
		log.Printf("session: current user unavailable, using fallback for %d: %v", fallback.ID, err)
		return fallback.User()
	}
	u := full.User()
	if u.ID == 0 {
		u.ID = fallback.ID
	}
	if u.Email == "" {
		u.Email = fallback.Email
	}
	if u.Nombre == "" {
		u.Nombre = fallback.Nombre
	}
	if u.Apellido == "" {
		u.Apellido = fallback.Apellido
	}
	if u.Rol == "" {
		u.Rol = fallback.Rol
	}
	return u
}

func (s *Store) setUser(u *domain.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
