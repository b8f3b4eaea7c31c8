package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// savedCookie is the on-disk form of a session cookie.
type savedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
}

// FileJar is a cookie jar that mirrors the API origin's cookies to a file
// so a session survives between runs. Cookies for other hosts stay in memory.
type FileJar struct {
	mu      sync.Mutex
	inner   *cookiejar.Jar
	origin  *url.URL
	path    string
	cookies map[string]savedCookie
	now     func() time.Time
}

// OpenFileJar loads the cookies saved at path for the given API origin.
// A missing file yields an empty jar. Expired cookies are dropped, including
// JWT-valued cookies whose exp claim has passed.
func OpenFileJar(path, baseURL string) (*FileJar, error) {
	origin, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client.OpenFileJar: parse base url: %w", err)
	}
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("client.OpenFileJar: %w", err)
	}
	j := &FileJar{
		inner:   inner,
		origin:  origin,
		path:    path,
		cookies: make(map[string]savedCookie),
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return j, nil
	}
	if err != nil {
		return nil, fmt.Errorf("client.OpenFileJar: read %s: %w", path, err)
	}
	var saved []savedCookie
	if err := json.Unmarshal(data, &saved); err != nil {
		// A corrupt file only costs the user a login.
		log.Printf("cookies: ignoring unreadable %s: %v", path, err)
		return j, nil
	}

	var restore []*http.Cookie
	for _, sc := range saved {
		if j.expired(sc) {
			continue
		}
		j.cookies[sc.Name] = sc
		restore = append(restore, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: sc.Path, Expires: sc.Expires})
	}
	j.inner.SetCookies(origin, restore)
	return j, nil
}

// SetCookies implements http.CookieJar.
func (j *FileJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)
	if u.Host != j.origin.Host {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	for _, c := range cookies {
		// MaxAge<0 or an Expires in the past is how servers delete cookies.
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(j.now())) || c.Value == "" {
			delete(j.cookies, c.Name)
			continue
		}
		sc := savedCookie{Name: c.Name, Value: c.Value, Path: c.Path, Expires: c.Expires}
		if c.MaxAge > 0 {
			sc.Expires = j.now().Add(time.Duration(c.MaxAge) * time.Second)
		}
		j.cookies[c.Name] = sc
	}
	if err := j.saveLocked(); err != nil {
		log.Printf("cookies: %v", err)
	}
}

// Cookies implements http.CookieJar.
func (j *FileJar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// Clear forgets every cookie for the API origin and removes the file.
func (j *FileJar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	expire := make([]*http.Cookie, 0, len(j.cookies))
	for _, sc := range j.cookies {
		expire = append(expire, &http.Cookie{Name: sc.Name, Path: sc.Path, MaxAge: -1})
	}
	j.inner.SetCookies(j.origin, expire)
	j.cookies = make(map[string]savedCookie)

	if err := os.Remove(j.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("client.FileJar.Clear: %w", err)
	}
	return nil
}

// Len returns the number of persisted cookies.
func (j *FileJar) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.cookies)
}

func (j *FileJar) expired(sc savedCookie) bool {
	now := j.now()
	if !sc.Expires.IsZero() && sc.Expires.Before(now) {
		return true
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(sc.Value, claims); err != nil {
		return false // not a JWT; the cookie's own expiry is all we know
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}

func (j *FileJar) saveLocked() error {
	if j.path == "" {
		return nil
	}
	saved := make([]savedCookie, 0, len(j.cookies))
	for _, sc := range j.cookies {
		saved = append(saved, sc)
	}
	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cookies: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0700); err != nil {
		return fmt.Errorf("create cookie dir: %w", err)
	}
	if err := os.WriteFile(j.path, data, 0600); err != nil {
		return fmt.Errorf("save cookies: %w", err)
	}
	return nil
}
