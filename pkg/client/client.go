package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/puroquilmes/quilmes/pkg/domain"
)

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 30 * time.Second

// Client is the Quilmes API client. Session identity travels in cookies
// held by the client's jar; no bearer token is ever attached.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client. A nil jar gets a fresh in-memory jar.
func New(baseURL string, jar http.CookieJar, timeout time.Duration) *Client {
	if jar == nil {
		jar, _ = cookiejar.New(nil) //nolint:errcheck // cookiejar.New never fails with nil options
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

// BaseURL returns the API origin the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- Auth ---

// AuthCheck is the response of GET /api/auth/check.
type AuthCheck struct {
	Authenticated bool             `json:"authenticated"`
	User          *domain.Identity `json:"user,omitempty"`
}

// LoginResult is the response of POST /api/auth/login.
type LoginResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	User    *domain.Identity `json:"user,omitempty"`
}

// CheckAuth asks the backend whether the ambient session is authenticated.
func (c *Client) CheckAuth(ctx context.Context) (*AuthCheck, error) {
	var check AuthCheck
	if err := c.get(ctx, "/api/auth/check", &check); err != nil {
		return nil, fmt.Errorf("client.CheckAuth: %w", err)
	}
	return &check, nil
}

// CurrentUser returns the full record of the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (*domain.CurrentUser, error) {
	var u domain.CurrentUser
	if err := c.get(ctx, "/api/users/current", &u); err != nil {
		return nil, fmt.Errorf("client.CurrentUser: %w", err)
	}
	return &u, nil
}

// Login posts credentials. The backend answers with a session cookie on success.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var res LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "/api/auth/login", body, &res); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &res, nil
}

// Logout ends the server session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	Nombre   string
	Apellido string
	Email    string
	DNI      string
	Telefono string
	Clave    string
}

func (r RegisterRequest) form() url.Values {
	v := url.Values{}
	v.Set("nombre", r.Nombre)
	v.Set("apellido", r.Apellido)
	v.Set("email", r.Email)
	v.Set("dni", r.DNI)
	v.Set("telefono", r.Telefono)
	v.Set("clave", r.Clave)
	return v
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.postForm(ctx, "/api/register", req.form(), nil); err != nil {
		return fmt.Errorf("client.Register: %w", err)
	}
	return nil
}

// --- Viajes ---

// ListAvailableTrips fetches the trips the backend considers bookable.
func (c *Client) ListAvailableTrips(ctx context.Context) ([]domain.Viaje, error) {
	var viajes []domain.Viaje
	if err := c.get(ctx, "/api/viajes/disponibles", &viajes); err != nil {
		return nil, fmt.Errorf("client.ListAvailableTrips: %w", err)
	}
	return viajes, nil
}

// --- Reservas ---

// CreateReservationRequest is the payload for booking seats on a trip.
type CreateReservationRequest struct {
	ViajeID           int64 `json:"viajeId"`
	UserID            int64 `json:"userId"`
	CantidadPasajeros int   `json:"cantidadPasajeros"`
}

// CreateReservation books seats. Any 2xx counts as success; the body is ignored.
func (c *Client) CreateReservation(ctx context.Context, req CreateReservationRequest) error {
	if err := c.post(ctx, "/api/reservas", req, nil); err != nil {
		return fmt.Errorf("client.CreateReservation: %w", err)
	}
	return nil
}

// ListUserReservations returns every reservation of a user, active or not.
func (c *Client) ListUserReservations(ctx context.Context, userID int64) ([]domain.Reserva, error) {
	var reservas []domain.Reserva
	path := "/api/reservas/usuario/" + url.PathEscape(strconv.FormatInt(userID, 10))
	if err := c.get(ctx, path, &reservas); err != nil {
		return nil, fmt.Errorf("client.ListUserReservations: %w", err)
	}
	return reservas, nil
}

// CancelReservation marks a reservation cancelled.
func (c *Client) CancelReservation(ctx context.Context, id int64) error {
	path := "/api/reservas/" + url.PathEscape(strconv.FormatInt(id, 10)) + "/cancelar"
	if err := c.doRequest(ctx, http.MethodPut, path, nil, nil); err != nil {
		return fmt.Errorf("client.CancelReservation: %w", err)
	}
	return nil
}

// --- Lugares ---

// ListZones returns the zone reference data.
func (c *Client) ListZones(ctx context.Context) ([]domain.Zona, error) {
	var zonas []domain.Zona
	if err := c.get(ctx, "/api/zonas", &zonas); err != nil {
		return nil, fmt.Errorf("client.ListZones: %w", err)
	}
	return zonas, nil
}

// ListPlaces returns all places.
func (c *Client) ListPlaces(ctx context.Context) ([]domain.Lugar, error) {
	var lugares []domain.Lugar
	if err := c.get(ctx, "/api/lugares", &lugares); err != nil {
		return nil, fmt.Errorf("client.ListPlaces: %w", err)
	}
	return lugares, nil
}

// CreatePlaceRequest is the admin form for a new place.
type CreatePlaceRequest struct {
	Nombre      string
	Ubicacion   string
	Descripcion string
	ZonaID      int64
	TipoLugarID int64
}

func (r CreatePlaceRequest) form() url.Values {
	v := url.Values{}
	v.Set("nombre", r.Nombre)
	v.Set("ubicacion", r.Ubicacion)
	v.Set("descripcion", r.Descripcion)
	v.Set("zonaId", strconv.FormatInt(r.ZonaID, 10))
	v.Set("tipoLugarId", strconv.FormatInt(r.TipoLugarID, 10))
	return v
}

// CreatePlace adds a place. The created record is decoded when the backend returns one.
func (c *Client) CreatePlace(ctx context.Context, req CreatePlaceRequest) (*domain.Lugar, error) {
	var created domain.Lugar
	if err := c.postForm(ctx, "/api/lugares", req.form(), &created); err != nil {
		return nil, fmt.Errorf("client.CreatePlace: %w", err)
	}
	return &created, nil
}

// DeletePlace removes a place.
func (c *Client) DeletePlace(ctx context.Context, id int64) error {
	path := "/api/lugares/" + url.PathEscape(strconv.FormatInt(id, 10))
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("client.DeletePlace: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.send(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	if body == nil {
		return c.send(ctx, method, path, nil, "", out)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	return c.send(ctx, method, path, bytes.NewReader(data), "application/json", out)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Body: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Message != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message, Body: string(respBody)}
			}
			if apiErr.Error != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error, Body: string(respBody)}
			}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	// Create/delete endpoints may answer 201/204 with an empty or non-JSON body.
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "json") {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
