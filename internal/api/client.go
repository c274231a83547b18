package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ecocharge/console/internal/logging"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second
)

// Endpoint paths on the charging service.
const (
	connectPath        = "/connect"
	loginPath          = "/admin/login"
	dashboardStatsPath = "/admin/dashboard_stats"
)

// Client is an HTTP client for the EcoCharge charging service.
//
// The service owns all business logic (tariffs, slot assignment, source
// selection, authentication); the client only submits intents and reads
// state. One client is shared across flows and the sync loop's overlapping
// fetches, so the token is guarded: SetToken may run concurrently with
// in-flight requests.
type Client struct {
	// BaseURL is the base address of the service (e.g., "http://127.0.0.1:8000")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// token is the admin credential attached to dashboard requests when set.
	// Guarded by mu: overlapping poll fetches read it while SetToken writes.
	mu    sync.RWMutex
	token string
}

// NewClient creates a new service client for the given base address.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetToken attaches an admin credential to subsequent requests.
// An empty token detaches it. Safe to call while requests are in flight.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// bearerToken returns the current credential under the read lock.
func (c *Client) bearerToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// errorBody is the error payload shape used by the service on non-2xx.
type errorBody struct {
	Detail string `json:"detail"`
}

// Connect submits a connection request for a vehicle and returns the
// authorization outcome. A non-success response is returned as a request
// failure carrying the server's detail message.
func (c *Client) Connect(ctx context.Context, req ConnectRequest) (*ConnectionOutcome, error) {
	var outcome ConnectionOutcome
	if err := c.postJSON(ctx, connectPath, req, &outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}

// Login authenticates an administrator and returns the credential token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp LoginResponse
	req := LoginRequest{Username: username, Password: password}
	if err := c.postJSON(ctx, loginPath, req, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", NewRequestError(http.StatusOK, "login response carried no token")
	}
	return resp.Token, nil
}

// DashboardStats fetches a point-in-time snapshot of network state.
func (c *Client) DashboardStats(ctx context.Context) (*DashboardSnapshot, error) {
	var snapshot DashboardSnapshot
	if err := c.getJSON(ctx, dashboardStatsPath, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// postJSON issues a POST with a JSON body and decodes a JSON response.
func (c *Client) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return NewValidationError(fmt.Sprintf("failed to encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return NewTransportError("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

// getJSON issues a GET and decodes a JSON response.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return NewTransportError("failed to create request", err)
	}

	return c.do(req, out)
}

// do executes a request, mapping non-2xx responses to request failures and
// connection-level errors to transport failures.
func (c *Client) do(req *http.Request, out interface{}) error {
	if token := c.bearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logging.LogRequest(req.Method, req.URL.String())
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return NewTransportError("request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	logging.LogResponse(req.Method, req.URL.String(), resp.StatusCode, time.Since(start))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewTransportError("failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		// Best effort: a body that isn't the expected shape still yields
		// the generic fallback via NewRequestError.
		_ = json.Unmarshal(respBody, &eb)
		return NewRequestError(resp.StatusCode, eb.Detail)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return NewRequestError(resp.StatusCode, fmt.Sprintf("malformed response: %v", err))
	}

	return nil
}
