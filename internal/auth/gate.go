package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ecocharge/console/internal/logging"
	"go.uber.org/zap"
)

// ErrLoginInFlight is returned by Login while another login is pending.
var ErrLoginInFlight = errors.New("login request already in flight")

// Authenticator issues login requests. *api.Client satisfies it; tests
// substitute fakes.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Gate owns the authenticated/unauthenticated state for the admin view.
//
// Trust-on-presence: a credential found in the store at Resume time opens the
// gate without contacting the service. No expiry or liveness check is
// performed client-side; a stale token simply makes the first dashboard fetch
// fail, which the sync loop already tolerates. Callers needing stronger
// guarantees must add an explicit liveness check themselves.
//
// One login in flight at a time is a structural invariant: Login refuses to
// start while another login is pending.
type Gate struct {
	mu            sync.Mutex
	store         Store
	authenticator Authenticator

	authenticated bool
	pending       bool
	token         string
	username      string
}

// NewGate creates a closed gate backed by the given store and authenticator.
func NewGate(store Store, authenticator Authenticator) *Gate {
	return &Gate{store: store, authenticator: authenticator}
}

// Resume loads the persisted credential. If one is present the gate opens
// immediately, without any network call. Returns whether the gate is open.
func (g *Gate) Resume() (bool, error) {
	token, err := g.store.Load()
	if err != nil {
		return false, fmt.Errorf("failed to load credential: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if token != "" {
		g.authenticated = true
		g.token = token
		logging.Info("Found persisted credential, resuming authenticated")
	} else {
		logging.Debug("No persisted credential, gate stays closed")
	}

	return g.authenticated, nil
}

// Login authenticates against the service. On success the credential is
// persisted and the gate opens; on failure the gate stays closed and the
// error carries the server-supplied reason.
func (g *Gate) Login(ctx context.Context, username, password string) error {
	g.mu.Lock()
	if g.pending {
		g.mu.Unlock()
		return ErrLoginInFlight
	}
	g.pending = true
	g.mu.Unlock()

	token, err := g.authenticator.Login(ctx, username, password)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = false

	if err != nil {
		logging.Warn("Login failed", zap.String("username", username), zap.Error(err))
		return err
	}

	if err := g.store.Save(token); err != nil {
		return fmt.Errorf("login succeeded but credential could not be persisted: %w", err)
	}

	g.authenticated = true
	g.token = token
	g.username = username

	logging.Info("Login successful", zap.String("username", username))
	return nil
}

// Logout deletes the persisted credential, clears in-memory identity, and
// closes the gate. The gate's owner must stop any sync loop it gated open.
func (g *Gate) Logout() error {
	if err := g.store.Clear(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.authenticated = false
	g.token = ""
	g.username = ""

	logging.Info("Logged out, credential removed")
	return nil
}

// Authenticated reports whether the gate is open.
func (g *Gate) Authenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authenticated
}

// Pending reports whether a login request is in flight.
func (g *Gate) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

// Token returns the active credential, or "" while the gate is closed.
func (g *Gate) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token
}

// Username returns the identity used for the active session, if the session
// was opened by Login rather than Resume.
func (g *Gate) Username() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.username
}
