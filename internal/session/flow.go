package session

import (
	"context"
	"errors"
	"sync"

	"github.com/ecocharge/console/internal/api"
	"github.com/ecocharge/console/internal/logging"
	"github.com/ecocharge/console/internal/vehicle"
	"go.uber.org/zap"
)

// State is the connection-request lifecycle state.
type State int

const (
	// StateIdle means no request is in flight and no session is authorized.
	StateIdle State = iota
	// StateSubmitting means a connect request is in flight. The flow rejects
	// further submissions until the outcome is applied.
	StateSubmitting
	// StateAuthorized means the service accepted the session; the outcome is
	// held until Reset.
	StateAuthorized
)

// String returns a human-readable name for the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateSubmitting:
		return "SUBMITTING"
	case StateAuthorized:
		return "AUTHORIZED"
	default:
		return "UNKNOWN"
	}
}

// Lifecycle misuse errors. These indicate a caller bug, not an operator
// mistake, and are never surfaced as notifications.
var (
	// ErrRequestInFlight is returned by Begin while a request is pending.
	ErrRequestInFlight = errors.New("connection request already in flight")

	// ErrSessionActive is returned by Begin while a session is authorized;
	// the flow must be Reset first.
	ErrSessionActive = errors.New("session already authorized; disconnect first")

	// ErrNotSubmitting is returned by Complete/Fail outside StateSubmitting.
	ErrNotSubmitting = errors.New("no connection request in flight")
)

// Connector issues connect requests. *api.Client satisfies it; tests
// substitute fakes.
type Connector interface {
	Connect(ctx context.Context, req api.ConnectRequest) (*api.ConnectionOutcome, error)
}

// Flow is the connection-request lifecycle:
//
//	IDLE -> SUBMITTING -> AUTHORIZED -> IDLE (via Reset)
//	                  \-> IDLE (on failure, reason recorded)
//
// "One request in flight" is a structural invariant here, not a disabled
// button: Begin refuses to leave StateIdle twice, so a rapid double-submit
// cannot create two server-side sessions for one identifier.
//
// Interactive drivers split the transition: Begin validates and claims the
// in-flight slot, the driver performs the request off the update loop, then
// Complete or Fail applies the result. Headless callers use Submit, which
// does all three.
type Flow struct {
	mu      sync.Mutex
	client  Connector
	state   State
	outcome *api.ConnectionOutcome
	lastErr error
}

// NewFlow creates an idle connection flow backed by the given client.
func NewFlow(client Connector) *Flow {
	return &Flow{client: client}
}

// State returns the current lifecycle state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Outcome returns the held authorization outcome, or nil outside
// StateAuthorized.
func (f *Flow) Outcome() *api.ConnectionOutcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcome
}

// Err returns the reason of the most recent failure, or nil. It is cleared
// when the next request begins.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Begin validates the identifier and claims the in-flight slot, returning
// the request payload to send. An invalid identifier yields a validation
// failure without touching the network.
func (f *Flow) Begin(composer *vehicle.Composer, mode ModeSelection) (api.ConnectRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateSubmitting:
		return api.ConnectRequest{}, ErrRequestInFlight
	case StateAuthorized:
		return api.ConnectRequest{}, ErrSessionActive
	}

	if !composer.Valid() {
		return api.ConnectRequest{}, api.NewValidationError("Please enter a valid vehicle number")
	}

	req := api.ConnectRequest{
		VehicleNumber: composer.String(),
		Mode:          mode.Kind().WireTag(),
	}
	if limit, ok := mode.Limit(); ok {
		req.CustomKWh = &limit
	}

	f.state = StateSubmitting
	f.lastErr = nil

	logging.Debug("Connection request started",
		zap.String("vehicle_number", req.VehicleNumber),
		zap.String("mode", req.Mode),
	)

	return req, nil
}

// Complete applies a successful outcome and transitions to StateAuthorized.
func (f *Flow) Complete(outcome *api.ConnectionOutcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateSubmitting {
		return ErrNotSubmitting
	}

	f.state = StateAuthorized
	f.outcome = outcome

	logging.Info("Connection authorized",
		zap.Int("slot_id", outcome.SlotID),
		zap.String("source", string(outcome.InitialSource)),
	)

	return nil
}

// Fail records a request failure and returns the flow to StateIdle. The
// reason stays readable via Err until the next Begin; no retry is automatic.
func (f *Flow) Fail(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateSubmitting {
		return ErrNotSubmitting
	}

	f.state = StateIdle
	f.lastErr = err

	logging.Warn("Connection request failed", zap.Error(err))

	return nil
}

// Dispatch performs the connect request built by Begin. It does not touch
// lifecycle state; the caller applies the result with Complete or Fail.
// Interactive drivers run it off their update loop.
func (f *Flow) Dispatch(ctx context.Context, req api.ConnectRequest) (*api.ConnectionOutcome, error) {
	return f.client.Connect(ctx, req)
}

// Submit runs the full lifecycle synchronously: Begin, the connect request,
// then Complete or Fail. Used by headless commands and tests.
func (f *Flow) Submit(ctx context.Context, composer *vehicle.Composer, mode ModeSelection) (*api.ConnectionOutcome, error) {
	req, err := f.Begin(composer, mode)
	if err != nil {
		return nil, err
	}

	outcome, err := f.client.Connect(ctx, req)
	if err != nil {
		_ = f.Fail(err)
		return nil, err
	}

	if err := f.Complete(outcome); err != nil {
		return nil, err
	}
	return outcome, nil
}

// Reset discards the outcome and any recorded failure and returns to
// StateIdle. The owning view clears its composer and mode selection
// alongside. Reset during StateSubmitting is refused; the in-flight request
// must settle first.
func (f *Flow) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSubmitting {
		return ErrRequestInFlight
	}

	f.state = StateIdle
	f.outcome = nil
	f.lastErr = nil
	return nil
}
