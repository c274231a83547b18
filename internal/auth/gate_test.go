package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ecocharge/console/internal/api"
)

// fakeAuthenticator returns a canned login result and records calls.
type fakeAuthenticator struct {
	calls int
	token string
	err   error
	block chan struct{} // when set, Login waits until closed
}

func (f *fakeAuthenticator) Login(ctx context.Context, username, password string) (string, error) {
	f.calls++
	if f.block != nil {
		<-f.block
	}
	return f.token, f.err
}

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStoreAt(filepath.Join(t.TempDir(), "credential.yaml"))
}

func TestResumeWithoutCredential(t *testing.T) {
	gate := NewGate(tempStore(t), &fakeAuthenticator{})

	open, err := gate.Resume()
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if open || gate.Authenticated() {
		t.Error("gate should stay closed without a persisted credential")
	}
}

func TestLoginPersistsCredentialAcrossRestart(t *testing.T) {
	store := tempStore(t)
	authn := &fakeAuthenticator{token: "tok-123"}
	gate := NewGate(store, authn)

	if err := gate.Login(context.Background(), "admin", "secret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !gate.Authenticated() {
		t.Error("gate should be open after login")
	}
	if gate.Token() != "tok-123" {
		t.Errorf("Token() = %q, want tok-123", gate.Token())
	}

	// Fresh gate over the same store simulates a restart: it must open
	// without any network call.
	restartAuthn := &fakeAuthenticator{}
	restarted := NewGate(store, restartAuthn)
	open, err := restarted.Resume()
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if !open {
		t.Error("restarted gate should open from the persisted credential")
	}
	if restartAuthn.calls != 0 {
		t.Errorf("Resume() made %d network calls, want 0", restartAuthn.calls)
	}
	if restarted.Token() != "tok-123" {
		t.Errorf("restarted Token() = %q, want tok-123", restarted.Token())
	}
}

func TestLoginFailureLeavesGateClosed(t *testing.T) {
	store := tempStore(t)
	authn := &fakeAuthenticator{err: api.NewRequestError(401, "invalid credentials")}
	gate := NewGate(store, authn)

	err := gate.Login(context.Background(), "admin", "wrong")
	if err == nil {
		t.Fatal("Login() should return the request failure")
	}
	if api.Reason(err) != "invalid credentials" {
		t.Errorf("Reason() = %q, want server detail", api.Reason(err))
	}
	if gate.Authenticated() {
		t.Error("gate should stay closed after failed login")
	}

	// Nothing persisted either
	if token, _ := store.Load(); token != "" {
		t.Errorf("store holds %q after failed login, want empty", token)
	}
}

func TestLogoutDeletesCredential(t *testing.T) {
	store := tempStore(t)
	gate := NewGate(store, &fakeAuthenticator{token: "tok-123"})

	if err := gate.Login(context.Background(), "admin", "secret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := gate.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if gate.Authenticated() {
		t.Error("gate should be closed after logout")
	}
	if gate.Token() != "" || gate.Username() != "" {
		t.Error("in-memory identity should be cleared on logout")
	}

	// Fresh initialization starts unauthenticated
	restarted := NewGate(store, &fakeAuthenticator{})
	open, err := restarted.Resume()
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if open {
		t.Error("gate should stay closed after logout and restart")
	}
}

func TestLoginRejectsConcurrentAttempt(t *testing.T) {
	authn := &fakeAuthenticator{token: "tok-123", block: make(chan struct{})}
	gate := NewGate(tempStore(t), authn)

	done := make(chan error, 1)
	go func() {
		done <- gate.Login(context.Background(), "admin", "secret")
	}()

	// Wait until the first login is pending, then try a second one.
	for !gate.Pending() {
		time.Sleep(time.Millisecond)
	}

	if err := gate.Login(context.Background(), "admin", "secret"); !errors.Is(err, ErrLoginInFlight) {
		t.Errorf("concurrent Login() = %v, want ErrLoginInFlight", err)
	}

	close(authn.block)
	if err := <-done; err != nil {
		t.Fatalf("first Login() error = %v", err)
	}
	if authn.calls != 1 {
		t.Errorf("authenticator called %d times, want 1", authn.calls)
	}
}

func TestFileStoreClearIsIdempotent(t *testing.T) {
	store := tempStore(t)

	if err := store.Clear(); err != nil {
		t.Errorf("Clear() on empty store error = %v", err)
	}

	if err := store.Save("tok"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("Clear() error = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

func TestFileStorePermissions(t *testing.T) {
	store := tempStore(t)
	if err := store.Save("tok-123"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(store.path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("credential file mode = %o, want 0600", perm)
	}
}
