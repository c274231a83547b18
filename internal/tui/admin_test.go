package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ecocharge/console/internal/api"
	"github.com/ecocharge/console/internal/auth"
	"github.com/ecocharge/console/internal/poller"
)

type staticAuthenticator struct {
	token string
	err   error
}

func (a staticAuthenticator) Login(ctx context.Context, username, password string) (string, error) {
	return a.token, a.err
}

// openGate returns a gate already holding a persisted credential.
func openGate(t *testing.T) *auth.Gate {
	t.Helper()
	store := auth.NewFileStoreAt(filepath.Join(t.TempDir(), "credential.yaml"))
	if err := store.Save("tok-1"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	gate := auth.NewGate(store, staticAuthenticator{token: "tok-1"})
	if _, err := gate.Resume(); err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	return gate
}

func closedGate(t *testing.T) *auth.Gate {
	t.Helper()
	store := auth.NewFileStoreAt(filepath.Join(t.TempDir(), "credential.yaml"))
	return auth.NewGate(store, staticAuthenticator{token: "tok-1"})
}

func idleLoop() *poller.Loop {
	return poller.NewLoop(func(ctx context.Context) (*api.DashboardSnapshot, error) {
		return &api.DashboardSnapshot{GridCapacityKW: 100}, nil
	}, poller.WithInterval(time.Hour))
}

func TestAdminActivateTracksWaiter(t *testing.T) {
	loop := idleLoop()
	defer loop.Stop()

	m := NewAdminModel(openGate(t), loop)

	m, cmd := m.activate()
	if !m.waiting {
		t.Fatal("activate() should record the outstanding waiter")
	}
	if cmd == nil {
		t.Fatal("activate() on an open gate should dispatch commands")
	}

	// Re-entering the screen must not park a second waiter.
	m, _ = m.activate()
	if !m.waiting {
		t.Error("repeated activate() should keep the waiter tracked")
	}
	if _, arm := m.armWaiter(); arm != nil {
		t.Error("armWaiter() should be a no-op while a waiter is outstanding")
	}
}

func TestAdminActivateOnClosedGate(t *testing.T) {
	loop := idleLoop()
	defer loop.Stop()

	m := NewAdminModel(closedGate(t), loop)

	m, _ = m.activate()
	if m.waiting {
		t.Error("activate() must not arm a waiter while the gate is closed")
	}
}

func TestAdminLoginDoesNotStackWaiter(t *testing.T) {
	loop := idleLoop()
	defer loop.Stop()

	m := NewAdminModel(openGate(t), loop)
	m.waiting = true

	updated, cmd := m.Update(loginDoneMsg{})
	m = updated.(AdminModel)

	if !m.waiting {
		t.Error("the parked waiter should stay tracked across re-login")
	}
	if cmd != nil {
		t.Error("a re-login must not dispatch a second waiter")
	}
}

func TestAdminSnapshotAfterLogoutReleasesWaiter(t *testing.T) {
	loop := idleLoop()
	defer loop.Stop()

	m := NewAdminModel(closedGate(t), loop)
	m.waiting = true

	updated, cmd := m.Update(snapshotMsg{snapshot: &api.DashboardSnapshot{}})
	m = updated.(AdminModel)

	if m.waiting {
		t.Error("a delivery while logged out should release the waiter")
	}
	if cmd != nil {
		t.Error("no waiter should be re-armed while the gate is closed")
	}
}
