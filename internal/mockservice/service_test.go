package mockservice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ecocharge/console/internal/api"
)

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewService(opts...).Routes())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeDetail(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	return body.Detail
}

func TestConnectAssignsSlots(t *testing.T) {
	server := newTestServer(t)

	for want := 1; want <= 3; want++ {
		resp := postJSON(t, server.URL+"/connect", api.ConnectRequest{
			VehicleNumber: fmt.Sprintf("KA-12-AB-345%d", want),
			Mode:          api.ModeChargeNow,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("connect status = %d, want 200", resp.StatusCode)
		}

		var outcome api.ConnectionOutcome
		if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
			t.Fatalf("decode outcome: %v", err)
		}
		resp.Body.Close()

		if outcome.SlotID != want {
			t.Errorf("SlotID = %d, want %d", outcome.SlotID, want)
		}
		if outcome.EstBill <= 0 {
			t.Errorf("EstBill = %v, want positive", outcome.EstBill)
		}
		if outcome.InitialSource == "" {
			t.Error("InitialSource should be set")
		}
	}
}

func TestConnectRejectsDuplicateVehicle(t *testing.T) {
	server := newTestServer(t)

	req := api.ConnectRequest{VehicleNumber: "KA-12-AB-3456", Mode: api.ModeChargeNow}
	resp := postJSON(t, server.URL+"/connect", req)
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/connect", req)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate connect status = %d, want 409", resp.StatusCode)
	}
	if detail := decodeDetail(t, resp); detail != "vehicle already connected" {
		t.Errorf("detail = %q", detail)
	}
}

func TestConnectRejectsWhenFull(t *testing.T) {
	server := newTestServer(t, WithTotalSlots(1))

	resp := postJSON(t, server.URL+"/connect", api.ConnectRequest{
		VehicleNumber: "KA-12-AB-0001", Mode: api.ModeChargeNow,
	})
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/connect", api.ConnectRequest{
		VehicleNumber: "KA-12-AB-0002", Mode: api.ModeChargeNow,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("connect status = %d, want 409", resp.StatusCode)
	}
	if detail := decodeDetail(t, resp); detail != "no free slot" {
		t.Errorf("detail = %q, want no free slot", detail)
	}
}

func TestConnectValidation(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name string
		req  api.ConnectRequest
	}{
		{
			name: "missing vehicle number",
			req:  api.ConnectRequest{Mode: api.ModeChargeNow},
		},
		{
			name: "unknown mode",
			req:  api.ConnectRequest{VehicleNumber: "KA-12-AB-3456", Mode: "TURBO"},
		},
		{
			name: "custom without kwh",
			req:  api.ConnectRequest{VehicleNumber: "KA-12-AB-3456", Mode: api.ModeCustom},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, server.URL+"/connect", tt.req)
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", resp.StatusCode)
			}
		})
	}
}

func TestLoginAndStats(t *testing.T) {
	server := newTestServer(t, WithCredentials("ops", "s3cret"))

	// Wrong credentials rejected
	resp := postJSON(t, server.URL+"/admin/login", api.LoginRequest{Username: "ops", Password: "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want 401", resp.StatusCode)
	}
	if detail := decodeDetail(t, resp); detail != "invalid credentials" {
		t.Errorf("detail = %q, want invalid credentials", detail)
	}

	// Stats without a token rejected
	statsResp, err := http.Get(server.URL + "/admin/dashboard_stats")
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	statsResp.Body.Close()
	if statsResp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated stats status = %d, want 401", statsResp.StatusCode)
	}

	// Valid login mints a token
	resp = postJSON(t, server.URL+"/admin/login", api.LoginRequest{Username: "ops", Password: "s3cret"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	var login api.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	resp.Body.Close()
	if login.Token == "" {
		t.Fatal("login response should carry a token")
	}

	// Connect one vehicle so the snapshot has a session
	connResp := postJSON(t, server.URL+"/connect", api.ConnectRequest{
		VehicleNumber: "KA-12-AB-3456", Mode: api.ModeChargeNow,
	})
	connResp.Body.Close()

	// Token opens the dashboard
	req, _ := http.NewRequest(http.MethodGet, server.URL+"/admin/dashboard_stats", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	statsResp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	defer statsResp.Body.Close()
	if statsResp.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %d, want 200", statsResp.StatusCode)
	}

	var snapshot api.DashboardSnapshot
	if err := json.NewDecoder(statsResp.Body).Decode(&snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}

	if len(snapshot.LiveSessions) != 1 {
		t.Fatalf("LiveSessions = %d, want 1", len(snapshot.LiveSessions))
	}
	if snapshot.LiveSessions[0].VehicleNumber != "KA-12-AB-3456" {
		t.Errorf("VehicleNumber = %q", snapshot.LiveSessions[0].VehicleNumber)
	}
	if snapshot.RenewableUsers+snapshot.ConventionalUsers != 1 {
		t.Errorf("user counts = %d+%d, want total 1", snapshot.RenewableUsers, snapshot.ConventionalUsers)
	}
	if snapshot.GridCapacityKW != DefaultGridCapacityKW {
		t.Errorf("GridCapacityKW = %v, want %v", snapshot.GridCapacityKW, DefaultGridCapacityKW)
	}
}
