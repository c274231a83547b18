package mockservice

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	mrand "math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ecocharge/console/internal/api"
	"github.com/ecocharge/console/internal/logging"
)

// Defaults for the simulated charging network.
const (
	DefaultTotalSlots     = 12
	DefaultGridCapacityKW = 250.0
	DefaultUsername       = "admin"
	DefaultPassword       = "admin"

	perVehicleLoadKW = 11.0
	tariffPerKWh     = 8.5
)

// liveSession is one simulated charging session.
type liveSession struct {
	slotID        int
	vehicleNumber string
	mode          string
	source        api.EnergySource
	energyKWh     float64
	startedAt     time.Time
}

// Service simulates the charging service for local development. It serves
// the same HTTP surface the console talks to: POST /connect,
// POST /admin/login, and GET /admin/dashboard_stats.
type Service struct {
	mu sync.Mutex

	totalSlots     int
	gridCapacityKW float64
	username       string
	password       string

	sessions  map[int]*liveSession
	delivered float64
	tokens    map[string]bool
	startedAt time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCredentials overrides the admin credentials.
func WithCredentials(username, password string) Option {
	return func(s *Service) {
		s.username = username
		s.password = password
	}
}

// WithTotalSlots overrides the simulated slot count.
func WithTotalSlots(n int) Option {
	return func(s *Service) { s.totalSlots = n }
}

// NewService creates a simulator with no active sessions.
func NewService(opts ...Option) *Service {
	s := &Service{
		totalSlots:     DefaultTotalSlots,
		gridCapacityKW: DefaultGridCapacityKW,
		username:       DefaultUsername,
		password:       DefaultPassword,
		sessions:       make(map[int]*liveSession),
		tokens:         make(map[string]bool),
		startedAt:      time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the HTTP handler for the simulated service.
func (s *Service) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/connect", s.handleConnect)
	mux.HandleFunc("/admin/login", s.handleLogin)
	mux.HandleFunc("/admin/dashboard_stats", s.handleDashboardStats)
	return mux
}

// handleConnect assigns a free slot to the vehicle, or rejects the request.
func (s *Service) handleConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req api.ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if req.VehicleNumber == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "vehicle_number is required")
		return
	}
	switch req.Mode {
	case api.ModeChargeNow, api.ModeFullCharge:
	case api.ModeCustom:
		if req.CustomKWh == nil || *req.CustomKWh <= 0 {
			writeDetail(w, http.StatusUnprocessableEntity, "custom_kwh is required for CUSTOM mode")
			return
		}
	default:
		writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("unknown mode %q", req.Mode))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, live := range s.sessions {
		if live.vehicleNumber == req.VehicleNumber {
			writeDetail(w, http.StatusConflict, "vehicle already connected")
			return
		}
	}

	slot := s.freeSlot()
	if slot == 0 {
		writeDetail(w, http.StatusConflict, "no free slot")
		return
	}

	energy := s.plannedEnergy(req)
	source := s.pickSource()

	s.sessions[slot] = &liveSession{
		slotID:        slot,
		vehicleNumber: req.VehicleNumber,
		mode:          req.Mode,
		source:        source,
		energyKWh:     energy,
		startedAt:     time.Now(),
	}

	logging.Info("Session connected",
		zap.String("vehicle_number", req.VehicleNumber),
		zap.Int("slot_id", slot),
		zap.String("mode", req.Mode),
	)

	writeJSON(w, http.StatusOK, api.ConnectionOutcome{
		SlotID:        slot,
		InitialSource: source,
		EstBill:       math.Round(energy*tariffPerKWh*100) / 100,
	})
}

// handleLogin checks credentials and mints a token.
func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Username != s.username || req.Password != s.password {
		logging.Warn("Login rejected", zap.String("username", req.Username))
		writeDetail(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := newToken()
	s.tokens[token] = true

	logging.Info("Login accepted", zap.String("username", req.Username))
	writeJSON(w, http.StatusOK, api.LoginResponse{Token: token})
}

// handleDashboardStats builds a snapshot of the simulated network.
func (s *Service) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authorized(r) {
		writeDetail(w, http.StatusUnauthorized, "missing or invalid token")
		return
	}

	writeJSON(w, http.StatusOK, s.snapshot())
}

// authorized checks the bearer token. Caller holds the lock.
func (s *Service) authorized(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	return token != header && s.tokens[token]
}

// freeSlot returns the lowest unoccupied slot number, or 0 when full.
// Caller holds the lock.
func (s *Service) freeSlot() int {
	for slot := 1; slot <= s.totalSlots; slot++ {
		if _, taken := s.sessions[slot]; !taken {
			return slot
		}
	}
	return 0
}

// plannedEnergy estimates the session energy for billing.
func (s *Service) plannedEnergy(req api.ConnectRequest) float64 {
	switch req.Mode {
	case api.ModeCustom:
		return float64(*req.CustomKWh)
	case api.ModeFullCharge:
		return 40
	default:
		return 25
	}
}

// pickSource assigns an energy source based on green headroom.
// Caller holds the lock.
func (s *Service) pickSource() api.EnergySource {
	solar, wind := s.greenSupply()
	load := float64(len(s.sessions)) * perVehicleLoadKW
	if solar+wind-load >= perVehicleLoadKW {
		if solar >= wind {
			return "RENEWABLE_SOLAR"
		}
		return "RENEWABLE_WIND"
	}
	return "CONVENTIONAL_GRID"
}

// greenSupply returns jittered solar and wind output in kW. Solar follows a
// slow sine so repeated polls show movement.
func (s *Service) greenSupply() (solar, wind float64) {
	elapsed := time.Since(s.startedAt).Seconds()
	solar = 80 + 40*math.Sin(elapsed/60) + mrand.Float64()*5
	wind = 50 + mrand.Float64()*20
	if solar < 0 {
		solar = 0
	}
	return solar, wind
}

// snapshot builds the dashboard payload. Caller holds the lock.
func (s *Service) snapshot() api.DashboardSnapshot {
	solar, wind := s.greenSupply()

	var renewable, conventional int
	live := make([]api.LiveSession, 0, len(s.sessions))
	var delivered float64
	for _, session := range s.sessions {
		if session.source.IsRenewable() {
			renewable++
		} else {
			conventional++
		}
		// Rough progress: full planned energy after an hour on charge
		progress := time.Since(session.startedAt).Hours()
		if progress > 1 {
			progress = 1
		}
		delivered += session.energyKWh * progress

		live = append(live, api.LiveSession{
			SlotID:        session.slotID,
			VehicleNumber: session.vehicleNumber,
			Mode:          session.mode,
			CurrentSource: session.source,
		})
	}

	load := float64(len(s.sessions)) * perVehicleLoadKW
	netGreen := solar + wind - load
	if netGreen < 0 {
		netGreen = 0
	}

	greenScore := 100
	if total := renewable + conventional; total > 0 {
		greenScore = renewable * 100 / total
	}

	return api.DashboardSnapshot{
		TotalDeliveredKWh:   math.Round((s.delivered+delivered)*10) / 10,
		RenewableUsers:      renewable,
		ConventionalUsers:   conventional,
		PausedUsers:         0,
		ActiveLoadKW:        math.Round(load*10) / 10,
		GridCapacityKW:      s.gridCapacityKW,
		SolarNowKW:          math.Round(solar*10) / 10,
		WindNowKW:           math.Round(wind*10) / 10,
		NetGreenAvailableKW: math.Round(netGreen*10) / 10,
		SystemHealth:        api.SystemHealth{GreenScore: greenScore},
		LiveSessions:        live,
	}
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail writes an error payload in the service's {"detail": ...} shape.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// newToken mints a random session token.
func newToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// Fall back to a time-derived token; this is a dev simulator
		return fmt.Sprintf("tok-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
