package api

import "strings"

// Wire mode tags accepted by the charging service.
const (
	// ModeChargeNow requests immediate charging at market price.
	ModeChargeNow = "CHARGE_NOW"

	// ModeFullCharge requests a cost-optimized full charge on renewables.
	ModeFullCharge = "FULL_CHARGE"

	// ModeCustom requests charging up to a caller-supplied kWh limit.
	ModeCustom = "CUSTOM"
)

// ConnectRequest is the payload for POST /connect.
type ConnectRequest struct {
	// VehicleNumber is the composed identifier, e.g. "KA-12-AB-3456"
	VehicleNumber string `json:"vehicle_number"`

	// Mode is one of ModeChargeNow, ModeFullCharge, ModeCustom
	Mode string `json:"mode"`

	// CustomKWh is the energy limit, present only when Mode is ModeCustom
	CustomKWh *int `json:"custom_kwh,omitempty"`
}

// ConnectionOutcome is the authorization result returned by POST /connect.
// Field names mirror the service's wire format.
type ConnectionOutcome struct {
	// SlotID is the charging slot assigned by the service
	SlotID int `json:"slot_id"`

	// InitialSource is the energy source assigned at connection time
	InitialSource EnergySource `json:"Initial_Source"`

	// EstBill is the estimated bill for the session
	EstBill float64 `json:"Est_Bill"`
}

// EnergySource identifies where session power is drawn from.
type EnergySource string

// IsRenewable reports whether the source is green energy rather than grid.
// The service encodes variants like "RENEWABLE" or "RENEWABLE_SOLAR", so this
// is a substring check, matching the service's convention.
func (s EnergySource) IsRenewable() bool {
	return strings.Contains(string(s), "RENEWABLE")
}

// LoginRequest is the payload for POST /admin/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the credential returned on successful login.
type LoginResponse struct {
	Token string `json:"token"`
}

// LiveSession is one active charging session in a dashboard snapshot.
type LiveSession struct {
	SlotID        int          `json:"slot_id"`
	VehicleNumber string       `json:"vehicle_number"`
	Mode          string       `json:"mode"`
	CurrentSource EnergySource `json:"current_source"`
}

// SystemHealth carries aggregate health metrics for the network.
type SystemHealth struct {
	// GreenScore rates the renewable share of delivered energy, 0-100
	GreenScore int `json:"green_score"`
}

// DashboardSnapshot is a point-in-time read of server state returned by
// GET /admin/dashboard_stats. A snapshot is immutable once received; each
// poll produces a new snapshot that fully replaces the previous one.
type DashboardSnapshot struct {
	TotalDeliveredKWh   float64       `json:"total_delivered_kwh"`
	RenewableUsers      int           `json:"renewable_users"`
	ConventionalUsers   int           `json:"conventional_users"`
	PausedUsers         int           `json:"paused_users"`
	ActiveLoadKW        float64       `json:"active_load_kw"`
	GridCapacityKW      float64       `json:"grid_capacity_kw"`
	SolarNowKW          float64       `json:"solar_now_kw"`
	WindNowKW           float64       `json:"wind_now_kw"`
	NetGreenAvailableKW float64       `json:"net_green_available_kw"`
	SystemHealth        SystemHealth  `json:"system_health"`
	LiveSessions        []LiveSession `json:"live_sessions"`
}

// CapacityPercent returns active load as a percentage of grid capacity.
func (s *DashboardSnapshot) CapacityPercent() float64 {
	if s.GridCapacityKW <= 0 {
		return 0
	}
	return s.ActiveLoadKW / s.GridCapacityKW * 100
}
