package discovery

import (
	"fmt"
	"time"
)

// Endpoint represents a charging service discovered on the local network.
type Endpoint struct {
	// Instance is the advertised service instance name (e.g., "ecocharge-hub-01")
	Instance string

	// Hostname is the mDNS hostname (e.g., "ecocharge-hub-01.local.")
	Hostname string

	// IP is the address to reach the service on (IPv4 preferred)
	IP string

	// Port is the HTTP API port
	Port int

	// Metadata contains additional mDNS TXT record data
	// Common fields: "station=HUB-01", "api=v1"
	Metadata map[string]string

	// DiscoveredAt is when the endpoint was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the endpoint
func (e *Endpoint) String() string {
	return fmt.Sprintf("EcoCharge service %s (%s) at %s:%d", e.Instance, e.Hostname, e.IP, e.Port)
}

// BaseURL returns the HTTP base URL for the service
func (e *Endpoint) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", e.IP, e.Port)
}

// GetMetadata retrieves a TXT record value by key, or returns empty string if not found
func (e *Endpoint) GetMetadata(key string) string {
	if e.Metadata == nil {
		return ""
	}
	return e.Metadata[key]
}

// Station returns the station identifier the service advertises, if any.
func (e *Endpoint) Station() string {
	return e.GetMetadata("station")
}
