package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type EcoCharge services advertise
	ServiceType = "_ecocharge._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for endpoint discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is the default HTTP API port for EcoCharge services
	DefaultPort = 8000
)

// Scanner handles mDNS endpoint discovery
type Scanner struct {
	// Timeout is the maximum time to wait for endpoint discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan discovers all EcoCharge services on the local network.
// Returns a list of discovered endpoints or an error.
func (s *Scanner) Scan() ([]*Endpoint, error) {
	return s.ScanWithContext(context.Background())
}

// ScanWithContext discovers endpoints with a custom context
func (s *Scanner) ScanWithContext(ctx context.Context) ([]*Endpoint, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	endpoints := make([]*Endpoint, 0)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for entry := range entries {
			endpoint := s.parseServiceEntry(entry)
			if endpoint != nil {
				endpoints = append(endpoints, endpoint)
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for the timeout to elapse and the entry channel to drain
	<-ctx.Done()
	<-collected

	return endpoints, nil
}

// WaitForStation waits for a service advertising the given station identifier.
// Returns the endpoint or an error if not found within the timeout.
func (s *Scanner) WaitForStation(ctx context.Context, station string) (*Endpoint, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	endpointChan := make(chan *Endpoint, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			endpoint := s.parseServiceEntry(entry)
			if endpoint != nil && endpoint.Station() == station {
				endpointChan <- endpoint
				cancel()
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case endpoint := <-endpointChan:
		return endpoint, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("station %s not found within timeout", station)
	}
}

// parseServiceEntry converts a zeroconf service entry to an Endpoint.
// Returns nil if the entry has no usable address.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Endpoint {
	if entry.Instance == "" {
		return nil
	}

	// Prefer IPv4
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Endpoint{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Scan is a convenience function to scan for services with a custom timeout
func Scan(timeout time.Duration) ([]*Endpoint, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.Scan()
}

// WaitForStation is a convenience function to wait for the service
// advertising the given station identifier.
func WaitForStation(station string, timeout time.Duration) (*Endpoint, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.WaitForStation(context.Background(), station)
}
