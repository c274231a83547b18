package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name         string
		entry        *zeroconf.ServiceEntry
		wantNil      bool
		wantInstance string
		wantIP       string
		wantPort     int
	}{
		{
			name: "valid service with IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "ecocharge-hub-01"},
				HostName:      "ecocharge-hub-01.local.",
				Port:          8000,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
				Text:          []string{"station=HUB-01", "api=v1"},
			},
			wantNil:      false,
			wantInstance: "ecocharge-hub-01",
			wantIP:       "192.168.4.16",
			wantPort:     8000,
		},
		{
			name: "custom port",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "ecocharge-hub-02"},
				HostName:      "ecocharge-hub-02.local",
				Port:          9090,
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantNil:      false,
			wantInstance: "ecocharge-hub-02",
			wantIP:       "10.0.0.5",
			wantPort:     9090,
		},
		{
			name: "no port specified (should default)",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "ecocharge-hub-03"},
				HostName:      "ecocharge-hub-03.local",
				Port:          0,
				AddrIPv4:      []net.IP{net.ParseIP("172.16.0.1")},
			},
			wantNil:      false,
			wantInstance: "ecocharge-hub-03",
			wantIP:       "172.16.0.1",
			wantPort:     DefaultPort,
		},
		{
			name: "empty instance name",
			entry: &zeroconf.ServiceEntry{
				HostName: "anonymous.local",
				Port:     8000,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.1")},
			},
			wantNil: true,
		},
		{
			name: "no IP address",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "ecocharge-hub-04"},
				HostName:      "ecocharge-hub-04.local",
				Port:          8000,
				AddrIPv4:      []net.IP{},
				AddrIPv6:      []net.IP{},
			},
			wantNil: true,
		},
		{
			name: "IPv6 only",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "ecocharge-hub-05"},
				HostName:      "ecocharge-hub-05.local",
				Port:          8000,
				AddrIPv6:      []net.IP{net.ParseIP("fe80::1")},
			},
			wantNil:      false,
			wantInstance: "ecocharge-hub-05",
			wantIP:       "fe80::1",
			wantPort:     8000,
		},
		{
			name: "both IPv4 and IPv6 (should prefer IPv4)",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "ecocharge-hub-06"},
				HostName:      "ecocharge-hub-06.local",
				Port:          8000,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6:      []net.IP{net.ParseIP("fe80::2")},
			},
			wantNil:      false,
			wantInstance: "ecocharge-hub-06",
			wantIP:       "192.168.1.50",
			wantPort:     8000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint := scanner.parseServiceEntry(tt.entry)

			if tt.wantNil {
				if endpoint != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", endpoint)
				}
				return
			}

			if endpoint == nil {
				t.Fatal("parseServiceEntry() = nil, want non-nil endpoint")
			}

			if endpoint.Instance != tt.wantInstance {
				t.Errorf("endpoint.Instance = %v, want %v", endpoint.Instance, tt.wantInstance)
			}

			if endpoint.IP != tt.wantIP {
				t.Errorf("endpoint.IP = %v, want %v", endpoint.IP, tt.wantIP)
			}

			if endpoint.Port != tt.wantPort {
				t.Errorf("endpoint.Port = %v, want %v", endpoint.Port, tt.wantPort)
			}

			if endpoint.Hostname != tt.entry.HostName {
				t.Errorf("endpoint.Hostname = %v, want %v", endpoint.Hostname, tt.entry.HostName)
			}

			if time.Since(endpoint.DiscoveredAt) > time.Second {
				t.Errorf("endpoint.DiscoveredAt is not recent: %v", endpoint.DiscoveredAt)
			}
		})
	}
}

func TestScanner_parseServiceEntry_Metadata(t *testing.T) {
	scanner := NewScanner()

	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "ecocharge-hub-01"},
		HostName:      "ecocharge-hub-01.local",
		Port:          8000,
		AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
		Text:          []string{"station=HUB-01", "api=v1", "flag", "version=1.0"},
	}

	endpoint := scanner.parseServiceEntry(entry)
	if endpoint == nil {
		t.Fatal("parseServiceEntry() = nil, want endpoint")
	}

	expectedMetadata := map[string]string{
		"station": "HUB-01",
		"api":     "v1",
		"flag":    "", // Key without value
		"version": "1.0",
	}

	if len(endpoint.Metadata) != len(expectedMetadata) {
		t.Errorf("endpoint.Metadata has %d entries, want %d", len(endpoint.Metadata), len(expectedMetadata))
	}

	for key, expectedValue := range expectedMetadata {
		if actualValue, ok := endpoint.Metadata[key]; !ok {
			t.Errorf("endpoint.Metadata missing key %q", key)
		} else if actualValue != expectedValue {
			t.Errorf("endpoint.Metadata[%q] = %q, want %q", key, actualValue, expectedValue)
		}
	}

	if endpoint.Station() != "HUB-01" {
		t.Errorf("endpoint.Station() = %q, want HUB-01", endpoint.Station())
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()

	if scanner == nil {
		t.Fatal("NewScanner() = nil, want scanner")
	}

	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}
