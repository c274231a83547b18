package api

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
)

func TestErrorKindChecks(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantValid     bool
		wantRequest   bool
		wantTransport bool
	}{
		{
			name:      "validation failure",
			err:       NewValidationError("incomplete identifier"),
			wantValid: true,
		},
		{
			name:        "request failure",
			err:         NewRequestError(409, "no free slot"),
			wantRequest: true,
		},
		{
			name:          "transport failure",
			err:           NewTransportError("request failed", errors.New("dial error")),
			wantTransport: true,
		},
		{
			name: "plain error matches nothing",
			err:  errors.New("boom"),
		},
		{
			name:        "wrapped request failure",
			err:         fmt.Errorf("connect: %w", NewRequestError(401, "invalid credentials")),
			wantRequest: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.wantValid {
				t.Errorf("IsValidation() = %v, want %v", got, tt.wantValid)
			}
			if got := IsRequest(tt.err); got != tt.wantRequest {
				t.Errorf("IsRequest() = %v, want %v", got, tt.wantRequest)
			}
			if got := IsTransport(tt.err); got != tt.wantTransport {
				t.Errorf("IsTransport() = %v, want %v", got, tt.wantTransport)
			}
		})
	}
}

func TestRequestErrorFallbackDetail(t *testing.T) {
	err := NewRequestError(503, "")
	if err.Message != "service returned HTTP 503" {
		t.Errorf("Message = %q, want generic fallback", err.Message)
	}
}

func TestReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "request failure surfaces server detail",
			err:  NewRequestError(409, "no free slot"),
			want: "no free slot",
		},
		{
			name: "validation failure surfaces message",
			err:  NewValidationError("Please enter a valid vehicle number"),
			want: "Please enter a valid vehicle number",
		},
		{
			name: "connection refused",
			err: NewTransportError("request failed", &net.OpError{
				Op:  "dial",
				Err: syscall.ECONNREFUSED,
			}),
			want: "Service refused connection - is it running?",
		},
		{
			name: "host unreachable",
			err: NewTransportError("request failed", &net.OpError{
				Op:  "dial",
				Err: syscall.EHOSTUNREACH,
			}),
			want: "Service unreachable - check network connection",
		},
		{
			name: "dns failure",
			err: NewTransportError("request failed", &net.DNSError{
				Name: "charge.example.com",
			}),
			want: `Cannot resolve service host "charge.example.com"`,
		},
		{
			name: "unclassified transport error",
			err:  NewTransportError("request failed", errors.New("broken pipe")),
			want: "Network error - check connection",
		},
		{
			name: "plain error passes through",
			err:  errors.New("boom"),
			want: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reason(tt.err); got != tt.want {
				t.Errorf("Reason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("dial error")
	err := NewTransportError("request failed", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the underlying error")
	}
}

func TestIsRenewable(t *testing.T) {
	tests := []struct {
		source EnergySource
		want   bool
	}{
		{"RENEWABLE", true},
		{"RENEWABLE_SOLAR", true},
		{"RENEWABLE_WIND", true},
		{"CONVENTIONAL_GRID", false},
		{"GRID", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.source), func(t *testing.T) {
			if got := tt.source.IsRenewable(); got != tt.want {
				t.Errorf("IsRenewable() = %v, want %v", got, tt.want)
			}
		})
	}
}
