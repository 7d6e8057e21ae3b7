package http

import (
	"net/http/httptest"
	"testing"
)

func TestExtractClientIP_RemoteAddrOnly(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.9:54321"

	if got := ExtractClientIP(r, nil); got != "203.0.113.9" {
		t.Errorf("got %q, want %q", got, "203.0.113.9")
	}
}

func TestExtractClientIP_UntrustedProxyHeadersIgnored(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.9:54321"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")

	cfg := &IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}
	if got := ExtractClientIP(r, cfg); got != "203.0.113.9" {
		t.Errorf("spoofed header should be ignored: got %q", got)
	}
}

func TestExtractClientIP_TrustedProxyForwardedFor(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.2.3:443"
	r.Header.Set("X-Forwarded-For", "198.51.100.1, 10.1.2.3")

	cfg := &IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}
	if got := ExtractClientIP(r, cfg); got != "198.51.100.1" {
		t.Errorf("got %q, want %q", got, "198.51.100.1")
	}
}

func TestExtractClientIP_TrustedProxyRealIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.2.3:443"
	r.Header.Set("X-Real-IP", "198.51.100.7")

	cfg := &IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}
	if got := ExtractClientIP(r, cfg); got != "198.51.100.7" {
		t.Errorf("got %q, want %q", got, "198.51.100.7")
	}
}

func TestExtractClientIP_InvalidForwardedForFallsBack(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.2.3:443"
	r.Header.Set("X-Forwarded-For", "not-an-ip")

	cfg := &IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}
	if got := ExtractClientIP(r, cfg); got != "10.1.2.3" {
		t.Errorf("got %q, want %q", got, "10.1.2.3")
	}
}
