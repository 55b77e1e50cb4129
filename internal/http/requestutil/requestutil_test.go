package requestutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSanitizeRequestID(t *testing.T) {
	cases := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"valid", "valid-123", true},
		{"uuid", "3f1c2a8e-5b7d-4c1e-9f00-1234567890ab", true},
		{"space", "bad id", false},
		{"empty", "", false},
		{"too long", string(make([]byte, 65)), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeRequestID(tc.incoming)
			if tc.keep && got != tc.incoming {
				t.Fatalf("expected pass-through, got %s", got)
			}
			if !tc.keep && (got == tc.incoming || !requestIDPattern.MatchString(got)) {
				t.Fatalf("expected regenerated id, got %q", got)
			}
		})
	}
}

func TestNewRequestIDFallback(t *testing.T) {
	if got := NewRequestID(); len(got) != 36 {
		t.Fatalf("expected uuid request id, got %s", got)
	}
	useFallback.Store(true)
	defer useFallback.Store(false)
	got := NewRequestID()
	if got == "" || got[0] != 't' || !requestIDPattern.MatchString(got) {
		t.Fatalf("expected timestamp fallback id, got %s", got)
	}
}

func TestClientIP(t *testing.T) {
	if got := ClientIP(nil); got != "" {
		t.Fatalf("expected empty for nil request, got %q", got)
	}

	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, "9.9.9.9:1234", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": "4.4.4.4"}, "9.9.9.9:1234", "4.4.4.4"},
		{"remote host", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"remote without port", nil, "pipe", "pipe"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
