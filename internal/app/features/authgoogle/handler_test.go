// internal/app/features/authgoogle/handler_test.go
package authgoogle

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestIsConfigured(t *testing.T) {
	tests := []struct {
		name         string
		clientID     string
		clientSecret string
		want         bool
	}{
		{"both set", "id", "secret", true},
		{"missing secret", "id", "", false},
		{"missing id", "", "secret", false},
		{"neither", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Handler{ClientID: tt.clientID, ClientSecret: tt.clientSecret}
			if got := h.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServeLogin_NotConfigured(t *testing.T) {
	h := &Handler{Log: zap.NewNop()}

	req := httptest.NewRequest("GET", "/auth/google", nil)
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?error=google_not_configured" {
		t.Errorf("Location = %q", loc)
	}
}

func TestServeCallback_MissingState(t *testing.T) {
	h := &Handler{Log: zap.NewNop(), ClientID: "id", ClientSecret: "secret"}

	req := httptest.NewRequest("GET", "/auth/google/callback?code=abc", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?error=invalid_state" {
		t.Errorf("Location = %q", loc)
	}
}

func TestGenerateState_Unique(t *testing.T) {
	a := generateState()
	b := generateState()
	if a == "" || b == "" {
		t.Fatal("generateState returned empty")
	}
	if a == b {
		t.Error("two states should never collide")
	}
}

func TestSafeReturn(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/projects", "/projects"},
		{"/", "/"},
		{"https://evil.example.com", "/"},
		{"//evil.example.com", "/"},
		{"javascript:alert(1)", "/"},
	}
	for _, tt := range tests {
		if got := safeReturn(tt.in); got != tt.want {
			t.Errorf("safeReturn(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
