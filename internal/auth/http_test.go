// ABOUTME: Tests for HTTP credential extraction middleware
// ABOUTME: Covers bearer prefix handling and context propagation

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer prefix", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"lower-case prefix", "bearer abc.def.ghi", "abc.def.ghi"},
		{"no prefix", "abc.def.ghi", "abc.def.ghi"},
		{"surrounding space", "  Bearer   abc.def.ghi  ", "abc.def.ghi"},
		{"empty", "", ""},
		{"prefix only", "Bearer ", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractToken(tt.header); got != tt.want {
				t.Errorf("ExtractToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestCredentialsMiddleware(t *testing.T) {
	var got Credentials
	handler := CredentialsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/data?type=x", nil)
	req.Header.Set("X-Api-Key", "abc")
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if got.APIKey != "abc" {
		t.Errorf("APIKey = %q, want %q", got.APIKey, "abc")
	}
	if got.Token != "tok" {
		t.Errorf("Token = %q, want %q", got.Token, "tok")
	}
}

func TestCredentialsMiddleware_NoHeaders(t *testing.T) {
	called := false
	handler := CredentialsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if creds := FromContext(r.Context()); creds != (Credentials{}) {
			t.Errorf("expected empty credentials, got %+v", creds)
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !called {
		t.Error("middleware must not reject requests")
	}
}
