// ABOUTME: Tests for the recordgate HTTP client against an httptest server
// ABOUTME: Checks header handling, error decoding and result shapes

package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer mimics the recordgate endpoints with a fixed key and token.
func fakeServer(t *testing.T, dataBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("x-api-key") != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid API key"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok-abc"}`))
	})
	mux.HandleFunc("GET /data", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("type") == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Query parameters are required","message":"Please provide at least one search parameter"}`))
			return
		}
		if r.Header.Get("Authorization") != "Bearer tok-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid token"}`))
			return
		}
		_, _ = w.Write([]byte(dataBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthenticate(t *testing.T) {
	srv := fakeServer(t, `[]`)

	token, err := New(srv.URL+"/", "abc").Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
}

func TestAuthenticate_InvalidKey(t *testing.T) {
	srv := fakeServer(t, `[]`)

	_, err := New(srv.URL, "zzz").Authenticate(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Unauthorized())
	assert.Equal(t, "Invalid API key", apiErr.Message)
}

func TestAuthenticate_NoKey(t *testing.T) {
	_, err := New("http://127.0.0.1:1", "").Authenticate(context.Background())
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestQuery(t *testing.T) {
	srv := fakeServer(t, `[{"key":"abc","type":"x"}]`)
	c := New(srv.URL, "abc")

	raw, err := c.Query(context.Background(), "tok-abc", map[string]string{"type": "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"key":"abc","type":"x"}]`, string(raw))
}

func TestQuery_Errors(t *testing.T) {
	srv := fakeServer(t, `[]`)
	c := New(srv.URL, "abc")

	tests := []struct {
		name       string
		token      string
		filter     map[string]string
		wantStatus int
		wantDetail string
	}{
		{"empty filter", "tok-abc", nil, http.StatusBadRequest, "Please provide at least one search parameter"},
		{"bad token", "nope", map[string]string{"type": "x"}, http.StatusUnauthorized, ""},
		{"no token", "", map[string]string{"type": "x"}, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Query(context.Background(), tt.token, tt.filter)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
		})
	}
}

func TestQueryRecords_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []map[string]any
	}{
		{"list", `[{"key":"abc","type":"x"},{"key":"def","type":"x"}]`, []map[string]any{
			{"key": "abc", "type": "x"},
			{"key": "def", "type": "x"},
		}},
		{"empty list", `[]`, []map[string]any{}},
		{"single record", `{"key":"abc","type":"x"}`, []map[string]any{{"key": "abc", "type": "x"}}},
		{"null", "null\n", []map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeServer(t, tt.body)
			got, err := New(srv.URL, "abc").QueryRecords(context.Background(), "tok-abc", map[string]string{"type": "x"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAPIError_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "abc").Authenticate(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Message)
	assert.False(t, apiErr.Unauthorized())
}

func TestWithHTTPClient(t *testing.T) {
	srv := fakeServer(t, `[]`)
	hc := srv.Client()
	c := New(srv.URL, "abc", WithHTTPClient(hc))
	assert.Same(t, hc, c.http)

	_, err := c.Authenticate(context.Background())
	require.NoError(t, err)
}

func TestAPIError_Message(t *testing.T) {
	err := &APIError{StatusCode: 500, Message: "Error reading data file", Detail: "open data.json: no such file"}
	assert.Equal(t, "server returned 500: Error reading data file: open data.json: no such file", err.Error())

	err = &APIError{StatusCode: 401, Message: "invalid token"}
	assert.Equal(t, "server returned 401: invalid token", err.Error())
	assert.True(t, err.Unauthorized())
}
