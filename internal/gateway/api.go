// ABOUTME: HTTP API handlers for the credential exchange and record query endpoints
// ABOUTME: Maps auth and query errors onto status codes and JSON error bodies

package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2389/recordgate/internal/auth"
	"github.com/2389/recordgate/internal/query"
)

// Client-facing error messages.
const (
	msgInvalidAPIKey   = "Invalid API key"
	msgMissingToken    = "missing token"
	msgInvalidToken    = "invalid token"
	msgQueryRequired   = "Query parameters are required"
	msgQueryRequiredHi = "Please provide at least one search parameter"
	msgReadError       = "Error reading data file"
)

// TokenResponse is the JSON response for /auth.
type TokenResponse struct {
	Token string `json:"token"`
}

// ErrorResponse is the JSON body for every error status.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// handleAuth exchanges the x-api-key header for a session token.
func (g *Gateway) handleAuth(w http.ResponseWriter, r *http.Request) {
	creds := auth.FromContext(r.Context())

	token, err := g.gate.Authenticate(r.Context(), creds.APIKey)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			g.sendJSONError(w, http.StatusUnauthorized, msgInvalidAPIKey, "")
			return
		}
		g.logger.Error("issuing token", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "failed to issue token", "")
		return
	}

	g.writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// handleData verifies the session token and returns the records matching
// every query parameter.
func (g *Gateway) handleData(w http.ResponseWriter, r *http.Request) {
	creds := auth.FromContext(r.Context())
	filter := query.ParseFilter(r.URL.Query())

	result, err := g.engine.Query(r.Context(), creds.Token, filter)
	if err != nil {
		g.sendQueryError(w, err)
		return
	}

	g.writeJSON(w, http.StatusOK, g.shape.Render(result.Records))
}

// sendQueryError maps a query.Engine error to its HTTP response.
func (g *Gateway) sendQueryError(w http.ResponseWriter, err error) {
	var storeErr *query.StoreError
	switch {
	case errors.Is(err, query.ErrEmptyFilter):
		g.sendJSONError(w, http.StatusBadRequest, msgQueryRequired, msgQueryRequiredHi)
	case errors.Is(err, auth.ErrMissingToken):
		g.sendJSONError(w, http.StatusUnauthorized, msgMissingToken, "")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		g.sendJSONError(w, http.StatusUnauthorized, msgInvalidToken, "")
	case errors.As(err, &storeErr):
		g.sendJSONError(w, http.StatusInternalServerError, msgReadError, storeErr.Err.Error())
	default:
		g.logger.Error("unexpected query error", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, msgReadError, err.Error())
	}
}

// writeJSON writes v as a JSON response with the given status.
func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message, detail string) {
	g.writeJSON(w, status, ErrorResponse{Error: message, Message: detail})
}
