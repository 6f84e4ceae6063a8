// ABOUTME: HTTP middleware extracting API keys and session tokens from headers
// ABOUTME: Strips an optional Bearer prefix and stores Credentials in the request context

package auth

import (
	"net/http"
	"strings"
)

// Header names carrying credentials.
const (
	APIKeyHeader        = "x-api-key"
	AuthorizationHeader = "Authorization"
)

const bearerScheme = "bearer"

// ExtractToken returns the token from an Authorization header value. The
// "Bearer " prefix is optional and matched case-insensitively. An empty
// result means no token was presented.
func ExtractToken(authHeader string) string {
	token := strings.TrimSpace(authHeader)
	n := len(bearerScheme)
	if len(token) >= n && strings.EqualFold(token[:n], bearerScheme) {
		// "Bearer" alone, or "Bearer" followed by whitespace
		if len(token) == n {
			return ""
		}
		if token[n] == ' ' || token[n] == '\t' {
			return strings.TrimSpace(token[n:])
		}
	}
	return token
}

// CredentialsMiddleware reads the x-api-key and Authorization headers into
// the request context. It never rejects a request; handlers decide what the
// credentials are worth.
func CredentialsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		creds := Credentials{
			APIKey: r.Header.Get(APIKeyHeader),
			Token:  ExtractToken(r.Header.Get(AuthorizationHeader)),
		}
		next.ServeHTTP(w, r.WithContext(WithCredentials(r.Context(), creds)))
	})
}
