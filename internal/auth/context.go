// ABOUTME: Request credentials carried through handlers via context
// ABOUTME: Provides WithCredentials/FromContext shared by HTTP and gRPC transports

package auth

import (
	"context"
)

// Credentials holds the raw credentials presented with a request. Neither
// field has been validated.
type Credentials struct {
	APIKey string // from the x-api-key header
	Token  string // from Authorization, bearer prefix removed
}

// credentialsKey is the key type for storing Credentials in context.Context.
type credentialsKey struct{}

// WithCredentials returns a new context with the Credentials attached.
func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// FromContext retrieves the Credentials from the context. The zero value is
// returned when none are present.
func FromContext(ctx context.Context) Credentials {
	creds, _ := ctx.Value(credentialsKey{}).(Credentials)
	return creds
}
