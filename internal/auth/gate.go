// ABOUTME: Credential gate exchanging API keys for signed session tokens
// ABOUTME: Valid keys are derived from the record store on every call, failing closed

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/2389/recordgate/internal/records"
)

// ErrUnauthorized is returned when an API key is missing or unknown.
var ErrUnauthorized = errors.New("invalid API key")

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Generate(apiKey string, expiresIn time.Duration) (string, error)
}

// Gate validates API keys against the record store and issues tokens.
type Gate struct {
	records records.Store
	tokens  TokenIssuer
	logger  *slog.Logger
}

// NewGate creates a credential gate.
func NewGate(store records.Store, tokens TokenIssuer, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		records: store,
		tokens:  tokens,
		logger:  logger.With("component", "gate"),
	}
}

// ValidKeys returns the distinct non-empty API keys currently in the store.
// A store that cannot be read yields an empty set; the failure is logged
// and not returned, so no key authenticates while the store is unreadable.
func (g *Gate) ValidKeys(ctx context.Context) map[string]struct{} {
	recs, err := g.records.ReadAll(ctx)
	if err != nil {
		g.logger.Error("reading API keys from record store", "error", err)
		return map[string]struct{}{}
	}

	keys := make(map[string]struct{})
	for _, rec := range recs {
		if k, ok := rec.APIKey(); ok {
			keys[k] = struct{}{}
		}
	}
	return keys
}

// Authenticate exchanges a valid API key for a session token that expires
// after TokenTTL.
func (g *Gate) Authenticate(ctx context.Context, apiKey string) (string, error) {
	if apiKey == "" {
		return "", ErrUnauthorized
	}
	if _, ok := g.ValidKeys(ctx)[apiKey]; !ok {
		return "", ErrUnauthorized
	}

	token, err := g.tokens.Generate(apiKey, TokenTTL)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return token, nil
}
