// ABOUTME: Query filter engine verifying session tokens and filtering the record store
// ABOUTME: Defines the bad-request and internal-error sentinels and the response shape

package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/2389/recordgate/internal/auth"
	"github.com/2389/recordgate/internal/records"
)

// Query errors
var (
	ErrEmptyFilter      = errors.New("query parameters required")
	ErrStoreUnavailable = errors.New("record store unavailable")
	ErrUnknownShape     = errors.New("unknown response shape")
)

// StoreError reports a store read that failed during a query. It matches
// ErrStoreUnavailable with errors.Is and unwraps to the store's error.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return ErrStoreUnavailable.Error() + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// Shape selects how query results are rendered.
type Shape string

const (
	ShapeAll   Shape = "all"   // every match, as a list
	ShapeFirst Shape = "first" // the first match only, or nothing
)

// ParseShape validates a configured shape. Empty means ShapeAll.
func ParseShape(s string) (Shape, error) {
	switch Shape(s) {
	case "", ShapeAll:
		return ShapeAll, nil
	case ShapeFirst:
		return ShapeFirst, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownShape, s)
	}
}

// Render returns the value to encode for a result. ShapeAll yields the
// slice itself; ShapeFirst yields the first record, or nil when empty.
func (s Shape) Render(recs []records.Record) any {
	if s == ShapeFirst {
		if len(recs) == 0 {
			return nil
		}
		return recs[0]
	}
	return recs
}

// Result is the outcome of an authorized query.
type Result struct {
	Records []records.Record // matches in store order, never nil
}

// Engine evaluates filters against the record store.
type Engine struct {
	records records.Store
	tokens  auth.TokenVerifier
	logger  *slog.Logger
}

// NewEngine creates a query engine.
func NewEngine(store records.Store, tokens auth.TokenVerifier, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		records: store,
		tokens:  tokens,
		logger:  logger.With("component", "query"),
	}
}

// Query verifies token and returns the records matching filter. An empty
// filter is rejected before the token is looked at.
func (e *Engine) Query(ctx context.Context, token string, filter Filter) (*Result, error) {
	if len(filter) == 0 {
		return nil, ErrEmptyFilter
	}
	if token == "" {
		return nil, auth.ErrMissingToken
	}

	apiKey, err := e.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	recs, err := e.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("query served", "api_key_suffix", keySuffix(apiKey), "fields", filter.Fields(), "matches", len(recs))
	return &Result{Records: recs}, nil
}

// Find filters the store without any token check.
func (e *Engine) Find(ctx context.Context, filter Filter) ([]records.Record, error) {
	if len(filter) == 0 {
		return nil, ErrEmptyFilter
	}

	recs, err := e.records.ReadAll(ctx)
	if err != nil {
		return nil, &StoreError{Err: err}
	}
	return filter.Apply(recs), nil
}

// keySuffix returns the last four characters of an API key for logging.
func keySuffix(k string) string {
	if len(k) <= 4 {
		return k
	}
	return k[len(k)-4:]
}
