// Package query implements the filter engine behind GET /data.
//
// A Filter is a set of field/value pairs taken from the request query
// string. A record matches when every filter field is present on the record
// and its string form equals the filter value exactly. Matching is a linear
// scan over the whole store in store order; there is no index.
//
// Engine.Query checks, in order: the filter is non-empty, a token was
// presented, the token verifies, the store can be read. The first failure
// decides the error:
//
//	ErrEmptyFilter          bad request
//	auth.ErrMissingToken    unauthorized
//	auth.ErrInvalidToken    unauthorized (also auth.ErrExpiredToken)
//	ErrStoreUnavailable     internal error, wraps the store failure
//
// Shape controls how results are rendered: every match, or only the first.
package query
