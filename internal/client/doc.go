// Package client is an HTTP client for a recordgate server.
//
// Authentication state is an explicit value: Authenticate returns the
// session token and Query takes it as an argument. Nothing is cached between
// calls, so callers decide when to re-authenticate (for example after an
// APIError whose Unauthorized method reports true).
//
//	c := client.New("http://localhost:3010", apiKey)
//	token, err := c.Authenticate(ctx)
//	...
//	raw, err := c.Query(ctx, token, map[string]string{"type": "x"})
package client
