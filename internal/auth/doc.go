// Package auth implements the credential side of recordgate.
//
// # Credential Gate
//
// Gate exchanges an API key for a session token. A key is valid when it
// appears as the "key" field of at least one record currently in the store.
// The key set is recomputed on every call. When the store cannot be read the
// set is empty, so nobody authenticates until the store is readable again:
//
//	gate := auth.NewGate(store, verifier, logger)
//	token, err := gate.Authenticate(ctx, apiKey) // err == ErrUnauthorized for unknown keys
//
// # Session Tokens
//
// Tokens are HS256 JWTs signed with the process-wide secret:
//
//	verifier, err := NewJWTVerifier(secret)
//	token, err := verifier.Generate(apiKey, TokenTTL)
//	apiKey, err := verifier.Verify(token)
//
// Tokens include:
//   - apiKey: the key that was exchanged
//   - iat: issuance time
//   - exp: iat + TokenTTL (one hour)
//
// There is no server-side session table and no revocation.
//
// # Transports
//
// CredentialsMiddleware (HTTP) and UnaryInterceptor (gRPC) copy the
// x-api-key and Authorization values into the context as Credentials. The
// bearer prefix on Authorization is optional.
package auth
