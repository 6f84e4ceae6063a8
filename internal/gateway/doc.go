// Package gateway exposes the credential exchange and record query operations.
//
// HTTP routes:
//
//	POST|GET /auth       x-api-key header, returns {"token": "..."}
//	GET /data?f=v&...    Authorization: Bearer <token>, returns matching records
//	GET /health          liveness
//	GET /health/ready    200 when the record store can be read, 503 otherwise
//
// When server.grpc_addr is set the same operations are served as
// recordgate.v1.RecordService using protobuf well-known types.
//
// Listeners are plain TCP or, with tailscale.enabled, a tsnet node on the
// tailnet. Run blocks until its context is canceled and then shuts down with
// a five second grace period.
package gateway
