// ABOUTME: gRPC interceptors extracting API keys and session tokens from metadata
// ABOUTME: Mirrors the HTTP middleware so both transports share one credential flow

package auth

import (
	"context"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

// credentialsFromMetadata builds Credentials from incoming gRPC metadata.
// Metadata keys are lower-case on the wire.
func credentialsFromMetadata(ctx context.Context) Credentials {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return Credentials{}
	}
	var creds Credentials
	if v := md.Get(APIKeyHeader); len(v) > 0 {
		creds.APIKey = v[0]
	}
	if v := md.Get(strings.ToLower(AuthorizationHeader)); len(v) > 0 {
		creds.Token = ExtractToken(v[0])
	}
	return creds
}

// UnaryInterceptor returns a gRPC unary interceptor that attaches the
// presented Credentials to the handler context.
func UnaryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		creds := credentialsFromMetadata(ctx)
		if logger != nil {
			attrs := []any{"method", info.FullMethod, "has_api_key", creds.APIKey != "", "has_token", creds.Token != ""}
			if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
				attrs = append(attrs, "peer_addr", p.Addr.String())
			}
			logger.Debug("grpc request", attrs...)
		}
		return handler(WithCredentials(ctx, creds), req)
	}
}
