// ABOUTME: gRPC RecordService built from protobuf well-known types
// ABOUTME: Authenticate exchanges x-api-key metadata for a token, Query filters records

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/2389/recordgate/internal/auth"
	"github.com/2389/recordgate/internal/query"
)

// Fully-qualified RecordService names.
const (
	RecordServiceName        = "recordgate.v1.RecordService"
	AuthenticateFullMethod   = "/" + RecordServiceName + "/Authenticate"
	QueryFullMethod          = "/" + RecordServiceName + "/Query"
	recordServiceMetadataSrc = "recordgate/v1/records.proto"
)

// RecordServiceServer is the server API for the RecordService.
type RecordServiceServer interface {
	Authenticate(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	Query(context.Context, *structpb.Struct) (*structpb.ListValue, error)
}

// recordServer implements RecordServiceServer on top of the gateway.
type recordServer struct {
	gateway *Gateway
	logger  *slog.Logger
}

func newRecordServer(gw *Gateway, logger *slog.Logger) *recordServer {
	return &recordServer{gateway: gw, logger: logger}
}

// Authenticate issues a session token for the API key in x-api-key metadata.
func (s *recordServer) Authenticate(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	creds := auth.FromContext(ctx)
	token, err := s.gateway.gate.Authenticate(ctx, creds.APIKey)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, msgInvalidAPIKey)
		}
		s.logger.Error("issuing token", "error", err)
		return nil, status.Error(codes.Internal, "failed to issue token")
	}
	return wrapperspb.String(token), nil
}

// Query returns the records matching every field of the request struct.
// Filter values must be strings.
func (s *recordServer) Query(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	filter, err := filterFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	result, err := s.gateway.engine.Query(ctx, auth.FromContext(ctx).Token, filter)
	if err != nil {
		return nil, queryStatus(err)
	}

	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(result.Records))}
	for _, rec := range result.Records {
		v, err := structpb.NewValue(map[string]any(rec))
		if err != nil {
			s.logger.Error("converting record", "error", err)
			return nil, status.Error(codes.Internal, msgReadError)
		}
		out.Values = append(out.Values, v)
	}
	return out, nil
}

// filterFromStruct converts a request struct into a Filter.
func filterFromStruct(req *structpb.Struct) (query.Filter, error) {
	filter := make(query.Filter, len(req.GetFields()))
	for field, v := range req.GetFields() {
		sv, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("filter field %q must be a string", field)
		}
		filter[field] = sv.StringValue
	}
	return filter, nil
}

// queryStatus maps a query.Engine error to a gRPC status.
func queryStatus(err error) error {
	var storeErr *query.StoreError
	switch {
	case errors.Is(err, query.ErrEmptyFilter):
		return status.Error(codes.InvalidArgument, msgQueryRequired)
	case errors.Is(err, auth.ErrMissingToken):
		return status.Error(codes.Unauthenticated, msgMissingToken)
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		return status.Error(codes.Unauthenticated, msgInvalidToken)
	case errors.As(err, &storeErr):
		return status.Errorf(codes.Internal, "%s: %v", msgReadError, storeErr.Err)
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func authenticateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecordServiceServer).Authenticate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AuthenticateFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RecordServiceServer).Authenticate(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func queryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RecordServiceServer).Query(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: QueryFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RecordServiceServer).Query(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// recordServiceDesc describes the RecordService for grpc.Server.RegisterService.
var recordServiceDesc = grpc.ServiceDesc{
	ServiceName: RecordServiceName,
	HandlerType: (*RecordServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Authenticate", Handler: authenticateHandler},
		{MethodName: "Query", Handler: queryHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: recordServiceMetadataSrc,
}
