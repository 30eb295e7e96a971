// Copyright (c) 2025 neonrpc
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package grpcserver serves the operation registry over gRPC and provides a
// matching client.
//
// The service is described by hand rather than generated: requests and
// responses are google.protobuf.Struct values, so no .proto compilation step
// is needed. Call takes {"operation": name, "arguments": [...] | {...}} and
// returns the envelope; List returns {"operations": [...]}.
package grpcserver

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"neonrpc/cli/internal/entrypoint"
	"neonrpc/cli/internal/errors"
	"neonrpc/cli/internal/logging"
	"neonrpc/cli/internal/neonapi"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "neonrpc.v1.Operations"

const (
	callMethod = "/" + ServiceName + "/Call"
	listMethod = "/" + ServiceName + "/List"
)

// OperationsServer is the server API of the Operations service.
type OperationsServer interface {
	Call(context.Context, *structpb.Struct) (*structpb.Struct, error)
	List(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// ServiceDesc describes the Operations service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OperationsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Call", Handler: callHandler},
		{MethodName: "List", Handler: listHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "neonrpc/v1/operations.proto",
}

func callHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OperationsServer).Call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: callMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OperationsServer).Call(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OperationsServer).List(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OperationsServer).List(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// Service implements OperationsServer on top of a Registry.
type Service struct {
	reg *entrypoint.Registry
	log *pterm.Logger
}

// NewService returns a Service dispatching to reg. logger may be nil.
func NewService(reg *entrypoint.Registry, logger *pterm.Logger) *Service {
	return &Service{reg: reg, log: logger}
}

func (s *Service) Call(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	name := fields["operation"].GetStringValue()
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, `request needs an "operation"`)
	}

	var raw json.RawMessage
	if v, ok := fields["arguments"]; ok {
		b, err := v.MarshalJSON()
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "arguments: %v", err)
		}
		raw = b
	}

	start := time.Now()
	env, err := s.reg.Call(ctx, name, raw)
	if err != nil {
		st := StatusFor(err)
		if s.log != nil {
			s.log.Warn("call failed", s.log.Args("transport", "grpc", "operation", name, "code", st.Code().String(), "error", st.Message()))
		}
		return nil, st.Err()
	}
	if s.log != nil {
		s.log.Debug("call served", s.log.Args("transport", "grpc", "operation", name, "duration", time.Since(start)))
	}
	return toStruct(env)
}

func (s *Service) List(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(map[string]any{"operations": s.reg.List()})
}

// toStruct converts any JSON-encodable value to a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(b); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// StatusFor maps an error to a gRPC status.
func StatusFor(err error) *status.Status {
	msg := logging.Mask(err.Error())
	switch errors.KindOf(err) {
	case errors.InvalidArguments:
		return status.New(codes.InvalidArgument, msg)
	case errors.UnknownOperation:
		return status.New(codes.NotFound, msg)
	case errors.UnauthorizedCaller:
		return status.New(codes.Unauthenticated, msg)
	case errors.CredentialMissing:
		return status.New(codes.FailedPrecondition, msg)
	}
	if code := neonapi.StatusCode(err); code > 0 {
		return status.New(codeForHTTP(code), msg)
	}
	if st := status.FromContextError(err); st.Code() != codes.Unknown {
		return st
	}
	return status.New(codes.Internal, msg)
}

func codeForHTTP(code int) codes.Code {
	switch {
	case code == 400 || code == 422:
		return codes.InvalidArgument
	case code == 401:
		return codes.Unauthenticated
	case code == 403:
		return codes.PermissionDenied
	case code == 404:
		return codes.NotFound
	case code == 409 || code == 423:
		return codes.FailedPrecondition
	case code == 429:
		return codes.ResourceExhausted
	case code == 504:
		return codes.DeadlineExceeded
	case code >= 500:
		return codes.Unavailable
	default:
		return codes.Unknown
	}
}

// AuthInterceptor rejects calls whose authorization metadata does not carry
// "Bearer <secret>". An empty secret accepts every call.
func AuthInterceptor(secret string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if secret == "" {
			return handler(ctx, req)
		}
		md, _ := metadata.FromIncomingContext(ctx)
		for _, v := range md.Get("authorization") {
			if token, ok := strings.CutPrefix(v, "Bearer "); ok && validToken(token, secret) {
				return handler(ctx, req)
			}
		}
		return nil, StatusFor(errors.New(errors.UnauthorizedCaller, "missing or invalid bearer token")).Err()
	}
}
