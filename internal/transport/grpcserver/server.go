package grpcserver

import (
	"context"
	"crypto/subtle"
	"net"

	"github.com/pterm/pterm"
	"google.golang.org/grpc"

	"neonrpc/cli/internal/entrypoint"
	"neonrpc/cli/internal/errors"
)

// NewServer returns a grpc.Server with the Operations service registered.
func NewServer(reg *entrypoint.Registry, secret string, logger *pterm.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(AuthInterceptor(secret)))
	srv := grpc.NewServer(opts...)
	srv.RegisterService(&ServiceDesc, NewService(reg, logger))
	return srv
}

// Serve runs srv on ln until ctx is done, then stops gracefully.
func Serve(ctx context.Context, srv *grpc.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(errors.TransportFailed, "grpc listener", err)
		}
		return nil
	case <-ctx.Done():
		srv.GracefulStop()
		return nil
	}
}

func validToken(token, secret string) bool {
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}
