// Copyright (c) 2025 neonrpc
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	stderrors "errors"
	"net"
	"os"
	"os/signal"
	"syscall"

	"neonrpc/cli/internal/auth"
	"neonrpc/cli/internal/errors"
	"neonrpc/cli/internal/logging"
	"neonrpc/cli/internal/transport/grpcserver"
	"neonrpc/cli/internal/transport/httpproxy"
	"neonrpc/cli/internal/transport/mcpserver"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	serveHTTPAddr string
	serveGRPCAddr string
	serveNoStdio  bool
	serveInsecure bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Neon operations to MCP, HTTP and gRPC callers",
	Long: `The serve command exposes the operation registry.

By default it speaks MCP over stdin/stdout, which is how editors and agents
launch it. --http adds a JSON endpoint (POST /), a WebSocket JSON-RPC
endpoint (/ws) and streamable MCP (/mcp). --grpc adds the gRPC service.
Network listeners require the shared secret as a bearer token when one is
configured (NEONRPC_SHARED_SECRET or 'neonrpc login --shared-secret').
If the keychain cannot be read, network listeners refuse to start unless
--insecure is given.

When stdio is the only transport, closing stdin stops the server. With
--http or --grpc the listeners keep running after stdin closes (for
example under a supervisor with stdin at /dev/null) until SIGINT or
SIGTERM; pass --no-stdio to skip MCP stdio entirely.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		httpAddr, grpcAddr := a.cfg.Serve.HTTPAddr, a.cfg.Serve.GRPCAddr
		if cmd.Flags().Changed("http") {
			httpAddr = serveHTTPAddr
		}
		if cmd.Flags().Changed("grpc") {
			grpcAddr = serveGRPCAddr
		}
		if serveNoStdio && httpAddr == "" && grpcAddr == "" {
			return errors.New(errors.ConfigInvalid, "nothing to serve: --no-stdio needs --http or --grpc")
		}

		network := httpAddr != "" || grpcAddr != ""
		secret, err := listenerSecret(network, serveInsecure, sharedSecret, a.log)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := a.registry()
		mcpSrv := mcpserver.New(reg, Version, a.log)
		g, gctx := errgroup.WithContext(ctx)

		if httpAddr != "" {
			ln, err := net.Listen("tcp", httpAddr)
			if err != nil {
				return errors.Wrap(errors.TransportFailed, "listen "+httpAddr, err)
			}
			srv := httpproxy.New(reg,
				httpproxy.WithSharedSecret(secret),
				httpproxy.WithLogger(a.log),
				httpproxy.WithMCP(mcpserver.HTTPHandler(mcpSrv)),
			)
			a.log.Info("http listening", a.log.Args("addr", ln.Addr().String()))
			g.Go(func() error { return srv.Serve(gctx, ln) })
		}

		if grpcAddr != "" {
			ln, err := net.Listen("tcp", grpcAddr)
			if err != nil {
				return errors.Wrap(errors.TransportFailed, "listen "+grpcAddr, err)
			}
			srv := grpcserver.NewServer(reg, secret, a.log)
			a.log.Info("grpc listening", a.log.Args("addr", ln.Addr().String()))
			g.Go(func() error { return grpcserver.Serve(gctx, srv, ln) })
		}

		if !serveNoStdio {
			g.Go(func() error {
				if !network {
					// the client closing stdin ends the process
					defer stop()
				}
				err := mcpserver.ServeStdio(gctx, mcpSrv, os.Stdin, os.Stdout, os.Stderr)
				if stderrors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		}

		return g.Wait()
	},
}

// listenerSecret resolves the bearer secret for network listeners. A failed
// keychain lookup is fatal for network listeners unless insecure is set;
// stdio alone never needs the secret.
func listenerSecret(network, insecure bool, resolve func() (string, error), log *pterm.Logger) (string, error) {
	if !network {
		return "", nil
	}
	secret, err := resolve()
	switch {
	case err != nil && !insecure:
		return "", errors.Wrap(errors.TransportFailed,
			"cannot read the shared secret; set "+auth.EnvSharedSecret+" or pass --insecure to serve without authentication", err)
	case err != nil:
		log.Warn("shared secret unavailable; --insecure given, network listeners accept any caller",
			log.Args("error", logging.Mask(err.Error())))
		return "", nil
	case secret == "":
		log.Warn("no shared secret configured; network listeners accept any caller")
	}
	return secret, nil
}

func init() {
	serveCmd.Flags().StringVar(&serveHTTPAddr, "http", "", "Listen address for HTTP, WebSocket and streamable MCP (e.g. 127.0.0.1:8080)")
	serveCmd.Flags().StringVar(&serveGRPCAddr, "grpc", "", "Listen address for the gRPC service (e.g. 127.0.0.1:9090)")
	serveCmd.Flags().BoolVar(&serveNoStdio, "no-stdio", false, "Do not serve MCP on stdin/stdout")
	serveCmd.Flags().BoolVar(&serveInsecure, "insecure", false, "Start network listeners without authentication when the shared secret cannot be read")
	rootCmd.AddCommand(serveCmd)
}
