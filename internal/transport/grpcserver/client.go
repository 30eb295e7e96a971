// Copyright (c) 2025 neonrpc
// Licensed under the MIT License. See LICENSE file in the project root for details.

package grpcserver

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"neonrpc/cli/internal/entrypoint"
	"neonrpc/cli/internal/errors"
	"neonrpc/cli/internal/operations"
)

// Client calls a remote Operations service.
type Client struct {
	conn   *grpc.ClientConn
	secret string
}

// Dial connects to addr. Loopback addresses use plaintext; anything else
// uses TLS with the host as server name, defaulting to port 443.
func Dial(addr, secret string) (*Client, error) {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	target := addr
	if _, _, err := net.SplitHostPort(addr); err != nil {
		target = net.JoinHostPort(addr, "443")
	}

	creds := insecure.NewCredentials()
	if !isLoopback(host) {
		creds = credentials.NewTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12})
	}
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, errors.Wrap(errors.TransportFailed, "dial "+addr, err)
	}
	return NewClient(conn, secret), nil
}

// NewClient wraps an existing connection.
func NewClient(conn *grpc.ClientConn, secret string) *Client {
	return &Client{conn: conn, secret: secret}
}

func isLoopback(host string) bool {
	if host == "" || host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (c *Client) outgoing(ctx context.Context) context.Context {
	if c.secret == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.secret)
}

// Call invokes operation. args is nil, a map keyed by parameter name, or a
// positional []any.
func (c *Client) Call(ctx context.Context, operation string, args any) (operations.Envelope, error) {
	fields := map[string]any{"operation": operation}
	if args != nil {
		fields["arguments"] = args
	}
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return operations.Envelope{}, errors.Wrap(errors.InvalidArguments, "encode arguments", err)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(c.outgoing(ctx), callMethod, req, out); err != nil {
		return operations.Envelope{}, err
	}
	var env operations.Envelope
	if err := decode(out, &env); err != nil {
		return operations.Envelope{}, err
	}
	return env, nil
}

// List returns the remote registry.
func (c *Client) List(ctx context.Context) ([]entrypoint.Operation, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(c.outgoing(ctx), listMethod, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	var resp struct {
		Operations []entrypoint.Operation `json:"operations"`
	}
	if err := decode(out, &resp); err != nil {
		return nil, err
	}
	return resp.Operations, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func decode(s *structpb.Struct, v any) error {
	b, err := s.MarshalJSON()
	if err != nil {
		return errors.Wrap(errors.TransportFailed, "decode response", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return errors.Wrap(errors.TransportFailed, "decode response", err)
	}
	return nil
}
