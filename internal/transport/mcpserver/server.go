// Package mcpserver exposes the operation registry as MCP tools.
//
// Each registry entry becomes one tool with string parameters. A failed
// call is reported as a tool result with isError set so the model sees the
// upstream message rather than a protocol error.
package mcpserver

import (
	"context"
	"io"
	"log"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pterm/pterm"

	"neonrpc/cli/internal/entrypoint"
	"neonrpc/cli/internal/logging"
)

// Name is the MCP server name advertised during initialize.
const Name = "neonrpc"

// New builds an MCP server with one tool per operation in reg.
func New(reg *entrypoint.Registry, version string, logger *pterm.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		Name,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Tools for the Neon control plane: list projects and branches, inspect, delete or restore branches, and retrieve or compare database schemas."),
	)
	for _, op := range reg.List() {
		s.AddTool(Tool(op), handler(reg, op.Name, logger))
	}
	return s
}

// Tool describes op as an MCP tool definition.
func Tool(op entrypoint.Operation) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(op.Description),
		mcp.WithReadOnlyHintAnnotation(op.Hints.ReadOnly),
		mcp.WithDestructiveHintAnnotation(op.Hints.Destructive),
	}
	for _, p := range op.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}
		opts = append(opts, mcp.WithString(p.Name, props...))
	}
	return mcp.NewTool(op.Name, opts...)
}

func handler(reg *entrypoint.Registry, name string, logger *pterm.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		env, err := reg.CallNamed(ctx, name, req.GetArguments())
		if err != nil {
			msg := logging.Mask(err.Error())
			if logger != nil {
				logger.Warn("tool call failed", logger.Args("tool", name, "error", msg))
			}
			return mcp.NewToolResultError(msg), nil
		}
		res := &mcp.CallToolResult{}
		for _, it := range env.Content {
			res.Content = append(res.Content, mcp.NewTextContent(it.Text))
		}
		return res, nil
	}
}

// ServeStdio serves s over newline-delimited JSON-RPC on in/out until ctx
// is done or in is closed. Server diagnostics go to errOut.
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out, errOut io.Writer) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(log.New(errOut, "mcp: ", log.LstdFlags))
	return stdio.Listen(ctx, in, out)
}

// HTTPHandler serves s as a streamable HTTP endpoint.
func HTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s)
}
