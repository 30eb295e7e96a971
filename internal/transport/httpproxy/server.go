// Package httpproxy forwards HTTP requests to the operation registry.
//
// POST / takes {"method": name, "args": [...] | {...}} and answers with the
// envelope. GET /operations lists the registry, GET /ws carries JSON-RPC 2.0
// over a websocket, and /mcp serves MCP when a handler is mounted.
package httpproxy

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pterm/pterm"

	"neonrpc/cli/internal/entrypoint"
	"neonrpc/cli/internal/errors"
	"neonrpc/cli/internal/logging"
	"neonrpc/cli/internal/neonapi"
)

const maxBodyBytes = 1 << 20

// Server routes HTTP requests to a Registry.
type Server struct {
	reg      *entrypoint.Registry
	secret   string
	log      *pterm.Logger
	mcp      http.Handler
	upgrader websocket.Upgrader
}

// Option customizes a Server.
type Option func(*Server)

// WithSharedSecret requires Authorization: Bearer <secret> on every request.
// An empty secret disables the check.
func WithSharedSecret(secret string) Option { return func(s *Server) { s.secret = secret } }

// WithLogger logs requests at debug level and failures at warn level.
func WithLogger(l *pterm.Logger) Option { return func(s *Server) { s.log = l } }

// WithMCP mounts an MCP streamable HTTP handler at /mcp.
func WithMCP(h http.Handler) Option { return func(s *Server) { s.mcp = h } }

// New returns a Server dispatching to reg.
func New(reg *entrypoint.Registry, opts ...Option) *Server {
	s := &Server{
		reg: reg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024 * 16,
			WriteBufferSize: 1024 * 64,
			// callers authenticate with the bearer secret, not by origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the routed, authenticated handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /{$}", s.handleCall)
	mux.HandleFunc("GET /operations", s.handleList)
	mux.HandleFunc("GET /ws", s.handleWS)
	if s.mcp != nil {
		mux.Handle("/mcp", s.mcp)
	}
	return s.authenticate(mux)
}

// Serve runs the handler on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(errors.TransportFailed, "http listener", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.secret != "" && !validBearer(r.Header.Get("Authorization"), s.secret) {
			writeError(w, errors.New(errors.UnauthorizedCaller, "missing or invalid bearer token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func validBearer(header, secret string) bool {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(secret)) == 1
}

type callRequest struct {
	Method string          `json:"method"`
	Args   json.RawMessage `json:"args"`
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	var req callRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.InvalidArguments, "request body is not valid JSON", err))
		return
	}
	if req.Method == "" {
		writeError(w, errors.New(errors.InvalidArguments, `request body needs a "method"`))
		return
	}

	start := time.Now()
	env, err := s.reg.Call(r.Context(), req.Method, req.Args)
	s.logCall("http", req.Method, start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.reg.List())
}

func (s *Server) logCall(transport, method string, start time.Time, err error) {
	if s.log == nil {
		return
	}
	if err != nil {
		s.log.Warn("call failed", s.log.Args("transport", transport, "operation", method, "status", StatusFor(err), "error", logging.Mask(err.Error())))
		return
	}
	s.log.Debug("call served", s.log.Args("transport", transport, "operation", method, "duration", time.Since(start)))
}

// StatusFor maps an error to the HTTP status the forwarder answers with.
func StatusFor(err error) int {
	switch errors.KindOf(err) {
	case errors.InvalidArguments:
		return http.StatusBadRequest
	case errors.UnknownOperation:
		return http.StatusNotFound
	case errors.UnauthorizedCaller:
		return http.StatusUnauthorized
	}
	if code := neonapi.StatusCode(err); code > 0 {
		return code
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), map[string]string{"error": logging.Mask(err.Error())})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
