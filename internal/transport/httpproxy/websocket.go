package httpproxy

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"neonrpc/cli/internal/errors"
	"neonrpc/cli/internal/logging"
	"neonrpc/cli/internal/neonapi"
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
	// codeUpstreamError carries a Neon API failure; data.status holds the HTTP status.
	codeUpstreamError = -32000
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client
		if s.log != nil {
			s.log.Warn("websocket upgrade failed", s.log.Args("error", err.Error()))
		}
		return
	}
	defer ws.Close()

	for {
		messageType, p, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && s.log != nil {
				s.log.Warn("websocket closed", s.log.Args("error", err.Error()))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		resp, reply := s.dispatch(r, p)
		if !reply {
			continue
		}
		if err := ws.WriteJSON(resp); err != nil {
			return
		}
	}
}

// dispatch handles one JSON-RPC message. Notifications get no reply.
func (s *Server) dispatch(r *http.Request, p []byte) (rpcResponse, bool) {
	var req rpcRequest
	if err := json.Unmarshal(p, &req); err != nil {
		return rpcResponse{JSONRPC: "2.0", ID: json.RawMessage("null"), Error: &rpcError{Code: codeParseError, Message: "parse error"}}, true
	}
	id := req.ID
	if len(id) == 0 {
		id = nil
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return rpcResponse{JSONRPC: "2.0", ID: orNull(id), Error: &rpcError{Code: codeInvalidRequest, Message: "invalid request"}}, true
	}

	start := time.Now()
	env, err := s.reg.Call(r.Context(), req.Method, req.Params)
	s.logCall("ws", req.Method, start, err)
	if id == nil {
		return rpcResponse{}, false
	}
	if err != nil {
		return rpcResponse{JSONRPC: "2.0", ID: id, Error: rpcErrorFor(err)}, true
	}
	return rpcResponse{JSONRPC: "2.0", ID: id, Result: env}, true
}

func rpcErrorFor(err error) *rpcError {
	msg := logging.Mask(err.Error())
	switch errors.KindOf(err) {
	case errors.UnknownOperation:
		return &rpcError{Code: codeMethodNotFound, Message: msg}
	case errors.InvalidArguments:
		return &rpcError{Code: codeInvalidParams, Message: msg}
	}
	if status := neonapi.StatusCode(err); status > 0 {
		return &rpcError{Code: codeUpstreamError, Message: msg, Data: map[string]int{"status": status}}
	}
	return &rpcError{Code: codeInternalError, Message: msg}
}

func orNull(id json.RawMessage) json.RawMessage {
	if id == nil {
		return json.RawMessage("null")
	}
	return id
}
