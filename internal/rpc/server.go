package rpc

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/LeJamon/goswapd/internal/core/ledger/service"
)

// Server answers JSON-RPC requests over HTTP. The envelope follows the
// rippled convention: the result object carries a status field, and
// errors travel inside the result rather than beside it.
//
// The server is a plain http.Handler; routing, CORS and timeouts are
// the embedding server's concern.
type Server struct {
	node     *service.Service
	registry *MethodRegistry
	version  string
	started  time.Time
	log      *zap.SugaredLogger
}

// NewServer builds a server exposing every method over the given node.
// A nil logger disables logging.
func NewServer(node *service.Service, version string, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{
		node:     node,
		registry: newRegistry(node, version, time.Now()),
		version:  version,
		started:  time.Now(),
		log:      log,
	}
	return s
}

// Registry exposes the method table, for surfaces that dispatch the
// same methods over another transport.
func (s *Server) Registry() *MethodRegistry {
	return s.registry
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet:
		s.handleGet(w, r)
	case http.MethodPost:
		s.handlePost(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGet serves probe-style queries: ?command=server_info, with
// server_info as the default.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		method = "server_info"
	}

	ctx := &RpcContext{
		Context:  r.Context(),
		ClientIP: clientIP(r),
	}
	result, rpcErr := s.executeMethod(method, nil, ctx)
	s.writeResponse(w, nil, result, rpcErr)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeResponse(w, nil, nil, RpcErrorInternal("Failed to read request body"))
		return
	}
	defer r.Body.Close()

	var request Request
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeResponse(w, nil, nil, NewRpcError(RpcPARSE_ERROR, "jsonInvalid", "Invalid JSON: "+err.Error()))
		return
	}
	if request.Method == "" {
		s.writeResponse(w, nil, nil, RpcErrorMissingCommand())
		return
	}

	// Params ride as an array holding one object.
	var params map[string]any
	if len(request.Params) > 0 {
		if err := json.Unmarshal(request.Params[0], &params); err != nil {
			s.writeResponse(w, nil, nil, RpcErrorInvalidParams("Params must be an object: "+err.Error()))
			return
		}
	}

	ctx := &RpcContext{
		Context:  r.Context(),
		ClientIP: clientIP(r),
	}
	result, rpcErr := s.executeMethod(request.Method, params, ctx)

	var echo map[string]any
	if rpcErr != nil {
		echo = makeEcho(request.Method, params)
	}
	s.writeResponse(w, echo, result, rpcErr)
}

func (s *Server) executeMethod(method string, params map[string]any, ctx *RpcContext) (map[string]any, *RpcError) {
	handler, ok := s.registry.Get(method)
	if !ok {
		return nil, RpcErrorMethodNotFound(method)
	}
	return handler.Handle(ctx, params)
}

// makeEcho rebuilds the request object echoed inside error results.
func makeEcho(method string, params map[string]any) map[string]any {
	echo := make(map[string]any, len(params)+1)
	for k, v := range params {
		echo[k] = v
	}
	echo["command"] = method
	return echo
}

// writeResponse writes the rippled-style envelope: on success the
// result map gains status "success"; on error the result holds the
// error fields plus the echoed request.
func (s *Server) writeResponse(w http.ResponseWriter, echo map[string]any, result map[string]any, rpcErr *RpcError) {
	var resultObj map[string]any
	if rpcErr != nil {
		resultObj = map[string]any{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
		if echo != nil {
			resultObj["request"] = echo
		}
	} else {
		if result == nil {
			result = map[string]any{}
		}
		result["status"] = "success"
		resultObj = result
	}

	data, err := json.Marshal(map[string]any{"result": resultObj})
	if err != nil {
		s.log.Errorw("rpc_response_marshal_failed", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// clientIP resolves the requester's address through the usual proxy
// headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
