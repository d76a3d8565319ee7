package rpc

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/mitchellh/mapstructure"
)

// Request is the HTTP request envelope: a method name and a params
// array carrying at most one object.
type Request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// RpcContext carries per-request information into method handlers.
type RpcContext struct {
	Context  context.Context
	IsAdmin  bool
	ClientIP string
}

// MethodHandler is one RPC method. Params arrive as the loosely typed
// object the client sent; handlers decode them with decodeParams.
// Results are field maps so the transport can stamp the envelope
// status into them.
type MethodHandler interface {
	Handle(ctx *RpcContext, params map[string]any) (map[string]any, *RpcError)
}

// MethodRegistry maps method names to handlers. Registration happens
// once at construction; lookups are read-only after that.
type MethodRegistry struct {
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{methods: make(map[string]MethodHandler)}
}

func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	handler, ok := r.methods[name]
	return handler, ok
}

// Methods returns the registered method names, sorted.
func (r *MethodRegistry) Methods() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LedgerSpecifier selects the ledger a query runs against. Either
// field may be set; ledger_index also accepts the symbolic names
// "current", "closed" and "validated".
type LedgerSpecifier struct {
	LedgerHash  string `json:"ledger_hash,omitempty"`
	LedgerIndex string `json:"ledger_index,omitempty"`
}

// spec collapses the two fields into the service's specifier form.
func (l LedgerSpecifier) spec() string {
	if l.LedgerHash != "" {
		return l.LedgerHash
	}
	return l.LedgerIndex
}

// decodeParams maps a request's loose params object onto a handler's
// typed parameter struct. Weak typing lets clients send a numeric
// ledger_index or a quoted limit without tripping the decoder.
func decodeParams(params map[string]any, out any) *RpcError {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return RpcErrorInternal("build params decoder: " + err.Error())
	}
	if err := dec.Decode(params); err != nil {
		return RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	return nil
}
