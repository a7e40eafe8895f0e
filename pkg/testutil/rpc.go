// Package testutil provides helpers for tests that talk to a JSON-RPC node.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// NewHTTPTestServer starts an httptest server that is closed with the test.
func NewHTTPTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// RPCResult renders a successful JSON-RPC response.
func RPCResult(result interface{}) []byte {
	resultJSON, _ := json.Marshal(result)
	resp := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"result":  json.RawMessage(resultJSON),
	}
	data, _ := json.Marshal(resp)
	return data
}

// RPCError renders a JSON-RPC error response.
func RPCError(code int, message string) []byte {
	resp := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	}
	data, _ := json.Marshal(resp)
	return data
}

// Fault is returned by a MethodHandler to answer with a JSON-RPC error.
type Fault struct {
	Code    int
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%d: %s", f.Code, f.Message)
}

// MethodHandler answers one JSON-RPC method.
type MethodHandler func(params []json.RawMessage) (interface{}, error)

// Call is a recorded JSON-RPC request.
type Call struct {
	Method string
	Params []json.RawMessage
}

// RPCServer is a fake node that dispatches on the JSON-RPC method name.
type RPCServer struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]MethodHandler
	calls    []Call
}

// NewRPCServer starts a fake node. Unknown methods answer -32601.
func NewRPCServer(t *testing.T) *RPCServer {
	t.Helper()
	s := &RPCServer{handlers: make(map[string]MethodHandler)}
	s.Server = NewHTTPTestServer(t, s.serve)
	return s
}

// Handle registers h for method.
func (s *RPCServer) Handle(method string, h MethodHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// Result registers a fixed result for method.
func (s *RPCServer) Result(method string, result interface{}) {
	s.Handle(method, func([]json.RawMessage) (interface{}, error) { return result, nil })
}

// Calls returns the recorded requests.
func (s *RPCServer) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsTo returns the recorded requests for method.
func (s *RPCServer) CallsTo(method string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (s *RPCServer) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Write(RPCError(-32700, "parse error"))
		return
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: req.Method, Params: req.Params})
	h, ok := s.handlers[req.Method]
	s.mu.Unlock()

	if !ok {
		w.Write(RPCError(-32601, "Method not found"))
		return
	}
	result, err := h(req.Params)
	if err != nil {
		if f, ok := err.(*Fault); ok {
			w.Write(RPCError(f.Code, f.Message))
			return
		}
		w.Write(RPCError(-32603, err.Error()))
		return
	}
	w.Write(RPCResult(result))
}
