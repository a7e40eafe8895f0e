package chain

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// =============================================================================
// JSON-RPC Types
// =============================================================================

// RPCRequest is a JSON-RPC 2.0 request.
type RPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// RPCResponse is a JSON-RPC 2.0 response.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is an error returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("RPC error %d: %s (%s)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// RPCCode returns the node error code.
func (e *RPCError) RPCCode() int {
	return e.Code
}

// =============================================================================
// Invocation Types
// =============================================================================

// VM states reported by the node.
const (
	VMStateHalt  = "HALT"
	VMStateFault = "FAULT"
)

// InvokeResult is the result of invokefunction.
type InvokeResult struct {
	Script      string      `json:"script"`
	State       string      `json:"state"`
	GasConsumed string      `json:"gasconsumed"`
	Exception   string      `json:"exception,omitempty"`
	Stack       []StackItem `json:"stack"`
	Tx          string      `json:"tx,omitempty"`
}

// Faulted reports whether the VM stopped in the FAULT state.
func (r *InvokeResult) Faulted() bool {
	return r.State != VMStateHalt
}

// StackItem is a VM stack item as rendered by the node.
type StackItem struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// ApplicationLog is the result of getapplicationlog.
type ApplicationLog struct {
	TxID       string      `json:"txid"`
	Executions []Execution `json:"executions"`
}

// Execution is one execution entry of an application log.
type Execution struct {
	Trigger       string         `json:"trigger"`
	VMState       string         `json:"vmstate"`
	Exception     string         `json:"exception,omitempty"`
	GasConsumed   string         `json:"gasconsumed"`
	Stack         []StackItem    `json:"stack"`
	Notifications []Notification `json:"notifications"`
}

// Notification is a contract event emitted during execution.
type Notification struct {
	Contract  string    `json:"contract"`
	EventName string    `json:"eventname"`
	State     StackItem `json:"state"`
}

// Signer is the RPC representation of a transaction signer.
type Signer struct {
	Account string `json:"account"`
	Scopes  string `json:"scopes"`
}

// =============================================================================
// Contract Parameters
// =============================================================================

// Parameter types.
const (
	ParamInteger   = "Integer"
	ParamBoolean   = "Boolean"
	ParamString    = "String"
	ParamByteArray = "ByteArray"
	ParamHash160   = "Hash160"
	ParamArray     = "Array"
	ParamAny       = "Any"
)

// ContractParam is an invocation argument.
type ContractParam struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value,omitempty"`
}

// NewIntegerParam creates an Integer parameter.
func NewIntegerParam(v *big.Int) ContractParam {
	if v == nil {
		v = new(big.Int)
	}
	return ContractParam{Type: ParamInteger, Value: v.String()}
}

// NewInt64Param creates an Integer parameter from an int64.
func NewInt64Param(v int64) ContractParam {
	return NewIntegerParam(big.NewInt(v))
}

// NewBoolParam creates a Boolean parameter.
func NewBoolParam(v bool) ContractParam {
	return ContractParam{Type: ParamBoolean, Value: v}
}

// NewStringParam creates a String parameter.
func NewStringParam(v string) ContractParam {
	return ContractParam{Type: ParamString, Value: v}
}

// NewByteArrayParam creates a ByteArray parameter. The node expects base64.
func NewByteArrayParam(v []byte) ContractParam {
	return ContractParam{Type: ParamByteArray, Value: encodeBase64(v)}
}

// NewHash160Param creates a Hash160 parameter from a 0x-prefixed script hash.
func NewHash160Param(v string) ContractParam {
	return ContractParam{Type: ParamHash160, Value: v}
}

// NewArrayParam creates an Array parameter.
func NewArrayParam(items ...ContractParam) ContractParam {
	if items == nil {
		items = []ContractParam{}
	}
	return ContractParam{Type: ParamArray, Value: items}
}

// NewAnyParam creates a null parameter.
func NewAnyParam() ContractParam {
	return ContractParam{Type: ParamAny}
}
