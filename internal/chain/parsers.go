package chain

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// =============================================================================
// Stack Item Parsers
// =============================================================================

// First returns the top stack item of a HALTed invocation.
func (r *InvokeResult) First(method string) (StackItem, error) {
	if r.Faulted() {
		return StackItem{}, &FaultError{Method: method, Exception: r.Exception}
	}
	if len(r.Stack) == 0 {
		return StackItem{}, fmt.Errorf("%s: empty stack", method)
	}
	return r.Stack[0], nil
}

// decodeStackBytes decodes a ByteString value. The node renders bytes as
// base64; 0x-hex is accepted for values produced by tools.
func decodeStackBytes(value string) ([]byte, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		return hex.DecodeString(trimmed[2:])
	}
	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid byte string")
	}
	return decoded, nil
}

func encodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// ParseArray extracts an array of StackItems from a parent StackItem.
func ParseArray(item StackItem) ([]StackItem, error) {
	if item.Type != "Array" && item.Type != "Struct" {
		return nil, fmt.Errorf("expected Array or Struct, got %s", item.Type)
	}

	var items []StackItem
	if err := json.Unmarshal(item.Value, &items); err != nil {
		return nil, fmt.Errorf("unmarshal array: %w", err)
	}
	return items, nil
}

// ParseInteger parses an Integer item. The node renders integers as decimal
// strings.
func ParseInteger(item StackItem) (*big.Int, error) {
	if item.Type != "Integer" {
		return nil, fmt.Errorf("unexpected type: %s", item.Type)
	}
	var raw string
	if err := json.Unmarshal(item.Value, &raw); err != nil {
		var num json.Number
		if err2 := json.Unmarshal(item.Value, &num); err2 != nil {
			return nil, fmt.Errorf("unmarshal integer: %w", err)
		}
		raw = num.String()
	}
	n, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", raw)
	}
	return n, nil
}

// ParseInt64 parses an Integer item that must fit an int64.
func ParseInt64(item StackItem) (int64, error) {
	n, err := ParseInteger(item)
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() {
		return 0, fmt.Errorf("integer %s overflows int64", n)
	}
	return n.Int64(), nil
}

// ParseBoolean parses a Boolean item. Integer 0/1 is accepted as well since
// some contracts return numeric flags.
func ParseBoolean(item StackItem) (bool, error) {
	switch item.Type {
	case "Boolean":
		var value bool
		if err := json.Unmarshal(item.Value, &value); err != nil {
			return false, err
		}
		return value, nil
	case "Integer":
		n, err := ParseInteger(item)
		if err != nil {
			return false, err
		}
		return n.Sign() != 0, nil
	}
	return false, fmt.Errorf("unexpected type: %s", item.Type)
}

// ParseByteArray parses a ByteString or Buffer item.
func ParseByteArray(item StackItem) ([]byte, error) {
	switch item.Type {
	case "ByteString", "Buffer":
		var value string
		if err := json.Unmarshal(item.Value, &value); err != nil {
			return nil, err
		}
		return decodeStackBytes(value)
	case "Null", "Any":
		return nil, nil
	}
	return nil, fmt.Errorf("unexpected type: %s", item.Type)
}

// ParseString parses a UTF-8 string from a ByteString item.
func ParseString(item StackItem) (string, error) {
	b, err := ParseByteArray(item)
	if err != nil {
		return "", fmt.Errorf("parse string: %w", err)
	}
	return string(b), nil
}

// =============================================================================
// Stack Item Builders
// =============================================================================

// NewIntegerItem renders n as an Integer stack item.
func NewIntegerItem(n *big.Int) StackItem {
	if n == nil {
		n = new(big.Int)
	}
	v, _ := json.Marshal(n.String())
	return StackItem{Type: "Integer", Value: v}
}

// NewBooleanItem renders b as a Boolean stack item.
func NewBooleanItem(b bool) StackItem {
	v, _ := json.Marshal(b)
	return StackItem{Type: "Boolean", Value: v}
}

// NewByteStringItem renders b as a base64 ByteString stack item.
func NewByteStringItem(b []byte) StackItem {
	v, _ := json.Marshal(encodeBase64(b))
	return StackItem{Type: "ByteString", Value: v}
}

// NewArrayItem renders items as an Array stack item.
func NewArrayItem(items ...StackItem) StackItem {
	if items == nil {
		items = []StackItem{}
	}
	v, _ := json.Marshal(items)
	return StackItem{Type: "Array", Value: v}
}

// NewStructItem renders items as a Struct stack item.
func NewStructItem(items ...StackItem) StackItem {
	s := NewArrayItem(items...)
	s.Type = "Struct"
	return s
}

// NewNullItem returns an Any (null) stack item.
func NewNullItem() StackItem {
	return StackItem{Type: "Any"}
}
