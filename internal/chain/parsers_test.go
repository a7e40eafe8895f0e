package chain_test

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/Rampop01/spectralpay/internal/chain"
)

func TestParseInteger(t *testing.T) {
	n, err := chain.ParseInteger(chain.StackItem{Type: "Integer", Value: json.RawMessage(`"12345678901234567890"`)})
	if err != nil {
		t.Fatalf("ParseInteger() error = %v", err)
	}
	if n.String() != "12345678901234567890" {
		t.Errorf("ParseInteger() = %s", n)
	}

	n, err = chain.ParseInteger(chain.StackItem{Type: "Integer", Value: json.RawMessage(`42`)})
	if err != nil || n.Int64() != 42 {
		t.Errorf("ParseInteger(number) = %v, %v", n, err)
	}

	if _, err := chain.ParseInteger(chain.StackItem{Type: "Integer", Value: json.RawMessage(`"x"`)}); err == nil {
		t.Error("ParseInteger() expected error for non-numeric")
	}
	if _, err := chain.ParseInteger(chain.NewBooleanItem(true)); err == nil {
		t.Error("ParseInteger() expected error for Boolean")
	}
}

func TestParseInt64_Overflow(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 70)
	if _, err := chain.ParseInt64(chain.NewIntegerItem(huge)); err == nil {
		t.Error("ParseInt64() expected overflow error")
	}
}

func TestParseByteArray_Encodings(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"base64", `"aGVsbG8="`, "hello"},
		{"hex", `"0x68656c6c6f"`, "hello"},
		{"empty", `""`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := chain.ParseString(chain.StackItem{Type: "ByteString", Value: json.RawMessage(tt.value)})
			if err != nil {
				t.Fatalf("ParseString() error = %v", err)
			}
			if s != tt.want {
				t.Errorf("ParseString() = %q, want %q", s, tt.want)
			}
		})
	}

	if _, err := chain.ParseByteArray(chain.StackItem{Type: "ByteString", Value: json.RawMessage(`"%%%"`)}); err == nil {
		t.Error("ParseByteArray() expected error for garbage")
	}
	b, err := chain.ParseByteArray(chain.NewNullItem())
	if err != nil || b != nil {
		t.Errorf("ParseByteArray(null) = %v, %v", b, err)
	}
}

func TestParseArray_Builders(t *testing.T) {
	item := chain.NewStructItem(chain.NewIntegerItem(big.NewInt(7)), chain.NewByteStringItem([]byte("x")))
	items, err := chain.ParseArray(item)
	if err != nil {
		t.Fatalf("ParseArray() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d", len(items))
	}
	if _, err := chain.ParseArray(chain.NewIntegerItem(big.NewInt(1))); err == nil {
		t.Error("ParseArray() expected error for Integer")
	}
}

func TestParseBoolean_IntegerFlag(t *testing.T) {
	ok, err := chain.ParseBoolean(chain.NewIntegerItem(big.NewInt(1)))
	if err != nil || !ok {
		t.Errorf("ParseBoolean(1) = %v, %v", ok, err)
	}
}

func TestInvokeResult_First(t *testing.T) {
	res := &chain.InvokeResult{State: "FAULT", Exception: "boom"}
	_, err := res.First("m")
	var fault *chain.FaultError
	if !errors.As(err, &fault) || fault.Exception != "boom" {
		t.Fatalf("First() error = %v, want FaultError", err)
	}

	res = &chain.InvokeResult{State: "HALT"}
	if _, err := res.First("m"); err == nil {
		t.Error("First() expected error on empty stack")
	}
}
