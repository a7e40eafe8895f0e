package simchain

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/internal/codec"
)

// =============================================================================
// Argument Decoding
// =============================================================================

// wireParam is a contract parameter as it travels in an invokefunction
// request.
type wireParam struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// toWire round-trips params through JSON so handlers see exactly what a
// node would receive.
func toWire(params []chain.ContractParam) ([]wireParam, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	var out []wireParam
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var two128 = new(big.Int).Lsh(big.NewInt(1), 128)

// args reads positional arguments, keeping the first error.
type args struct {
	ps  []wireParam
	err error
}

func (a *args) fail(i int, format string, v ...interface{}) {
	if a.err == nil {
		a.err = fmt.Errorf("argument %d: %s", i, fmt.Sprintf(format, v...))
	}
}

func decodeInteger(p wireParam) (*big.Int, error) {
	if p.Type != chain.ParamInteger {
		return nil, fmt.Errorf("expected Integer, got %s", p.Type)
	}
	var s string
	if err := json.Unmarshal(p.Value, &s); err != nil {
		return nil, fmt.Errorf("integer value: %w", err)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

func decodeArray(p wireParam) ([]wireParam, error) {
	if p.Type != chain.ParamArray {
		return nil, fmt.Errorf("expected Array, got %s", p.Type)
	}
	var items []wireParam
	if err := json.Unmarshal(p.Value, &items); err != nil {
		return nil, fmt.Errorf("array value: %w", err)
	}
	return items, nil
}

func decodeFelt(p wireParam) (string, error) {
	n, err := decodeInteger(p)
	if err != nil {
		return "", err
	}
	if n.Sign() < 0 || n.Cmp(codec.FeltPrime) >= 0 {
		return "", fmt.Errorf("field element out of range")
	}
	return codec.FormatFelt(n), nil
}

func (a *args) integer(i int) *big.Int {
	if a.err != nil {
		return new(big.Int)
	}
	n, err := decodeInteger(a.ps[i])
	if err != nil {
		a.fail(i, "%v", err)
		return new(big.Int)
	}
	return n
}

func (a *args) days(i int) uint64 {
	n := a.integer(i)
	if a.err == nil && (n.Sign() <= 0 || !n.IsUint64()) {
		a.fail(i, "day count %s out of range", n)
		return 0
	}
	return n.Uint64()
}

func (a *args) signed(i int) int64 {
	n := a.integer(i)
	if a.err == nil && !n.IsInt64() {
		a.fail(i, "integer %s overflows", n)
		return 0
	}
	return n.Int64()
}

func (a *args) u256(i int) *big.Int {
	if a.err != nil {
		return new(big.Int)
	}
	limbs, err := decodeArray(a.ps[i])
	if err != nil || len(limbs) != 2 {
		a.fail(i, "expected [low, high] pair")
		return new(big.Int)
	}
	low, err := decodeInteger(limbs[0])
	if err != nil {
		a.fail(i, "low: %v", err)
		return new(big.Int)
	}
	high, err := decodeInteger(limbs[1])
	if err != nil {
		a.fail(i, "high: %v", err)
		return new(big.Int)
	}
	if low.Sign() < 0 || high.Sign() < 0 || low.Cmp(two128) >= 0 || high.Cmp(two128) >= 0 {
		a.fail(i, "limb out of range")
		return new(big.Int)
	}
	return new(big.Int).Add(new(big.Int).Lsh(high, 128), low)
}

func (a *args) felt(i int) string {
	if a.err != nil {
		return ""
	}
	s, err := decodeFelt(a.ps[i])
	if err != nil {
		a.fail(i, "%v", err)
	}
	return s
}

func (a *args) str(i int) string {
	if a.err != nil {
		return ""
	}
	p := a.ps[i]
	if p.Type != chain.ParamString {
		a.fail(i, "expected String, got %s", p.Type)
		return ""
	}
	var s string
	if err := json.Unmarshal(p.Value, &s); err != nil {
		a.fail(i, "string value: %v", err)
	}
	return s
}

func (a *args) boolean(i int) bool {
	if a.err != nil {
		return false
	}
	p := a.ps[i]
	if p.Type != chain.ParamBoolean {
		a.fail(i, "expected Boolean, got %s", p.Type)
		return false
	}
	var b bool
	if err := json.Unmarshal(p.Value, &b); err != nil {
		a.fail(i, "boolean value: %v", err)
	}
	return b
}

// text decodes the [[word...], pending_word, pending_len] layout.
func (a *args) text(i int) string {
	if a.err != nil {
		return ""
	}
	parts, err := decodeArray(a.ps[i])
	if err != nil || len(parts) != 3 {
		a.fail(i, "expected byte array triple")
		return ""
	}
	words, err := decodeArray(parts[0])
	if err != nil {
		a.fail(i, "words: %v", err)
		return ""
	}
	ba := codec.ByteArray{Data: make([]*big.Int, len(words))}
	for j, w := range words {
		if ba.Data[j], err = decodeInteger(w); err != nil {
			a.fail(i, "word %d: %v", j, err)
			return ""
		}
	}
	if ba.PendingWord, err = decodeInteger(parts[1]); err != nil {
		a.fail(i, "pending word: %v", err)
		return ""
	}
	n, err := decodeInteger(parts[2])
	if err != nil || !n.IsInt64() {
		a.fail(i, "pending length")
		return ""
	}
	ba.PendingWordLen = int(n.Int64())
	s, err := codec.FromByteArray(ba)
	if err != nil {
		a.fail(i, "%v", err)
	}
	return s
}

// proof decodes [[a0,a1],[[b00,b01],[b10,b11]],[c0,c1],[i0..i3]] into its
// twelve elements in wire order.
func (a *args) proof(i int) []string {
	if a.err != nil {
		return nil
	}
	parts, err := decodeArray(a.ps[i])
	if err != nil || len(parts) != 4 {
		a.fail(i, "expected proof envelope")
		return nil
	}
	var out []string
	group := func(p wireParam, want int) bool {
		items, err := decodeArray(p)
		if err != nil || len(items) != want {
			return false
		}
		for _, it := range items {
			s, err := decodeFelt(it)
			if err != nil {
				return false
			}
			out = append(out, s)
		}
		return true
	}
	b, err := decodeArray(parts[1])
	ok := err == nil && len(b) == 2 &&
		group(parts[0], 2) && group(b[0], 2) && group(b[1], 2) &&
		group(parts[2], 2) && group(parts[3], 4)
	if !ok {
		a.fail(i, "malformed proof envelope")
		return nil
	}
	return out
}

// =============================================================================
// Result Encoding
// =============================================================================

func intItem(v int64) chain.StackItem {
	return chain.NewIntegerItem(big.NewInt(v))
}

func u256Item(n *big.Int) chain.StackItem {
	if n == nil {
		n = new(big.Int)
	}
	low := new(big.Int).Mod(n, two128)
	high := new(big.Int).Rsh(n, 128)
	return chain.NewArrayItem(chain.NewIntegerItem(low), chain.NewIntegerItem(high))
}

func feltItem(hex string) chain.StackItem {
	n, err := codec.ParseFelt(hex)
	if err != nil {
		n = new(big.Int)
	}
	return chain.NewIntegerItem(n)
}

func textItem(s string) chain.StackItem {
	ba := codec.ToByteArray(s)
	words := make([]chain.StackItem, len(ba.Data))
	for i, w := range ba.Data {
		words[i] = chain.NewIntegerItem(w)
	}
	return chain.NewArrayItem(
		chain.NewArrayItem(words...),
		chain.NewIntegerItem(ba.PendingWord),
		intItem(int64(ba.PendingWordLen)),
	)
}

func stringItem(s string) chain.StackItem {
	return chain.NewByteStringItem([]byte(s))
}

func timeItem(t time.Time) chain.StackItem {
	if t.IsZero() {
		return intItem(0)
	}
	return intItem(t.Unix())
}
