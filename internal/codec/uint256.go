// Package codec converts between Go values and the on-chain representations
// used by the marketplace contracts.
package codec

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/Rampop01/spectralpay/internal/errors"
)

var (
	two128  = new(big.Int).Lsh(big.NewInt(1), 128)
	two256  = new(big.Int).Lsh(big.NewInt(1), 256)
	mask128 = new(big.Int).Sub(two128, big.NewInt(1))
)

// Uint256 is an unsigned 256-bit integer split into 128-bit halves.
type Uint256 struct {
	Low  *big.Int `json:"low"`
	High *big.Int `json:"high"`
}

// ToUint256 splits v into low and high halves. v may be a decimal or 0x-hex
// string, a signed or unsigned integer, or a *big.Int.
func ToUint256(v interface{}) (Uint256, error) {
	n, err := toBigInt(v)
	if err != nil {
		return Uint256{}, err
	}
	if n.Sign() < 0 {
		return Uint256{}, errors.Newf(errors.KindValidation, "to_uint256", "negative value %s", n)
	}
	if n.Cmp(two256) >= 0 {
		return Uint256{}, errors.Newf(errors.KindValidation, "to_uint256", "value %s exceeds 2^256-1", n)
	}
	return Uint256{
		Low:  new(big.Int).And(n, mask128),
		High: new(big.Int).Rsh(n, 128),
	}, nil
}

// MustUint256 is ToUint256 for values known to be in range. It panics otherwise.
func MustUint256(v interface{}) Uint256 {
	u, err := ToUint256(v)
	if err != nil {
		panic(err)
	}
	return u
}

// FromUint256 recombines u into high*2^128 + low.
func FromUint256(u Uint256) (*big.Int, error) {
	low, high := u.Low, u.High
	if low == nil {
		low = new(big.Int)
	}
	if high == nil {
		high = new(big.Int)
	}
	if low.Sign() < 0 || high.Sign() < 0 {
		return nil, errors.New(errors.KindDecode, "from_uint256", "negative limb")
	}
	if low.Cmp(two128) >= 0 || high.Cmp(two128) >= 0 {
		return nil, errors.New(errors.KindDecode, "from_uint256", "limb exceeds 128 bits")
	}
	n := new(big.Int).Lsh(high, 128)
	return n.Or(n, low), nil
}

// BigInt returns the recombined value, or zero if u is malformed.
func (u Uint256) BigInt() *big.Int {
	n, err := FromUint256(u)
	if err != nil {
		return new(big.Int)
	}
	return n
}

// IsZero reports whether u is zero.
func (u Uint256) IsZero() bool {
	return (u.Low == nil || u.Low.Sign() == 0) && (u.High == nil || u.High.Sign() == 0)
}

func (u Uint256) String() string {
	return u.BigInt().String()
}

func toBigInt(v interface{}) (*big.Int, error) {
	switch x := v.(type) {
	case nil:
		return nil, errors.New(errors.KindValidation, "to_uint256", "value required")
	case *big.Int:
		if x == nil {
			return nil, errors.New(errors.KindValidation, "to_uint256", "value required")
		}
		return new(big.Int).Set(x), nil
	case big.Int:
		return new(big.Int).Set(&x), nil
	case int:
		return big.NewInt(int64(x)), nil
	case int32:
		return big.NewInt(int64(x)), nil
	case int64:
		return big.NewInt(x), nil
	case uint:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint64:
		return new(big.Int).SetUint64(x), nil
	case string:
		return ParseBigInt(x)
	default:
		return nil, errors.Newf(errors.KindValidation, "to_uint256", "unsupported type %T", v)
	}
}

// ParseBigInt parses a decimal or 0x-prefixed hex integer.
func ParseBigInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New(errors.KindValidation, "parse_integer", "empty value")
	}
	neg := false
	body := s
	if strings.HasPrefix(body, "-") {
		neg = true
		body = body[1:]
	}
	base := 10
	if strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X") {
		base = 16
		body = body[2:]
	}
	n, ok := new(big.Int).SetString(body, base)
	if !ok || body == "" || strings.ContainsAny(body, "+-_") {
		return nil, errors.New(errors.KindValidation, "parse_integer", fmt.Sprintf("invalid integer %q", s))
	}
	if neg {
		n.Neg(n)
	}
	return n, nil
}
