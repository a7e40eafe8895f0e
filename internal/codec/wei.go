package codec

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Rampop01/spectralpay/internal/errors"
)

// WeiDecimals is the number of decimal places between a whole token and wei.
const WeiDecimals = 18

// EthToWei converts a human-readable token amount to its wei amount as a
// decimal string. Amounts with more than 18 fractional digits are rejected
// rather than rounded.
func EthToWei(amount interface{}) (string, error) {
	d, err := toDecimal(amount)
	if err != nil {
		return "", err
	}
	if d.Sign() < 0 {
		return "", errors.Newf(errors.KindValidation, "eth_to_wei", "negative amount %s", d.String())
	}
	if d.Exponent() < -WeiDecimals {
		trimmed := trimFraction(d)
		if trimmed.Exponent() < -WeiDecimals {
			return "", errors.Newf(errors.KindValidation, "eth_to_wei", "amount %s has more than %d decimal places", d.String(), WeiDecimals)
		}
		d = trimmed
	}
	return d.Shift(WeiDecimals).BigInt().String(), nil
}

// WeiToEth renders a wei amount as a token amount without trailing zeros.
func WeiToEth(wei string) (string, error) {
	n, err := ParseBigInt(wei)
	if err != nil {
		return "", err
	}
	if n.Sign() < 0 {
		return "", errors.Newf(errors.KindValidation, "wei_to_eth", "negative amount %s", wei)
	}
	return decimal.NewFromBigInt(n, -WeiDecimals).String(), nil
}

func toDecimal(amount interface{}) (decimal.Decimal, error) {
	switch x := amount.(type) {
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Decimal{}, errors.New(errors.KindValidation, "eth_to_wei", "amount required")
		}
		if strings.ContainsAny(s, "eE") {
			return decimal.Decimal{}, errors.Newf(errors.KindValidation, "eth_to_wei", "invalid amount %q", x)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, errors.Newf(errors.KindValidation, "eth_to_wei", "invalid amount %q", x)
		}
		return d, nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0), nil
	case *big.Int:
		if x == nil {
			return decimal.Decimal{}, errors.New(errors.KindValidation, "eth_to_wei", "amount required")
		}
		return decimal.NewFromBigInt(x, 0), nil
	case decimal.Decimal:
		return x, nil
	default:
		return decimal.Decimal{}, errors.New(errors.KindValidation, "eth_to_wei", fmt.Sprintf("unsupported amount type %T", amount))
	}
}

// trimFraction drops trailing fractional zeros so "1.0000000000000000000"
// is not mistaken for a 19-digit fraction.
func trimFraction(d decimal.Decimal) decimal.Decimal {
	coef := d.Coefficient()
	exp := d.Exponent()
	ten := big.NewInt(10)
	rem := new(big.Int)
	for exp < 0 && coef.Sign() != 0 {
		q, r := new(big.Int).QuoRem(coef, ten, rem)
		if r.Sign() != 0 {
			break
		}
		coef = q
		exp++
	}
	if coef.Sign() == 0 {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(coef, exp)
}
