package codec

import (
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/Rampop01/spectralpay/internal/errors"
)

// FeltPrime is the field modulus P = 2^251 + 17*2^192 + 1.
var FeltPrime = func() *big.Int {
	p := new(big.Int).Lsh(big.NewInt(1), 251)
	p.Add(p, new(big.Int).Lsh(big.NewInt(17), 192))
	return p.Add(p, big.NewInt(1))
}()

var mask250 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 250), big.NewInt(1))

// ParseFelt parses a field element from 0x-hex or decimal.
func ParseFelt(s string) (*big.Int, error) {
	n, err := ParseBigInt(s)
	if err != nil {
		return nil, errors.Newf(errors.KindValidation, "parse_felt", "invalid field element %q", s)
	}
	if n.Sign() < 0 || n.Cmp(FeltPrime) >= 0 {
		return nil, errors.Newf(errors.KindValidation, "parse_felt", "field element %q out of range", s)
	}
	return n, nil
}

// FormatFelt renders n as lower-case 0x-hex.
func FormatFelt(n *big.Int) string {
	if n == nil {
		return "0x0"
	}
	return "0x" + n.Text(16)
}

// NormalizeFelt parses and re-renders s, so equal elements compare equal as strings.
func NormalizeFelt(s string) (string, error) {
	n, err := ParseFelt(s)
	if err != nil {
		return "", err
	}
	return FormatFelt(n), nil
}

// HashContent hashes parts with Keccak-256 and truncates the digest to 250
// bits so it is always a valid field element.
func HashContent(parts ...string) string {
	h := sha3.NewLegacyKeccak256()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	n := new(big.Int).SetBytes(h.Sum(nil))
	return FormatFelt(n.And(n, mask250))
}

// Commitment derives a hiding commitment to value under secret.
func Commitment(secret, value string) string {
	return HashContent("commit", strings.TrimSpace(secret), value)
}
