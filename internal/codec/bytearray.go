package codec

import (
	"math/big"
	"unicode/utf8"

	"github.com/Rampop01/spectralpay/internal/errors"
)

// ByteArrayWordLen is the number of bytes packed into each full word.
const ByteArrayWordLen = 31

// ByteArray is the length-prefixed string layout expected by contract entry
// points that take long strings: full 31-byte words followed by a pending
// word of fewer than 31 bytes.
type ByteArray struct {
	Data           []*big.Int `json:"data"`
	PendingWord    *big.Int   `json:"pending_word"`
	PendingWordLen int        `json:"pending_word_len"`
}

// ToByteArray encodes s. Each word holds its bytes big-endian.
func ToByteArray(s string) ByteArray {
	raw := []byte(s)
	full := len(raw) / ByteArrayWordLen
	ba := ByteArray{Data: make([]*big.Int, 0, full)}
	for i := 0; i < full; i++ {
		chunk := raw[i*ByteArrayWordLen : (i+1)*ByteArrayWordLen]
		ba.Data = append(ba.Data, new(big.Int).SetBytes(chunk))
	}
	rest := raw[full*ByteArrayWordLen:]
	ba.PendingWord = new(big.Int).SetBytes(rest)
	ba.PendingWordLen = len(rest)
	return ba
}

// FromByteArray decodes ba back into a string.
func FromByteArray(ba ByteArray) (string, error) {
	if ba.PendingWordLen < 0 || ba.PendingWordLen >= ByteArrayWordLen {
		return "", errors.Newf(errors.KindDecode, "byte_array", "pending word length %d out of range", ba.PendingWordLen)
	}
	out := make([]byte, 0, len(ba.Data)*ByteArrayWordLen+ba.PendingWordLen)
	for i, w := range ba.Data {
		b, err := wordBytes(w, ByteArrayWordLen)
		if err != nil {
			return "", errors.Newf(errors.KindDecode, "byte_array", "word %d: %v", i, err)
		}
		out = append(out, b...)
	}
	pending := ba.PendingWord
	if pending == nil {
		pending = new(big.Int)
	}
	b, err := wordBytes(pending, ba.PendingWordLen)
	if err != nil {
		return "", errors.Newf(errors.KindDecode, "byte_array", "pending word: %v", err)
	}
	out = append(out, b...)
	if !utf8.Valid(out) {
		return "", errors.New(errors.KindDecode, "byte_array", "not valid UTF-8")
	}
	return string(out), nil
}

func wordBytes(w *big.Int, n int) ([]byte, error) {
	if w == nil || w.Sign() < 0 {
		return nil, errors.New(errors.KindDecode, "", "invalid word")
	}
	if w.BitLen() > n*8 {
		return nil, errors.Newf(errors.KindDecode, "", "word exceeds %d bytes", n)
	}
	buf := make([]byte, n)
	return w.FillBytes(buf), nil
}
