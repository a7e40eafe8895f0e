package contracts

import (
	"math/big"

	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/internal/codec"
	"github.com/Rampop01/spectralpay/internal/domain/marketplace"
	"github.com/Rampop01/spectralpay/internal/errors"
)

// =============================================================================
// Parameter Encoding
// =============================================================================

// Uint256Param encodes v as the [low, high] pair the contracts take for
// 256-bit values.
func Uint256Param(v interface{}) (chain.ContractParam, error) {
	u, err := codec.ToUint256(v)
	if err != nil {
		return chain.ContractParam{}, err
	}
	return chain.NewArrayParam(chain.NewIntegerParam(u.Low), chain.NewIntegerParam(u.High)), nil
}

// ByteArrayParam encodes s in the chunked byte array layout:
// [[word...], pending_word, pending_word_len].
func ByteArrayParam(s string) chain.ContractParam {
	ba := codec.ToByteArray(s)
	words := make([]chain.ContractParam, len(ba.Data))
	for i, w := range ba.Data {
		words[i] = chain.NewIntegerParam(w)
	}
	return chain.NewArrayParam(
		chain.NewArrayParam(words...),
		chain.NewIntegerParam(ba.PendingWord),
		chain.NewInt64Param(int64(ba.PendingWordLen)),
	)
}

// FeltParam encodes a hex field element.
func FeltParam(field, hex string) (chain.ContractParam, error) {
	n, err := codec.ParseFelt(hex)
	if err != nil {
		return chain.ContractParam{}, errors.Newf(errors.KindValidation, "encode", "%s: %v", field, err)
	}
	return chain.NewIntegerParam(n), nil
}

// PseudonymParam encodes a pseudonym. Pseudonyms are plain strings.
func PseudonymParam(pseudonym string) (chain.ContractParam, error) {
	if pseudonym == "" {
		return chain.ContractParam{}, errors.New(errors.KindValidation, "encode", "pseudonym required")
	}
	return chain.NewStringParam(pseudonym), nil
}

// ProofParam encodes a proof envelope as [[a0,a1],[[b00,b01],[b10,b11]],[c0,c1],[i0..i3]].
func ProofParam(p marketplace.ZKProofComponents) (chain.ContractParam, error) {
	if err := p.Validate(); err != nil {
		return chain.ContractParam{}, err
	}
	felts := func(vals ...string) chain.ContractParam {
		items := make([]chain.ContractParam, len(vals))
		for i, v := range vals {
			n, _ := codec.ParseFelt(v)
			items[i] = chain.NewIntegerParam(n)
		}
		return chain.NewArrayParam(items...)
	}
	return chain.NewArrayParam(
		felts(p.ProofA[:]...),
		chain.NewArrayParam(felts(p.ProofB[0][:]...), felts(p.ProofB[1][:]...)),
		felts(p.ProofC[:]...),
		felts(p.PublicInputs[:]...),
	), nil
}

func intParam(v int64) chain.ContractParam {
	return chain.NewInt64Param(v)
}

func uintParam(v uint64) chain.ContractParam {
	return chain.NewIntegerParam(new(big.Int).SetUint64(v))
}

// paramList collects encoded params, keeping the first error.
type paramList struct {
	params []chain.ContractParam
	err    error
}

func (l *paramList) add(p chain.ContractParam, err error) {
	if l.err != nil {
		return
	}
	if err != nil {
		l.err = err
		return
	}
	l.params = append(l.params, p)
}

func (l *paramList) plain(p chain.ContractParam) {
	l.add(p, nil)
}
