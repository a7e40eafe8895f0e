package codec

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rampop01/spectralpay/internal/errors"
)

func TestToUint256_Split(t *testing.T) {
	u, err := ToUint256("340282366920938463463374607431768211457") // 2^128 + 1
	require.NoError(t, err)
	assert.Equal(t, "1", u.Low.String())
	assert.Equal(t, "1", u.High.String())

	u, err = ToUint256(42)
	require.NoError(t, err)
	assert.Equal(t, "42", u.Low.String())
	assert.Equal(t, "0", u.High.String())

	u, err = ToUint256("0xff")
	require.NoError(t, err)
	assert.Equal(t, "255", u.Low.String())
}

func TestToUint256_Rejects(t *testing.T) {
	max := new(big.Int).Sub(two256, big.NewInt(1))
	_, err := ToUint256(max)
	require.NoError(t, err)

	for name, v := range map[string]interface{}{
		"negative":     -1,
		"negative str": "-5",
		"2^256":        new(big.Int).Set(two256),
		"not numeric":  "12abc",
		"empty":        "",
		"float":        1.5,
		"nil":          nil,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ToUint256(v)
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, errors.KindValidation))
		})
	}
}

func TestUint256_RoundTrip(t *testing.T) {
	values := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		new(big.Int).Sub(two128, big.NewInt(1)),
		new(big.Int).Set(two128),
		new(big.Int).Sub(two256, big.NewInt(1)),
	}
	for _, v := range values {
		u, err := ToUint256(v)
		require.NoError(t, err)
		back, err := FromUint256(u)
		require.NoError(t, err)
		assert.Zero(t, v.Cmp(back), "round trip %s", v)
		assert.Equal(t, v.String(), u.String())
	}
}

func TestFromUint256_RejectsOversizedLimb(t *testing.T) {
	_, err := FromUint256(Uint256{Low: new(big.Int).Set(two128), High: big.NewInt(0)})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindDecode))

	n, err := FromUint256(Uint256{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n.Int64())
	assert.True(t, Uint256{}.IsZero())
}

func TestParseBigInt(t *testing.T) {
	n, err := ParseBigInt(" 0x10 ")
	require.NoError(t, err)
	assert.Equal(t, int64(16), n.Int64())

	n, err = ParseBigInt("-7")
	require.NoError(t, err)
	assert.Equal(t, int64(-7), n.Int64())

	for _, bad := range []string{"", "0x", "+5", "1_000", "--1", "abc"} {
		_, err := ParseBigInt(bad)
		assert.Error(t, err, bad)
	}
}
