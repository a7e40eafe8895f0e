package codec

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rampop01/spectralpay/internal/errors"
)

func TestEthToWei(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{"1", "1000000000000000000"},
		{"0.001", "1000000000000000"},
		{"2.5", "2500000000000000000"},
		{"0.1", "100000000000000000"},
		{"0.000000000000000001", "1"},
		{"1.000000000000000000000", "1000000000000000000"},
		{"0", "0"},
		{3, "3000000000000000000"},
		{big.NewInt(2), "2000000000000000000"},
		{"123456789.123456789123456789", "123456789123456789123456789"},
	}
	for _, tt := range tests {
		got, err := EthToWei(tt.in)
		require.NoError(t, err, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestEthToWei_Rejects(t *testing.T) {
	for _, bad := range []interface{}{"-1", "abc", "", "1e18", "0.0000000000000000001", 1.5, "1.2.3"} {
		_, err := EthToWei(bad)
		require.Error(t, err, "%v", bad)
		assert.True(t, errors.IsKind(err, errors.KindValidation), "%v", bad)
	}
}

func TestWeiToEth(t *testing.T) {
	got, err := WeiToEth("2500000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "2.5", got)

	got, err = WeiToEth("1")
	require.NoError(t, err)
	assert.Equal(t, "0.000000000000000001", got)

	_, err = WeiToEth("-1")
	assert.Error(t, err)
}
