package contracts_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/internal/codec"
	"github.com/Rampop01/spectralpay/internal/contracts"
)

func TestParseText(t *testing.T) {
	got, err := contracts.ParseText(chain.NewByteStringItem([]byte("worker_abc123")))
	require.NoError(t, err)
	assert.Equal(t, "worker_abc123", got)

	ba := codec.ToByteArray("a description longer than one thirty-one byte word")
	words := make([]chain.StackItem, len(ba.Data))
	for i, w := range ba.Data {
		words[i] = chain.NewIntegerItem(w)
	}
	item := chain.NewArrayItem(
		chain.NewArrayItem(words...),
		chain.NewIntegerItem(ba.PendingWord),
		chain.NewIntegerItem(big.NewInt(int64(ba.PendingWordLen))),
	)
	got, err = contracts.ParseText(item)
	require.NoError(t, err)
	assert.Equal(t, "a description longer than one thirty-one byte word", got)

	_, err = contracts.ParseText(chain.NewArrayItem(chain.NewIntegerItem(big.NewInt(1))))
	assert.Error(t, err)
}

func TestParseFeltRange(t *testing.T) {
	got, err := contracts.ParseFelt(chain.NewIntegerItem(big.NewInt(255)))
	require.NoError(t, err)
	assert.Equal(t, "0xff", got)

	_, err = contracts.ParseFelt(chain.NewIntegerItem(codec.FeltPrime))
	assert.Error(t, err)
	_, err = contracts.ParseFelt(chain.NewIntegerItem(big.NewInt(-1)))
	assert.Error(t, err)
}

func TestParseUint256(t *testing.T) {
	item := chain.NewArrayItem(chain.NewIntegerItem(big.NewInt(7)), chain.NewIntegerItem(big.NewInt(1)))
	got, err := contracts.ParseUint256(item)
	require.NoError(t, err)
	want := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(7))
	assert.Equal(t, 0, want.Cmp(got))

	_, err = contracts.ParseUint256(chain.NewArrayItem(chain.NewIntegerItem(big.NewInt(7))))
	assert.Error(t, err)
}

func TestParseJobRejectsInconsistentWorker(t *testing.T) {
	zero := chain.NewIntegerItem(big.NewInt(0))
	pair := func(n int64) chain.StackItem {
		return chain.NewArrayItem(chain.NewIntegerItem(big.NewInt(n)), zero)
	}
	// Status Open with an assigned worker.
	item := chain.NewStructItem(
		pair(1), zero, chain.NewByteStringItem([]byte("t")), chain.NewByteStringItem(nil), zero,
		pair(100), zero, chain.NewIntegerItem(big.NewInt(7)), zero,
		chain.NewIntegerItem(big.NewInt(1)), chain.NewByteStringItem([]byte("worker_abc123")),
		zero, zero, pair(0),
	)
	_, err := contracts.ParseJob(item)
	assert.Error(t, err)
}
