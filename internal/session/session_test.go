package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/internal/errors"
)

func newAccount(t *testing.T) *chain.Account {
	t.Helper()
	acc, err := chain.NewAccount()
	require.NoError(t, err)
	return acc
}

func TestManager_ConnectDisconnect(t *testing.T) {
	m := NewManager()
	_, err := m.Current()
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindSession))
	assert.Equal(t, errors.MsgNotConnected, err.(*errors.Error).Message)

	acc := newAccount(t)
	s := m.Connect(acc, "testnet")
	cur, err := m.Current()
	require.NoError(t, err)
	assert.Same(t, s, cur)
	assert.Equal(t, acc.Address(), cur.Address())
	assert.True(t, m.IsCurrent(s))

	m.Disconnect()
	assert.False(t, m.IsCurrent(s))
	_, err = m.Current()
	assert.Error(t, err)
}

func TestManager_SwitchInvalidatesOld(t *testing.T) {
	m := NewManager()
	first := m.Connect(newAccount(t), "testnet")
	second := m.Connect(newAccount(t), "testnet")
	assert.False(t, m.IsCurrent(first))
	assert.True(t, m.IsCurrent(second))
	assert.Greater(t, second.Generation(), first.Generation())
}

func TestManager_Listeners(t *testing.T) {
	m := NewManager()
	var seen []*Session
	m.OnChange(func(s *Session) { seen = append(seen, s) })

	s := m.Connect(newAccount(t), "testnet")
	m.Disconnect()
	require.Len(t, seen, 2)
	assert.Same(t, s, seen[0])
	assert.Nil(t, seen[1])
}

func TestRequireNetwork(t *testing.T) {
	assert.True(t, errors.IsKind(RequireNetwork(nil, "testnet"), errors.KindSession))

	s := New(newAccount(t), "mainnet")
	err := RequireNetwork(s, "testnet")
	assert.True(t, errors.IsKind(err, errors.KindWrongNetwork))
	assert.NoError(t, RequireNetwork(s, "mainnet"))

	// exact string comparison
	assert.Error(t, RequireNetwork(New(newAccount(t), "TestNet"), "testnet"))
}

func TestNilSession(t *testing.T) {
	var s *Session
	assert.False(t, s.Connected())
	assert.Equal(t, "", s.Address())
	assert.Nil(t, s.Account())
	assert.Equal(t, "", s.Network())
}
