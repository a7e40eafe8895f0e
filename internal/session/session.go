// Package session holds the connected account and network for a client.
package session

import (
	"sync"

	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/internal/errors"
)

// Session is one connection of an account to a network. It is immutable;
// switching accounts or networks produces a new Session.
type Session struct {
	account    *chain.Account
	network    string
	generation uint64
}

// New creates a standalone session. Sessions created by a Manager should be
// preferred so results can be discarded when the session changes.
func New(account *chain.Account, network string) *Session {
	return &Session{account: account, network: network}
}

// Account returns the signing account.
func (s *Session) Account() *chain.Account {
	if s == nil {
		return nil
	}
	return s.account
}

// Address returns the account identity, or "" for a nil session.
func (s *Session) Address() string {
	if s == nil || s.account == nil {
		return ""
	}
	return s.account.Address()
}

// Network returns the network identifier the session is connected to.
func (s *Session) Network() string {
	if s == nil {
		return ""
	}
	return s.network
}

// Generation identifies the connection within its Manager.
func (s *Session) Generation() uint64 {
	if s == nil {
		return 0
	}
	return s.generation
}

// Connected reports whether the session can sign.
func (s *Session) Connected() bool {
	return s != nil && s.account != nil
}

// RequireNetwork fails unless the session is connected to expected.
func RequireNetwork(s *Session, expected string) error {
	if !s.Connected() {
		return errors.NotConnected("require_network")
	}
	if s.network != expected {
		return errors.Newf(errors.KindWrongNetwork, "require_network", "expected %s, connected to %s", expected, s.network)
	}
	return nil
}

// Listener is notified after every connect or disconnect with the new
// session, which is nil after a disconnect.
type Listener func(*Session)

// Manager owns the current session.
type Manager struct {
	mu         sync.RWMutex
	current    *Session
	generation uint64
	listeners  []Listener
}

// NewManager creates a manager with no connected session.
func NewManager() *Manager {
	return &Manager{}
}

// Connect replaces the current session.
func (m *Manager) Connect(account *chain.Account, network string) *Session {
	m.mu.Lock()
	m.generation++
	s := &Session{account: account, network: network, generation: m.generation}
	m.current = s
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		l(s)
	}
	return s
}

// Disconnect drops the current session.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.generation++
	m.current = nil
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		l(nil)
	}
}

// Current returns the connected session or a session error.
func (m *Manager) Current() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.current.Connected() {
		return nil, errors.NotConnected("session")
	}
	return m.current, nil
}

// IsCurrent reports whether s is still the active session.
func (m *Manager) IsCurrent(s *Session) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return s != nil && m.current == s && s.generation == m.generation
}

// OnChange registers a listener.
func (m *Manager) OnChange(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}
