package chain

import (
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/config/netmode"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"

	"github.com/Rampop01/spectralpay/internal/codec"
)

// Account is a signing account backed by a neo-go wallet account.
type Account struct {
	acc *wallet.Account
}

// NewAccount generates a fresh random account.
func NewAccount() (*Account, error) {
	priv, err := keys.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &Account{acc: wallet.NewAccountFromPrivateKey(priv)}, nil
}

// AccountFromPrivateKey creates an account from a hex encoded private key.
func AccountFromPrivateKey(privateKeyHex string) (*Account, error) {
	keyHex := strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if keyHex == "" {
		return nil, fmt.Errorf("private key required")
	}
	priv, err := keys.NewPrivateKeyFromHex(keyHex)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &Account{acc: wallet.NewAccountFromPrivateKey(priv)}, nil
}

// ScriptHash returns the account script hash.
func (a *Account) ScriptHash() util.Uint160 {
	return a.acc.ScriptHash()
}

// Address returns the account identity as the contracts see it: the script
// hash rendered as a field element.
func (a *Account) Address() string {
	addr, err := codec.NormalizeFelt("0x" + a.ScriptHash().StringLE())
	if err != nil {
		// A 160-bit hash always fits a field element.
		panic(err)
	}
	return addr
}

// NeoAddress returns the base58 Neo address.
func (a *Account) NeoAddress() string {
	return a.acc.Address
}

// VerificationScript returns the account's verification script.
func (a *Account) VerificationScript() []byte {
	return a.acc.GetVerificationScript()
}

// SignTx signs tx for the given network magic.
func (a *Account) SignTx(networkID uint32, tx *transaction.Transaction) error {
	return a.acc.SignTx(netmode.Magic(networkID), tx)
}
