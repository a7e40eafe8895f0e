package chain

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// DefaultValidityIncrement is how many blocks a built transaction stays valid.
const DefaultValidityIncrement = 100

// TxBuilder turns simulated invocations into signed transactions.
type TxBuilder struct {
	client    *Client
	networkID uint32
	validity  uint32
}

// NewTxBuilder creates a builder for the given network magic.
func NewTxBuilder(client *Client, networkID uint32) *TxBuilder {
	return &TxBuilder{client: client, networkID: networkID, validity: DefaultValidityIncrement}
}

// BuildAndSignTx builds a transaction from a HALTed simulation result and signs it.
func (b *TxBuilder) BuildAndSignTx(ctx context.Context, res *InvokeResult, signer *Account, scope transaction.WitnessScope) (*transaction.Transaction, error) {
	if res == nil {
		return nil, fmt.Errorf("invoke result required")
	}
	if signer == nil {
		return nil, fmt.Errorf("signer required")
	}

	script, err := base64.StdEncoding.DecodeString(res.Script)
	if err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	sysFee, err := strconv.ParseInt(res.GasConsumed, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse gas consumed %q: %w", res.GasConsumed, err)
	}

	height, err := b.client.GetBlockCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("get block count: %w", err)
	}

	tx := transaction.New(script, sysFee)
	tx.ValidUntilBlock = uint32(height) + b.validity
	tx.Signers = []transaction.Signer{{Account: signer.ScriptHash(), Scopes: scope}}
	tx.Scripts = []transaction.Witness{{
		InvocationScript:   []byte{},
		VerificationScript: signer.VerificationScript(),
	}}

	netFee, err := b.client.CalculateNetworkFee(ctx, base64.StdEncoding.EncodeToString(tx.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("calculate network fee: %w", err)
	}
	tx.NetworkFee = netFee

	if err := signer.SignTx(b.networkID, tx); err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return tx, nil
}

// BroadcastTx sends a signed transaction and returns its hash.
func (b *TxBuilder) BroadcastTx(ctx context.Context, tx *transaction.Transaction) (util.Uint256, error) {
	if _, err := b.client.SendRawTransaction(ctx, base64.StdEncoding.EncodeToString(tx.Bytes())); err != nil {
		return util.Uint256{}, fmt.Errorf("broadcast transaction: %w", err)
	}
	return tx.Hash(), nil
}
