package chain

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
)

// Invoker is what the contract gateways need from a chain: read-only calls
// and signed submissions.
type Invoker interface {
	InvokeFunction(ctx context.Context, scriptHash string, method string, params []ContractParam) (*InvokeResult, error)
	Submit(ctx context.Context, account *Account, scriptHash string, method string, params []ContractParam) (string, error)
}

// FaultError reports a call whose VM execution ended in FAULT.
type FaultError struct {
	Method    string
	Exception string
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Method, e.Exception)
}

// Submit simulates method as account, then builds, signs and broadcasts the
// transaction. It returns the 0x-prefixed transaction hash without waiting
// for the transaction to be included in a block.
func (c *Client) Submit(ctx context.Context, account *Account, scriptHash string, method string, params []ContractParam) (string, error) {
	if account == nil {
		return "", fmt.Errorf("account required for write operations")
	}

	res, err := c.InvokeFunctionWithSigners(ctx, scriptHash, method, params, account.ScriptHash())
	if err != nil {
		return "", fmt.Errorf("simulate %s: %w", method, err)
	}
	if res.Faulted() {
		return "", &FaultError{Method: method, Exception: res.Exception}
	}

	builder := NewTxBuilder(c, c.NetworkID())
	tx, err := builder.BuildAndSignTx(ctx, res, account, transaction.CalledByEntry)
	if err != nil {
		return "", fmt.Errorf("build %s transaction: %w", method, err)
	}

	hash, err := builder.BroadcastTx(ctx, tx)
	if err != nil {
		return "", err
	}
	return "0x" + hash.StringLE(), nil
}

var _ Invoker = (*Client)(nil)
