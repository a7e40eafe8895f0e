package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/tidwall/gjson"
)

// DefaultTxWaitTimeout is the default timeout for waiting for transaction execution.
const DefaultTxWaitTimeout = 2 * time.Minute

// DefaultPollInterval is the default interval for polling transaction status.
const DefaultPollInterval = 2 * time.Second

// =============================================================================
// Contract Invocation Methods
// =============================================================================

// InvokeFunction invokes a contract function (read-only).
func (c *Client) InvokeFunction(ctx context.Context, scriptHash string, method string, params []ContractParam) (*InvokeResult, error) {
	if params == nil {
		params = []ContractParam{}
	}
	args := []interface{}{scriptHash, method, params}
	return c.invoke(ctx, args)
}

// InvokeFunctionWithSigners simulates a contract call as signed by account.
// The returned script and gas consumption are used to build the transaction.
func (c *Client) InvokeFunctionWithSigners(ctx context.Context, scriptHash string, method string, params []ContractParam, account util.Uint160) (*InvokeResult, error) {
	if params == nil {
		params = []ContractParam{}
	}
	signers := []Signer{{Account: "0x" + account.StringLE(), Scopes: "CalledByEntry"}}
	args := []interface{}{scriptHash, method, params, signers}
	return c.invoke(ctx, args)
}

func (c *Client) invoke(ctx context.Context, args []interface{}) (*InvokeResult, error) {
	result, err := c.Call(ctx, "invokefunction", args)
	if err != nil {
		return nil, err
	}

	var invokeResult InvokeResult
	if err := json.Unmarshal(result, &invokeResult); err != nil {
		return nil, fmt.Errorf("unmarshal invoke result: %w", err)
	}
	return &invokeResult, nil
}

// CalculateNetworkFee asks the node for the network fee of a base64 encoded
// transaction.
func (c *Client) CalculateNetworkFee(ctx context.Context, txBase64 string) (int64, error) {
	result, err := c.Call(ctx, "calculatenetworkfee", []interface{}{txBase64})
	if err != nil {
		return 0, err
	}
	fee := gjson.GetBytes(result, "networkfee")
	if !fee.Exists() {
		return 0, fmt.Errorf("calculatenetworkfee: missing networkfee")
	}
	return fee.Int(), nil
}

// SendRawTransaction sends a signed, base64 encoded transaction.
func (c *Client) SendRawTransaction(ctx context.Context, txBase64 string) (string, error) {
	result, err := c.Call(ctx, "sendrawtransaction", []interface{}{txBase64})
	if err != nil {
		return "", err
	}

	var response struct {
		Hash string `json:"hash"`
	}
	if err := json.Unmarshal(result, &response); err != nil {
		return "", err
	}
	return response.Hash, nil
}

// WaitForApplicationLog polls for a transaction application log until it is available or context is done.
// A missing transaction is treated as transient and retried until the context deadline/timeout expires.
func (c *Client) WaitForApplicationLog(ctx context.Context, txHash string, pollInterval time.Duration) (*ApplicationLog, error) {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			log, err := c.GetApplicationLog(ctx, txHash)
			if err != nil {
				if isNotFoundError(err) {
					continue
				}
				return nil, err
			}
			return log, nil
		}
	}
}

func isNotFoundError(err error) bool {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		if rpcErr.Code == -100 || rpcErr.Code == -103 {
			return true
		}
		msg := strings.ToLower(rpcErr.Message)
		return strings.Contains(msg, "unknown transaction") || strings.Contains(msg, "not found")
	}
	return false
}
