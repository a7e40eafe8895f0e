// Package simchain is an in-memory chain hosting the job marketplace,
// pseudonym registry, ZK verifier and escrow contracts. It implements
// chain.Invoker and speaks the same parameter and stack item formats as a
// node, so gateways built on it exercise their full encoding path.
package simchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"

	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/internal/contracts"
)

// DefaultAddresses are the script hashes the simulated contracts live at.
var DefaultAddresses = contracts.Addresses{
	JobMarketplace:    "0x5c6a0b1f3e0d8d0d4f4d0a1b2c3d4e5f60718201",
	PseudonymRegistry: "0x5c6a0b1f3e0d8d0d4f4d0a1b2c3d4e5f60718202",
	Escrow:            "0x5c6a0b1f3e0d8d0d4f4d0a1b2c3d4e5f60718203",
	ZKVerifier:        "0x5c6a0b1f3e0d8d0d4f4d0a1b2c3d4e5f60718204",
}

// Transaction is a submitted transaction.
type Transaction struct {
	Hash     string    `json:"hash"`
	Contract string    `json:"contract"`
	Method   string    `json:"method"`
	Sender   string    `json:"sender"`
	Block    uint64    `json:"block"`
	Time     time.Time `json:"time"`
}

// Option configures a Chain.
type Option func(*Chain)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Chain) { c.now = now }
}

// WithAddresses places the contracts at addrs.
func WithAddresses(addrs contracts.Addresses) Option {
	return func(c *Chain) { c.addrs = addrs }
}

// Chain is the simulated chain. It is safe for concurrent use.
type Chain struct {
	mu sync.Mutex

	addrs contracts.Addresses
	now   func() time.Time
	hook  func(method string)

	failAll     error
	failMethods map[string]error

	height uint64
	txs    map[string]Transaction
	order  []string

	market   *marketState
	registry *registryState
	verifier *verifierState
	escrow   *escrowState
}

// New creates an empty chain.
func New(opts ...Option) *Chain {
	c := &Chain{
		addrs:       DefaultAddresses,
		now:         time.Now,
		failMethods: make(map[string]error),
		txs:         make(map[string]Transaction),
		market:      newMarketState(),
		registry:    newRegistryState(),
		verifier:    newVerifierState(),
		escrow:      newEscrowState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Addresses returns where the contracts live.
func (c *Chain) Addresses() contracts.Addresses {
	return c.addrs
}

// FailAll makes every subsequent call return err. A nil err heals the chain.
func (c *Chain) FailAll(err error) {
	c.mu.Lock()
	c.failAll = err
	c.mu.Unlock()
}

// FailMethod makes calls to method return err. A nil err clears it.
func (c *Chain) FailMethod(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failMethods, method)
		return
	}
	c.failMethods[method] = err
}

// OnCall registers fn to run before each call is executed, outside the
// chain lock.
func (c *Chain) OnCall(fn func(method string)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

// Height returns the number of blocks, one per transaction.
func (c *Chain) Height() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// Transaction returns a submitted transaction by hash.
func (c *Chain) Transaction(txHash string) (Transaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tx, ok := c.txs[strings.ToLower(txHash)]
	return tx, ok
}

// Transactions returns every submitted transaction in order.
func (c *Chain) Transactions() []Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Transaction, 0, len(c.order))
	for _, h := range c.order {
		out = append(out, c.txs[h])
	}
	return out
}

// =============================================================================
// chain.Invoker
// =============================================================================

// InvokeFunction runs a read-only method.
func (c *Chain) InvokeFunction(ctx context.Context, scriptHash string, method string, params []chain.ContractParam) (*chain.InvokeResult, error) {
	ep, a, err := c.prepare(ctx, scriptHash, method, params)
	if err != nil {
		return nil, err
	}
	if ep == nil {
		return faultResult(a.err.Error()), nil
	}
	if ep.write {
		return faultResult(fmt.Sprintf("%s: witness check failed, a signed transaction is required", method)), nil
	}

	c.mu.Lock()
	item, err := ep.handler(c, &call{args: a})
	c.mu.Unlock()
	if err != nil {
		return faultResult(err.Error()), nil
	}
	return &chain.InvokeResult{
		State:       chain.VMStateHalt,
		GasConsumed: "1000000",
		Stack:       []chain.StackItem{item},
	}, nil
}

// Submit executes method as account and records a transaction.
func (c *Chain) Submit(ctx context.Context, account *chain.Account, scriptHash string, method string, params []chain.ContractParam) (string, error) {
	if account == nil {
		return "", fmt.Errorf("account required for write operations")
	}
	ep, a, err := c.prepare(ctx, scriptHash, method, params)
	if err != nil {
		return "", err
	}
	if ep == nil {
		return "", &chain.FaultError{Method: method, Exception: a.err.Error()}
	}

	sender := account.Address()
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := ep.handler(c, &call{caller: sender, args: a}); err != nil {
		return "", &chain.FaultError{Method: method, Exception: err.Error()}
	}

	c.height++
	h := hash.Sha256([]byte(fmt.Sprintf("%d|%s|%s|%s", c.height, scriptHash, method, sender)))
	tx := Transaction{
		Hash:     "0x" + h.StringLE(),
		Contract: scriptHash,
		Method:   method,
		Sender:   sender,
		Block:    c.height,
		Time:     c.now().UTC(),
	}
	c.txs[tx.Hash] = tx
	c.order = append(c.order, tx.Hash)
	return tx.Hash, nil
}

// prepare applies failure injection and resolves the entry point. A nil
// entry point with a non-nil args error means the call faults.
func (c *Chain) prepare(ctx context.Context, scriptHash, method string, params []chain.ContractParam) (*entryPoint, *args, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	hook := c.hook
	failErr := c.failAll
	if failErr == nil {
		failErr = c.failMethods[method]
	}
	c.mu.Unlock()

	if hook != nil {
		hook(method)
	}
	if failErr != nil {
		return nil, nil, failErr
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	table := c.contract(scriptHash)
	if table == nil {
		return nil, &args{err: fmt.Errorf("called contract %s not found", scriptHash)}, nil
	}
	ep, ok := table[method]
	if !ok {
		return nil, &args{err: fmt.Errorf("method not found in contract: %s", method)}, nil
	}
	ps, err := toWire(params)
	if err != nil {
		return nil, nil, fmt.Errorf("encode params: %w", err)
	}
	if len(ps) != ep.arity {
		return nil, &args{err: fmt.Errorf("method not found in contract: %s/%d", method, len(ps))}, nil
	}
	return &ep, &args{ps: ps}, nil
}

func (c *Chain) contract(scriptHash string) map[string]entryPoint {
	switch strings.ToLower(scriptHash) {
	case "":
		return nil
	case strings.ToLower(c.addrs.JobMarketplace):
		return marketEntryPoints
	case strings.ToLower(c.addrs.PseudonymRegistry):
		return registryEntryPoints
	case strings.ToLower(c.addrs.ZKVerifier):
		return verifierEntryPoints
	case strings.ToLower(c.addrs.Escrow):
		return escrowEntryPoints
	}
	return nil
}

func faultResult(exception string) *chain.InvokeResult {
	return &chain.InvokeResult{
		State:       chain.VMStateFault,
		GasConsumed: "1000000",
		Exception:   exception,
	}
}

var _ chain.Invoker = (*Chain)(nil)

// =============================================================================
// Entry Points
// =============================================================================

// call is one execution of an entry point. caller is empty for reads.
type call struct {
	caller string
	args   *args
}

// entryPoint is a contract method. Handlers read their arguments first and
// must not change state unless in.args.err is nil and every check passed.
type entryPoint struct {
	arity   int
	write   bool
	handler func(c *Chain, in *call) (chain.StackItem, error)
}

func fault(format string, v ...interface{}) error {
	return fmt.Errorf(format, v...)
}

func idKey(n *big.Int) string {
	return n.String()
}

func okItem() chain.StackItem {
	return chain.NewBooleanItem(true)
}
