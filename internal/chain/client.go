// Package chain provides Neo N3 RPC access and transaction signing for the
// marketplace contract gateways.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// Known network magics.
const (
	MainNetMagic uint32 = 860833102
	TestNetMagic uint32 = 894710606
)

// maxResponseBytes bounds a single RPC response body.
const maxResponseBytes = 8 << 20

// snippet renders the start of an error body for messages.
func snippet(body []byte) string {
	const max = 256
	msg := strings.TrimSpace(string(body))
	if len(msg) > max {
		msg = msg[:max] + "...(truncated)"
	}
	return msg
}

// Client provides Neo N3 RPC client functionality.
type Client struct {
	mu         sync.RWMutex
	rpcURL     string
	httpClient *http.Client
	networkID  uint32
	limiter    *rate.Limiter
}

// Config holds client configuration.
type Config struct {
	RPCURL    string
	NetworkID uint32 // MainNet: 860833102, TestNet: 894710606
	Timeout   time.Duration
	// RequestsPerSecond limits outbound RPC calls. Zero disables limiting.
	RequestsPerSecond float64
	Burst             int
}

// NewClient creates a new Neo N3 client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("RPC URL required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		rpcURL: cfg.RPCURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		networkID: cfg.NetworkID,
		limiter:   limiter,
	}, nil
}

// NetworkID returns the configured network magic.
func (c *Client) NetworkID() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.networkID
}

// SetNetworkID overrides the network magic, typically with the value read
// from GetVersion.
func (c *Client) SetNetworkID(id uint32) {
	c.mu.Lock()
	c.networkID = id
	c.mu.Unlock()
}

// =============================================================================
// Core RPC Methods
// =============================================================================

// Call makes an RPC call to the Neo N3 node.
func (c *Client) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	if params == nil {
		params = []interface{}{}
	}
	req := RPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(respBody) > maxResponseBytes {
		return nil, fmt.Errorf("%s: response exceeds %d bytes", method, maxResponseBytes)
	}

	var rpcResp RPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, snippet(respBody))
		}
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	return rpcResp.Result, nil
}

// GetBlockCount returns the current block height.
func (c *Client) GetBlockCount(ctx context.Context) (uint64, error) {
	result, err := c.Call(ctx, "getblockcount", nil)
	if err != nil {
		return 0, err
	}

	var count uint64
	if err := json.Unmarshal(result, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// NodeVersion is the subset of getversion the client uses.
type NodeVersion struct {
	UserAgent  string
	Network    uint32
	MSPerBlock int64
}

// GetVersion returns the node's user agent and network magic.
func (c *Client) GetVersion(ctx context.Context) (*NodeVersion, error) {
	result, err := c.Call(ctx, "getversion", nil)
	if err != nil {
		return nil, err
	}

	parsed := gjson.ParseBytes(result)
	network := parsed.Get("protocol.network")
	if !network.Exists() {
		return nil, fmt.Errorf("getversion: missing protocol.network")
	}
	return &NodeVersion{
		UserAgent:  parsed.Get("useragent").String(),
		Network:    uint32(network.Uint()),
		MSPerBlock: parsed.Get("protocol.msperblock").Int(),
	}, nil
}

// GetApplicationLog returns the application log for a transaction.
func (c *Client) GetApplicationLog(ctx context.Context, txHash string) (*ApplicationLog, error) {
	result, err := c.Call(ctx, "getapplicationlog", []interface{}{txHash})
	if err != nil {
		return nil, err
	}

	var log ApplicationLog
	if err := json.Unmarshal(result, &log); err != nil {
		return nil, err
	}
	return &log, nil
}

// NetworkName maps a network magic to the identifier used in configuration.
func NetworkName(magic uint32) string {
	switch magic {
	case MainNetMagic:
		return "mainnet"
	case TestNetMagic:
		return "testnet"
	default:
		return strconv.FormatUint(uint64(magic), 10)
	}
}

// NetworkMagic maps a network identifier back to its magic.
func NetworkMagic(name string) (uint32, bool) {
	switch name {
	case "mainnet":
		return MainNetMagic, true
	case "testnet":
		return TestNetMagic, true
	}
	n, err := strconv.ParseUint(name, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}
